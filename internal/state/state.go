// Package state holds the single client-side state tree and the pure
// reducer that is the only way to change it.
package state

import (
	"fmt"
	"sync/atomic"
	"time"
)

// MessageKind tags a transcript entry with its origin.
type MessageKind string

const (
	KindUser      MessageKind = "user"
	KindAssistant MessageKind = "assistant"
	KindSystem    MessageKind = "system"
	KindError     MessageKind = "error"
)

// Citation points from an assistant reply into the uploaded document. Page 0
// means "no page"; a citation with neither page nor section is rendered as a
// positional label and is not navigable.
type Citation struct {
	Page       int     `json:"page,omitempty"`
	Section    string  `json:"section,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Type       string  `json:"type,omitempty"`
}

// CitationTypePageRef marks citations that resolve to a page number.
const CitationTypePageRef = "page_reference"

// TokenUsage carries the backend's token accounting for one exchange.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// ChatMessage is one immutable transcript entry. Entries are append-only;
// the only removals are the bulk CLEAR_CHAT and RESET_STATE actions.
type ChatMessage struct {
	ID        string      `json:"id"`
	Kind      MessageKind `json:"kind"`
	Content   string      `json:"content"`
	Citations []Citation  `json:"citations,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Usage     *TokenUsage `json:"tokenUsage,omitempty"`
}

// FileHandle describes the locally selected PDF. It always refers to the
// user's original file, never anything returned by the backend.
type FileHandle struct {
	Name       string
	Path       string
	Size       int64
	MimeType   string
	ModifiedAt time.Time
}

// Document is the parsed-document handle populated lazily by viewer-adjacent
// code after an upload succeeds. The reducer stores it opaquely.
type Document interface {
	PageCount() int
	PageText(page int) (string, error)
	Close() error
}

// App is the whole application state. It is a value: the reducer returns a
// new App and never mutates its input's slices in place.
type App struct {
	PDFFile     *FileHandle
	PDFDocument Document
	CurrentPage int
	TotalPages  int
	Messages    []ChatMessage
	SessionID   string
	Loading     bool
	Err         string
	Citations   []Citation
}

// Initial returns the default state used at startup and by RESET_STATE.
func Initial() App {
	return App{CurrentPage: 1}
}

var messageSeq atomic.Int64

// NextMessageID returns a time-based token that stays unique and monotonic
// even when two messages land in the same nanosecond.
func NextMessageID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), messageSeq.Add(1))
}

// NewMessage stamps a transcript entry with a fresh id and timestamp.
func NewMessage(kind MessageKind, content string) ChatMessage {
	return ChatMessage{
		ID:        NextMessageID(),
		Kind:      kind,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}
