package flow

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/csheth/docchat/internal/citations"
	"github.com/csheth/docchat/internal/gateway"
	"github.com/csheth/docchat/internal/state"
)

// MaxMessageLen bounds a single chat message; the input surface enforces it
// before text ever reaches the controller, this is the backstop.
const MaxMessageLen = 1000

// DefaultTypingDelay paces the assistant's "typing" window before the
// request is issued. UX only, not a network requirement.
const DefaultTypingDelay = 400 * time.Millisecond

// ChatGateway is the slice of the gateway the chat controller needs.
type ChatGateway interface {
	SendMessage(ctx context.Context, text, sessionID string) (gateway.ChatResult, error)
}

// Chat runs the two-phase send protocol: Begin appends the user message and
// flips the busy flag synchronously; Complete settles the round trip by
// appending either the assistant reply or an error-typed message. Between
// the two phases the only externally observable state is "busy".
type Chat struct {
	Gateway     ChatGateway
	Store       *state.Store
	TypingDelay time.Duration
}

// Begin validates text and, when sendable, optimistically appends the user
// message before any network confirmation. On failure it returns a
// ValidationError and has no side effects.
func (c *Chat) Begin(text string) (state.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return state.ChatMessage{}, ErrEmptyMessage
	}
	// Characters, not bytes: the composer's limit is rune-based.
	if utf8.RuneCountInString(trimmed) > MaxMessageLen {
		return state.ChatMessage{}, ErrMessageTooLong
	}
	snap := c.Store.Snapshot()
	if snap.SessionID == "" {
		return state.ChatMessage{}, ErrNoSession
	}
	if snap.Loading {
		return state.ChatMessage{}, ErrBusy
	}

	msg := state.NewMessage(state.KindUser, trimmed)
	c.Store.Dispatch(state.AddChatMessage{Message: msg})
	c.Store.Dispatch(state.ClearError{})
	c.Store.Dispatch(state.SetLoading{Loading: true})
	return msg, nil
}

// Complete performs the network round trip for a message accepted by Begin.
// Failures are additive: the user's message stays in the transcript and an
// error-typed entry is appended after it.
func (c *Chat) Complete(ctx context.Context, text string) (state.ChatMessage, error) {
	c.pace(ctx)

	sessionID := c.Store.Snapshot().SessionID
	result, err := c.Gateway.SendMessage(ctx, strings.TrimSpace(text), sessionID)
	if err != nil {
		msg := state.NewMessage(state.KindError, err.Error())
		c.Store.Dispatch(state.AddChatMessage{Message: msg})
		c.Store.Dispatch(state.SetLoading{Loading: false})
		return msg, err
	}

	merged := citations.Merge(result.StateCitations(), citations.Extract(result.Response))
	msg := state.NewMessage(state.KindAssistant, result.Response)
	msg.Citations = merged
	msg.Usage = result.StateUsage()

	c.Store.Dispatch(state.AddChatMessage{Message: msg})
	for _, cit := range merged {
		c.Store.Dispatch(state.AddCitation{Citation: cit})
	}
	c.Store.Dispatch(state.SetLoading{Loading: false})
	return msg, nil
}

// pace holds the typing window open for the configured minimum delay.
func (c *Chat) pace(ctx context.Context) {
	delay := c.TypingDelay
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
