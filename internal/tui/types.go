package tui

import (
	"time"

	"github.com/csheth/docchat/internal/gateway"
	"github.com/csheth/docchat/internal/state"
)

type stage int

const (
	stagePick stage = iota
	stageUploading
	stageChat
)

// chatFocus splits the chat stage between typing and browsing. Browse mode
// owns transcript scrolling, page navigation and citation chip clicks.
type chatFocus int

const (
	focusComposer chatFocus = iota
	focusBrowse
)

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	viewerPaneHeight          = 6
	composerCharLimit         = 1000

	// Progress stays below this cap until the upload call resolves, then
	// snaps to 100%.
	progressCeiling = 0.9
	progressStep    = 0.06

	progressTickInterval = 120 * time.Millisecond
	settleDelay          = 600 * time.Millisecond
)

const heroTagline = "Upload a PDF, then chat with it."

type uploadResultMsg struct {
	path   string
	result gateway.UploadResult
	err    error
}

type progressTickMsg struct{}

type uploadSettledMsg struct{}

type docOpenedMsg struct {
	doc   state.Document
	pages int
	err   error
}

type chatResultMsg struct {
	message state.ChatMessage
	err     error
}

type pageTextMsg struct {
	page int
	text string
	err  error
}

type navigateMsg struct {
	page int
}

type sessionRestoredMsg struct {
	sessionID string
	messages  []state.ChatMessage
	filePath  string
	err       error
}

type healthCheckMsg struct {
	err error
}

type chatPersistedMsg struct {
	err error
}
