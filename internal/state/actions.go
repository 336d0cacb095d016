package state

// Action is a named state transition. The set is closed from the reducer's
// point of view, but Reduce tolerates unknown actions by returning the state
// untouched so new actions can be introduced without breaking old readers.
type Action interface {
	isAction()
}

type SetPDFFile struct{ File *FileHandle }

type SetPDFDocument struct{ Document Document }

type SetCurrentPage struct{ Page int }

type SetTotalPages struct{ Total int }

type AddChatMessage struct{ Message ChatMessage }

type SetLoading struct{ Loading bool }

type SetSessionID struct{ SessionID string }

// SetError is the only action that couples two fields: it records the
// message and forces Loading off, so a spinner can never be shown next to an
// error. Every failure path must route through it.
type SetError struct{ Message string }

type ClearError struct{}

type AddCitation struct{ Citation Citation }

// ClearChat empties the transcript, the accumulated citations and the error
// while preserving the loaded file and session.
type ClearChat struct{}

// ResetState replaces the whole tree with Initial().
type ResetState struct{}

func (SetPDFFile) isAction()     {}
func (SetPDFDocument) isAction() {}
func (SetCurrentPage) isAction() {}
func (SetTotalPages) isAction()  {}
func (AddChatMessage) isAction() {}
func (SetLoading) isAction()     {}
func (SetSessionID) isAction()   {}
func (SetError) isAction()       {}
func (ClearError) isAction()     {}
func (AddCitation) isAction()    {}
func (ClearChat) isAction()      {}
func (ResetState) isAction()     {}

// Reduce is the pure transition function. It never panics and never touches
// the input's backing arrays: appends copy first, so old snapshots stay valid.
func Reduce(s App, a Action) App {
	switch a := a.(type) {
	case SetPDFFile:
		s.PDFFile = a.File
	case SetPDFDocument:
		s.PDFDocument = a.Document
	case SetCurrentPage:
		s.CurrentPage = a.Page
	case SetTotalPages:
		s.TotalPages = a.Total
	case AddChatMessage:
		s.Messages = appendMessage(s.Messages, a.Message)
	case SetLoading:
		s.Loading = a.Loading
	case SetSessionID:
		s.SessionID = a.SessionID
	case SetError:
		s.Err = a.Message
		s.Loading = false
	case ClearError:
		s.Err = ""
	case AddCitation:
		s.Citations = appendCitation(s.Citations, a.Citation)
	case ClearChat:
		s.Messages = nil
		s.Citations = nil
		s.Err = ""
	case ResetState:
		s = Initial()
	}
	return s
}

func appendMessage(existing []ChatMessage, msg ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(existing), len(existing)+1)
	copy(out, existing)
	return append(out, msg)
}

func appendCitation(existing []Citation, c Citation) []Citation {
	out := make([]Citation, len(existing), len(existing)+1)
	copy(out, existing)
	return append(out, c)
}
