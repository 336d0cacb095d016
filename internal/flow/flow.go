// Package flow implements the upload and chat controllers: they validate
// input, invoke the gateway, and commit every outcome to the store. No raw
// failure ever escapes past them.
package flow

// ValidationError is raised at the controller boundary, before any network
// call. Its text is the exact user-visible message.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrNoFile          ValidationError = "No file selected."
	ErrFileTooLarge    ValidationError = "File is too large. The maximum size is 10 MB."
	ErrInvalidFileType ValidationError = "Invalid file type. Only PDF documents are supported."
	ErrEmptyMessage    ValidationError = "Message is empty."
	ErrMessageTooLong  ValidationError = "Message exceeds the 1000 character limit."
	ErrNoSession       ValidationError = "No active session. Upload a document first."
	ErrBusy            ValidationError = "Another request is still in progress."
)
