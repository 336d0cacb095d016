package flow

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/csheth/docchat/internal/gateway"
	"github.com/csheth/docchat/internal/state"
)

// MaxFileSize is the upload size cap (10 MiB).
const MaxFileSize = 10 << 20

var allowedMimeTypes = map[string]bool{
	"application/pdf":   true,
	"application/x-pdf": true,
}

// UploadGateway is the slice of the gateway the upload controller needs.
type UploadGateway interface {
	Upload(ctx context.Context, filename string, content io.Reader) (gateway.UploadResult, error)
}

// Upload drives the document upload protocol: validate, flip the busy flag,
// call the gateway, commit file handle and session id. Uploads are
// all-or-nothing; a failure leaves any previously loaded document untouched.
type Upload struct {
	Gateway UploadGateway
	Store   *state.Store

	// MaxSize overrides MaxFileSize when > 0 (tests).
	MaxSize int64
}

// Inspect stats the file and sniffs its MIME type from extension and magic
// bytes, mirroring what a browser would report for the picked file.
func Inspect(path string) (state.FileHandle, error) {
	if strings.TrimSpace(path) == "" {
		return state.FileHandle{}, ErrNoFile
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return state.FileHandle{}, ErrNoFile
	}
	return state.FileHandle{
		Name:       filepath.Base(path),
		Path:       path,
		Size:       info.Size(),
		MimeType:   sniffMimeType(path),
		ModifiedAt: info.ModTime(),
	}, nil
}

func sniffMimeType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "application/pdf"
	}
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	header := make([]byte, 5)
	if _, err := io.ReadFull(file, header); err == nil && bytes.Equal(header, []byte("%PDF-")) {
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Validate applies the preconditions in order; the first failure wins.
func (u *Upload) Validate(f state.FileHandle) error {
	if f.Name == "" {
		return ErrNoFile
	}
	if f.Size > u.maxSize() {
		return ErrFileTooLarge
	}
	if !allowedMimeTypes[f.MimeType] {
		return ErrInvalidFileType
	}
	return nil
}

// HandleFile runs the whole upload for the file at path. Validation failures
// and gateway failures are both committed via SET_ERROR; on success the
// local file handle and the backend's session id are committed and the busy
// flag stays up until Settle is called.
func (u *Upload) HandleFile(ctx context.Context, path string) (gateway.UploadResult, error) {
	if u.Store.Snapshot().Loading {
		return gateway.UploadResult{}, ErrBusy
	}

	handle, err := Inspect(path)
	if err == nil {
		err = u.Validate(handle)
	}
	if err != nil {
		u.Store.Dispatch(state.SetError{Message: err.Error()})
		return gateway.UploadResult{}, err
	}

	u.Store.Dispatch(state.ClearError{})
	u.Store.Dispatch(state.SetLoading{Loading: true})

	file, err := os.Open(handle.Path)
	if err != nil {
		u.Store.Dispatch(state.SetError{Message: ErrNoFile.Error()})
		return gateway.UploadResult{}, ErrNoFile
	}
	defer file.Close()

	result, err := u.Gateway.Upload(ctx, handle.Name, file)
	if err != nil {
		u.Store.Dispatch(state.SetError{Message: err.Error()})
		return gateway.UploadResult{}, err
	}

	// Commit the original local handle, never anything from the network.
	u.Store.Dispatch(state.SetPDFFile{File: &handle})
	u.Store.Dispatch(state.SetSessionID{SessionID: result.SessionID})
	return result, nil
}

// Settle drops the busy flag once the UI has shown the completed progress
// state for its fixed settling delay.
func (u *Upload) Settle() {
	u.Store.Dispatch(state.SetLoading{Loading: false})
}

func (u *Upload) maxSize() int64 {
	if u.MaxSize > 0 {
		return u.MaxSize
	}
	return MaxFileSize
}
