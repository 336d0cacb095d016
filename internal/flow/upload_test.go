package flow

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/csheth/docchat/internal/gateway"
	"github.com/csheth/docchat/internal/state"
)

type fakeUploadGateway struct {
	result gateway.UploadResult
	err    error
	calls  int
	body   string
}

func (f *fakeUploadGateway) Upload(ctx context.Context, filename string, content io.Reader) (gateway.UploadResult, error) {
	f.calls++
	data, _ := io.ReadAll(content)
	f.body = string(data)
	return f.result, f.err
}

func writeTempPDF(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateRejectsOversizedFileFirst(t *testing.T) {
	u := &Upload{}
	err := u.Validate(state.FileHandle{Name: "big.pdf", Size: 15 << 20, MimeType: "application/pdf"})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("want ErrFileTooLarge, got %v", err)
	}
}

func TestValidateRejectsNonPDFMimeType(t *testing.T) {
	u := &Upload{}
	err := u.Validate(state.FileHandle{Name: "notes.txt", Size: 128, MimeType: "text/plain"})
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("want ErrInvalidFileType, got %v", err)
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	u := &Upload{}
	// Oversized AND wrong type: the size check runs first.
	err := u.Validate(state.FileHandle{Name: "big.txt", Size: 15 << 20, MimeType: "text/plain"})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("want ErrFileTooLarge, got %v", err)
	}
}

func TestHandleFileRejectsBeforeNetworkCall(t *testing.T) {
	gw := &fakeUploadGateway{}
	store := state.NewStore()
	u := &Upload{Gateway: gw, Store: store}

	_, err := u.HandleFile(context.Background(), writeTempPDF(t, "notes.txt", "plain text"))
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("want ErrInvalidFileType, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called on validation failure, got %d calls", gw.calls)
	}
	snap := store.Snapshot()
	if snap.Err != ErrInvalidFileType.Error() {
		t.Fatalf("error not committed: %q", snap.Err)
	}
	if snap.Loading {
		t.Fatal("loading must stay off after a rejected upload")
	}
}

func TestHandleFileCommitsLocalHandleAndSession(t *testing.T) {
	gw := &fakeUploadGateway{result: gateway.UploadResult{SessionID: "sess-7", Message: "stored"}}
	store := state.NewStore()
	u := &Upload{Gateway: gw, Store: store}

	path := writeTempPDF(t, "paper.pdf", "%PDF-1.7 body")
	result, err := u.HandleFile(context.Background(), path)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.SessionID != "sess-7" {
		t.Fatalf("unexpected session id %q", result.SessionID)
	}
	if gw.body != "%PDF-1.7 body" {
		t.Fatalf("gateway received wrong content: %q", gw.body)
	}

	snap := store.Snapshot()
	if snap.PDFFile == nil || snap.PDFFile.Name != "paper.pdf" || snap.PDFFile.Path != path {
		t.Fatalf("local file handle not committed: %+v", snap.PDFFile)
	}
	if snap.SessionID != "sess-7" {
		t.Fatalf("session id not committed: %q", snap.SessionID)
	}
	if !snap.Loading {
		t.Fatal("loading must stay up until Settle")
	}

	u.Settle()
	if store.Snapshot().Loading {
		t.Fatal("Settle must drop the busy flag")
	}
}

func TestHandleFileFailureLeavesPriorDocumentUntouched(t *testing.T) {
	gw := &fakeUploadGateway{err: errors.New("Internal server error, retry")}
	store := state.NewStore()
	prior := &state.FileHandle{Name: "old.pdf"}
	store.Dispatch(state.SetPDFFile{File: prior})
	store.Dispatch(state.SetSessionID{SessionID: "old-sess"})
	u := &Upload{Gateway: gw, Store: store}

	_, err := u.HandleFile(context.Background(), writeTempPDF(t, "new.pdf", "%PDF-1.7"))
	if err == nil {
		t.Fatal("expected gateway failure")
	}

	snap := store.Snapshot()
	if snap.PDFFile != prior || snap.SessionID != "old-sess" {
		t.Fatal("failed upload must not replace the prior document or session")
	}
	if snap.Err != "Internal server error, retry" {
		t.Fatalf("normalized message not committed: %q", snap.Err)
	}
	if snap.Loading {
		t.Fatal("loading must reset on failure")
	}
}

func TestHandleFileRefusesWhileBusy(t *testing.T) {
	store := state.NewStore()
	store.Dispatch(state.SetLoading{Loading: true})
	gw := &fakeUploadGateway{}
	u := &Upload{Gateway: gw, Store: store}

	_, err := u.HandleFile(context.Background(), writeTempPDF(t, "paper.pdf", "%PDF-1.7"))
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("want ErrBusy, got %v", err)
	}
	if gw.calls != 0 {
		t.Fatal("busy controller must not reach the gateway")
	}
}

func TestInspectSniffsMimeType(t *testing.T) {
	pdfByExt, err := Inspect(writeTempPDF(t, "paper.pdf", "anything"))
	if err != nil || pdfByExt.MimeType != "application/pdf" {
		t.Fatalf("extension sniff failed: %+v %v", pdfByExt, err)
	}
	pdfByMagic, err := Inspect(writeTempPDF(t, "renamed.bin", "%PDF-1.5 ..."))
	if err != nil || pdfByMagic.MimeType != "application/pdf" {
		t.Fatalf("magic-byte sniff failed: %+v %v", pdfByMagic, err)
	}
	plain, err := Inspect(writeTempPDF(t, "notes.txt", "hello"))
	if err != nil || plain.MimeType == "application/pdf" {
		t.Fatalf("plain text misdetected: %+v %v", plain, err)
	}
	if _, err := Inspect(""); !errors.Is(err, ErrNoFile) {
		t.Fatalf("empty path must be ErrNoFile, got %v", err)
	}
}
