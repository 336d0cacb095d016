// Package document opens the locally selected PDF for the viewer pane:
// page count plus per-page plain text. Parsing stays best-effort; a PDF the
// parser cannot read only disables the viewer, never the chat.
package document

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`\s+`)

// Document wraps an open PDF. Exactly one instance is live at a time; the
// owner must Close it before replacing it and on teardown.
type Document struct {
	file   *os.File
	reader *pdf.Reader
	pages  int
}

// Open parses the file at path and reports its page count.
func Open(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	return &Document{
		file:   file,
		reader: reader,
		pages:  reader.NumPage(),
	}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pages
}

// PageText extracts the plain text of the given 1-based page.
func (d *Document) PageText(page int) (string, error) {
	if page < 1 || page > d.pages {
		return "", fmt.Errorf("page %d out of range 1..%d", page, d.pages)
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d has no content", page)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract page %d text: %w", page, err)
	}
	return strings.TrimSpace(extraneousWhitespace.ReplaceAllString(text, " ")), nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
