// Package pdftext exposes per-page plain text of a PDF.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is an open PDF. Pages are zero-based.
type Document struct {
	reader *pdf.Reader
	closer io.Closer
}

// OpenBytes parses an in-memory PDF
func OpenBytes(data []byte) (doc *Document, err error) {
	defer recoverInto(&err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{reader: reader}, nil
}

// OpenFile opens a PDF from disk. The file stays open until Close.
func OpenFile(path string) (doc *Document, err error) {
	defer recoverInto(&err)

	f, reader, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return &Document{reader: reader, closer: f}, nil
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of page index, one line per baseline.
// Pages without a content dictionary yield an empty string.
func (d *Document) PageText(index int) (text string, err error) {
	defer recoverInto(&err)

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return "", nil
	}
	return layoutText(page.Content().Text), nil
}

// layoutText rebuilds lines from positioned glyphs in content-stream order.
// A baseline change starts a new line and a horizontal jump between glyphs
// becomes a single space. Page.GetTextByRow ignores Td moves, so the text
// matrix tracked by Page.Content is used instead.
func layoutText(glyphs []pdf.Text) string {
	var sb strings.Builder
	var prev *pdf.Text

	for i := range glyphs {
		g := &glyphs[i]
		// TJ arrays end with a synthetic newline glyph; lines come from positions
		if g.S == "" || g.S == "\n" {
			continue
		}
		if prev != nil {
			tolerance := math.Max(prev.FontSize/4, 1)
			switch {
			case math.Abs(g.Y-prev.Y) > math.Max(prev.FontSize/2, 1):
				sb.WriteByte('\n')
			case math.Abs(g.X-(prev.X+prev.W)) > tolerance && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(g.S, " "):
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
		prev = g
	}
	return sb.String()
}

// Close releases the underlying file, if any
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// IsPDF reports whether data starts with the PDF magic header
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// The pdf package panics on some malformed streams
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed PDF: %v", r)
	}
}
