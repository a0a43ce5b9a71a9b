package pdfcheck

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether b carries the PDF file header.
func IsPDF(b []byte) bool {
	return bytes.HasPrefix(b, pdfMagic)
}

// PageCount parses b and returns its page count. Best effort: a malformed
// file returns 0 and the parse error.
func PageCount(b []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
