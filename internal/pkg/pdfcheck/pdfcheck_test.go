package pdfcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\nrest of file")))
	assert.False(t, IsPDF([]byte("plain text")))
	assert.False(t, IsPDF(nil))
	assert.False(t, IsPDF([]byte("%PD")))
}

func TestPageCountRejectsJunk(t *testing.T) {
	_, err := PageCount([]byte("%PDF-1.7 but not really a pdf"))
	assert.Error(t, err)
}
