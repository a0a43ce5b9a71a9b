package app

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrQuestionEmpty      = errors.New("question is empty")
	ErrNoDocumentSelected = errors.New("no document selected")
	ErrSessionNotFound    = errors.New("session not found")
	ErrNotPDF             = errors.New("file is not a pdf")
	ErrDocumentTooLarge   = errors.New("document exceeds size limit")
)

// Persister is the write side of the persistent store adapter. The store
// itself satisfies it for direct writes; the rabbitmq snapshot publisher
// satisfies it for the async pipeline.
type Persister interface {
	Set(ctx context.Context, key string, value []byte) error
}
