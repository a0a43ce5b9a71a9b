// Package store provides the key/value persistence adapter the client state
// is mirrored into. Values are opaque byte strings; callers own the encoding.
package store

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
