package blobstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// Store is an opaque key-value blob store. Put replaces the whole value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// UpdateFunc receives the current value (found=false when absent) and returns
// the replacement.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Updater is implemented by stores that can run a read-modify-write cycle
// atomically with respect to other writers.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

func validateKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" || trimmed != key {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
