package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Options struct {
	Driver     string
	Dir        string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
}

// Open builds the store named by opts.Driver ("file", "sqlite" or "redis")
// and returns it with its release function.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "file":
		store, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case "sqlite":
		path := opts.SQLitePath
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(opts.Dir, "flashquiz.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		store, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "redis":
		store, err := DialRedis(ctx, opts.RedisAddr, opts.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
