package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "flashquiz.db"
	}

	// Immediate transactions take the write lock up front so two processes
	// running Update cannot both read the same prior value.
	db, err := sql.Open("sqlite3", "file:"+path+"?_txlock=immediate")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS blobs (
		blob_key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at_unix INTEGER NOT NULL
	);`)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return getBlob(ctx, s.db, key)
}

func (s *SQLiteStore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return putBlob(ctx, s.db, key, data)
}

func (s *SQLiteStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := validateKey(key); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := getBlob(ctx, tx, key)
	found := true
	if errors.Is(err, ErrNotFound) {
		found = false
	} else if err != nil {
		return err
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if err := putBlob(ctx, tx, key, next); err != nil {
		return err
	}
	return tx.Commit()
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getBlob(ctx context.Context, q queryer, key string) ([]byte, error) {
	var data []byte
	err := q.QueryRowContext(ctx, `SELECT data FROM blobs WHERE blob_key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func putBlob(ctx context.Context, q queryer, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := q.ExecContext(
		ctx,
		`INSERT INTO blobs (blob_key, data, updated_at_unix) VALUES (?, ?, ?)
		 ON CONFLICT(blob_key) DO UPDATE SET
			data = excluded.data,
			updated_at_unix = excluded.updated_at_unix`,
		key,
		data,
		time.Now().UTC().UnixNano(),
	)
	return err
}

func (s *SQLiteStore) String() string {
	return fmt.Sprintf("sqlite_store(%T)", s.db)
}
