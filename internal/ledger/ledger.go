package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"flashquiz/internal/blobstore"
	"flashquiz/internal/logger"
)

const DefaultKey = "user_stats.json"

var (
	ErrStorageUnavailable = errors.New("statistics storage unavailable")
	ErrCorruptData        = errors.New("statistics data is corrupt")
)

var emptyCollection = []byte("[]")

// Ledger is the append-only answer log persisted as one JSON array.
type Ledger struct {
	store blobstore.Store
	key   string
	log   *logger.Logger

	// Serializes appends made through this handle. Cross-process safety
	// comes from blobstore.Updater when the store provides it.
	mu sync.Mutex
}

func New(store blobstore.Store, key string, log *logger.Logger) *Ledger {
	if key == "" {
		key = DefaultKey
	}
	return &Ledger{
		store: store,
		key:   key,
		log:   logger.OrNop(log).With("ledger_key", key),
	}
}

// ReadAll returns every decodable event in append order. A missing
// collection is created empty.
func (l *Ledger) ReadAll(ctx context.Context) ([]AnswerEvent, error) {
	data, err := l.store.Get(ctx, l.key)
	if errors.Is(err, blobstore.ErrNotFound) {
		if err := l.store.Put(ctx, l.key, emptyCollection); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return []AnswerEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	elements, err := decodeCollection(data)
	if err != nil {
		return nil, err
	}

	events := make([]AnswerEvent, 0, len(elements))
	skipped := 0
	for _, element := range elements {
		var event AnswerEvent
		if err := json.Unmarshal(element, &event); err != nil {
			skipped++
			continue
		}
		events = append(events, event)
	}
	if skipped > 0 {
		l.log.Warn("skipped undecodable ledger entries", "skipped", skipped, "kept", len(events))
	}
	return events, nil
}

// Load is ReadAll with the degrade policy applied: any failure yields an
// empty snapshot.
func (l *Ledger) Load(ctx context.Context) []AnswerEvent {
	events, err := l.ReadAll(ctx)
	if err != nil {
		l.log.Warn("treating ledger as empty", "error", err)
		return []AnswerEvent{}
	}
	return events
}

// Append rewrites the whole collection with event added at the end.
// Entries already present are carried over byte for byte, including ones
// this version cannot decode.
func (l *Ledger) Append(ctx context.Context, event AnswerEvent) error {
	encodedEvent, err := json.Marshal(event)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	build := func(current []byte, found bool) ([]byte, error) {
		var elements []json.RawMessage
		if found {
			decoded, decodeErr := decodeCollection(current)
			if decodeErr != nil {
				l.log.Warn("replacing corrupt ledger", "error", decodeErr)
			}
			elements = decoded
		}
		elements = append(elements, encodedEvent)
		return json.Marshal(elements)
	}

	if updater, ok := l.store.(blobstore.Updater); ok {
		if err := updater.Update(ctx, l.key, build); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil
	}

	current, getErr := l.store.Get(ctx, l.key)
	found := true
	if errors.Is(getErr, blobstore.ErrNotFound) {
		found = false
	} else if getErr != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, getErr)
	}

	next, err := build(current, found)
	if err != nil {
		return err
	}
	if err := l.store.Put(ctx, l.key, next); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func decodeCollection(data []byte) ([]json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	return elements, nil
}
