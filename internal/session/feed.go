package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"flashquiz/internal/ledger"
	"flashquiz/internal/logger"
	"flashquiz/internal/questions"
)

// Recorder is the write side of the ledger.
type Recorder interface {
	Append(ctx context.Context, event ledger.AnswerEvent) error
}

// Feed is the paginated discover stream. Each question accepts one answer
// for the lifetime of the feed.
type Feed struct {
	source questions.Source
	events Recorder
	log    *logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	loading  bool
	nextPage int
	hasMore  bool
	items    []questions.Question
	index    map[ledger.QuestionID]int
	viewed   map[ledger.QuestionID]struct{}
}

func NewFeed(source questions.Source, events Recorder, log *logger.Logger) *Feed {
	return &Feed{
		source:   source,
		events:   events,
		log:      logger.OrNop(log),
		now:      time.Now,
		nextPage: 1,
		hasMore:  true,
		index:    make(map[ledger.QuestionID]int),
		viewed:   make(map[ledger.QuestionID]struct{}),
	}
}

// LoadMore fetches the next page and returns how many new questions were
// appended. It is a no-op while another load is running or after the feed
// ran dry. Fetch errors leave the feed unchanged so the call can be
// retried.
func (f *Feed) LoadMore(ctx context.Context) (int, error) {
	f.mu.Lock()
	if f.loading || !f.hasMore {
		f.mu.Unlock()
		return 0, nil
	}
	f.loading = true
	page := f.nextPage
	f.mu.Unlock()

	fetched, err := f.source.FetchPage(ctx, page)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.log.Warn("feed page failed", "page", page, "error", err)
		return 0, fmt.Errorf("load page %d: %w", page, err)
	}
	if len(fetched) == 0 {
		f.hasMore = false
		return 0, nil
	}

	f.nextPage++
	added := 0
	for _, q := range fetched {
		if !q.Usable() {
			continue
		}
		if _, dup := f.index[q.ID]; dup {
			continue
		}
		f.index[q.ID] = len(f.items)
		f.items = append(f.items, q)
		added++
	}
	f.log.Debug("feed page loaded", "page", page, "added", added, "total", len(f.items))
	return added, nil
}

func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

func (f *Feed) Items() []questions.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]questions.Question, len(f.items))
	copy(items, f.items)
	return items
}

func (f *Feed) Viewed(id ledger.QuestionID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.viewed[id]
	return ok
}

// Answer records the first answer given to a feed question.
func (f *Feed) Answer(ctx context.Context, id ledger.QuestionID, key string) (Outcome, error) {
	f.mu.Lock()
	position, ok := f.index[id]
	if !ok {
		f.mu.Unlock()
		return Outcome{}, fmt.Errorf("question %s is not in the feed", id)
	}
	if _, done := f.viewed[id]; done {
		f.mu.Unlock()
		return Outcome{}, ErrAlreadyAnswered
	}
	q := f.items[position]
	if !q.HasOption(key) {
		f.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	f.viewed[id] = struct{}{}
	f.mu.Unlock()

	event := ledger.NewEvent(q.ID, &key, q.CorrectAnswer, f.now(), ledger.WithTheme(q.ThemeID))
	if err := f.events.Append(ctx, event); err != nil {
		f.log.Error("failed to record feed answer", "question_id", q.ID, "error", err)
	}
	return Outcome{
		Correct:       event.IsCorrect,
		UserAnswer:    event.UserAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}, nil
}
