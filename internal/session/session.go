// Package session drives a revision quiz over a filtered question set and
// records each answer in the statistics ledger.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"flashquiz/internal/ledger"
	"flashquiz/internal/logger"
	"flashquiz/internal/metrics"
	"flashquiz/internal/questions"
)

const MaxQuestions = 10

var (
	ErrNoQuestions     = errors.New("no questions match the selection")
	ErrAlreadyAnswered = errors.New("question already answered")
	ErrNotReady        = errors.New("session is not waiting for an answer")
	ErrNotAnswered     = errors.New("current question has not been answered")
	ErrUnknownOption   = errors.New("unknown answer option")
)

type State int

const (
	Loading State = iota
	Ready
	Answered
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Answered:
		return "answered"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventLog is the part of the ledger a session needs.
type EventLog interface {
	Load(ctx context.Context) []ledger.AnswerEvent
	Append(ctx context.Context, event ledger.AnswerEvent) error
}

type Options struct {
	ThemeIDs      []int
	IncorrectOnly bool

	// Shuffle reorders the filtered set; nil means math/rand/v2.Shuffle.
	Shuffle func(n int, swap func(i, j int))
	Now     func() time.Time
}

type Outcome struct {
	Correct       bool
	UserAnswer    *string
	CorrectAnswer string
	Explanation   string
}

type Session struct {
	id      string
	source  questions.Source
	events  EventLog
	log     *logger.Logger
	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
	opts    Options

	mu          sync.Mutex
	state       State
	err         error
	questions   []questions.Question
	index       int
	score       int
	answered    int
	achievement bool
}

func New(source questions.Source, events EventLog, opts Options, log *logger.Logger) *Session {
	s := &Session{
		id:      uuid.NewString(),
		source:  source,
		events:  events,
		shuffle: opts.Shuffle,
		now:     opts.Now,
		opts:    opts,
		state:   Loading,
	}
	if s.shuffle == nil {
		s.shuffle = rand.Shuffle
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.log = logger.OrNop(log).With("session_id", s.id)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Load fetches the question set and the ledger snapshot together, then
// applies the revision filter. Ledger failures degrade to an empty
// snapshot; a source failure or an empty result moves the session to
// Failed.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = Loading
	s.err = nil
	s.mu.Unlock()

	var (
		fetched  []questions.Question
		snapshot []ledger.AnswerEvent
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		fetched, err = s.source.FetchRevision(groupCtx, questions.RevisionQuery{
			ThemeIDs:      s.opts.ThemeIDs,
			IncorrectOnly: s.opts.IncorrectOnly,
		})
		return err
	})
	group.Go(func() error {
		snapshot = s.events.Load(groupCtx)
		return nil
	})
	err := group.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.fail(fmt.Errorf("load questions: %w", err))
		return s.err
	}

	selected := FilterRevision(fetched, snapshot, s.opts.ThemeIDs, s.opts.IncorrectOnly)
	s.shuffle(len(selected), func(i, j int) { selected[i], selected[j] = selected[j], selected[i] })
	if len(selected) > MaxQuestions {
		selected = selected[:MaxQuestions]
	}
	if len(selected) == 0 {
		s.fail(ErrNoQuestions)
		return s.err
	}

	s.questions = selected
	s.reset()
	s.log.Info("revision session ready", "questions", len(selected), "themes", s.opts.ThemeIDs, "incorrect_only", s.opts.IncorrectOnly)
	return nil
}

func (s *Session) fail(err error) {
	s.state = Failed
	s.err = err
	s.questions = nil
	s.log.Warn("revision session failed", "error", err)
}

func (s *Session) reset() {
	s.state = Ready
	s.index = 0
	s.score = 0
	s.answered = 0
	s.achievement = false
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Current returns the question being played, if any.
func (s *Session) Current() (questions.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready && s.state != Answered {
		return questions.Question{}, false
	}
	return s.questions[s.index], true
}

// Position is the 1-based index of the current question and the set size.
func (s *Session) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index + 1, len(s.questions)
}

func (s *Session) Select(ctx context.Context, key string) (Outcome, error) {
	return s.answer(ctx, &key)
}

// TimeUp records the current question as unanswered.
func (s *Session) TimeUp(ctx context.Context) (Outcome, error) {
	return s.answer(ctx, nil)
}

func (s *Session) answer(ctx context.Context, key *string) (Outcome, error) {
	s.mu.Lock()
	switch s.state {
	case Answered:
		s.mu.Unlock()
		return Outcome{}, ErrAlreadyAnswered
	case Ready:
	default:
		state := s.state
		s.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %s", ErrNotReady, state)
	}

	current := s.questions[s.index]
	if key != nil && !current.HasOption(*key) {
		s.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownOption, *key)
	}

	event := ledger.NewEvent(current.ID, key, current.CorrectAnswer, s.now(), ledger.InRevision(current.ThemeID))
	s.state = Answered
	s.answered++
	if event.IsCorrect {
		s.score++
	}
	s.mu.Unlock()

	outcome := Outcome{
		Correct:       event.IsCorrect,
		UserAnswer:    event.UserAnswer,
		CorrectAnswer: current.CorrectAnswer,
		Explanation:   current.Explanation,
	}

	if err := s.events.Append(ctx, event); err != nil {
		s.log.Error("failed to record answer", "question_id", current.ID, "error", err)
		return outcome, nil
	}
	s.log.Debug("answer recorded", "question_id", current.ID, "correct", event.IsCorrect, "timed_out", !event.Answered())

	earned := metrics.RecentRunCorrect(s.events.Load(ctx), metrics.DefaultAchievementRun)
	s.mu.Lock()
	s.achievement = earned
	s.mu.Unlock()
	return outcome, nil
}

// AchievementEarned reports whether the most recent answers recorded in
// the ledger form a full correct run.
func (s *Session) AchievementEarned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievement
}

// Advance moves past an answered question and returns the new state.
func (s *Session) Advance() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Answered {
		return s.state, fmt.Errorf("%w: %s", ErrNotAnswered, s.state)
	}
	s.achievement = false
	if s.index+1 >= len(s.questions) {
		s.state = Complete
		s.log.Info("revision session complete", "score", s.score, "total", len(s.questions))
		return s.state, nil
	}
	s.index++
	s.state = Ready
	return s.state, nil
}

// Restart replays the loaded set with fresh counters. The ledger is left
// as is.
func (s *Session) Restart(shuffle bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return fmt.Errorf("%w: %s", ErrNotReady, s.state)
	}
	if shuffle {
		s.shuffle(len(s.questions), func(i, j int) {
			s.questions[i], s.questions[j] = s.questions[j], s.questions[i]
		})
	}
	s.reset()
	return nil
}

type Summary struct {
	Score      int
	Total      int
	Answered   int
	Percentage int
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSummary(s.score, len(s.questions), s.answered)
}

func newSummary(score, total, answered int) Summary {
	summary := Summary{Score: score, Total: total, Answered: answered}
	if total > 0 {
		summary.Percentage = int(math.Round(100 * float64(score) / float64(total)))
	}
	return summary
}

func (s Summary) Stars() int {
	switch {
	case s.Percentage >= 90:
		return 3
	case s.Percentage >= 70:
		return 2
	case s.Percentage >= 50:
		return 1
	default:
		return 0
	}
}

func (s Summary) Message() string {
	switch s.Stars() {
	case 3:
		return "Outstanding! You are a champion!"
	case 2:
		return "Great job! You did really well!"
	case 1:
		return "Well played! Keep it up!"
	default:
		return "Keep practicing, you will get there!"
	}
}
