package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flashquiz/internal/blobstore"
	"flashquiz/internal/ledger"
	"flashquiz/internal/profile"
	"flashquiz/internal/questions"
)

type offlineSource struct{}

func (offlineSource) FetchPage(context.Context, int) ([]questions.Question, error) {
	return nil, questions.ErrNetwork
}

func (offlineSource) FetchRevision(context.Context, questions.RevisionQuery) ([]questions.Question, error) {
	return nil, questions.ErrNetwork
}

func (offlineSource) FetchThemes(context.Context) ([]questions.Theme, error) {
	return nil, questions.ErrNetwork
}

func (offlineSource) FetchAchievements(context.Context) ([]questions.Achievement, error) {
	return nil, &questions.APIError{StatusCode: 503, Message: "maintenance"}
}

type testEnv struct {
	cfg    Config
	ledger *ledger.Ledger
	dir    string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	store, err := blobstore.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	l := ledger.New(store, "", nil)
	return testEnv{
		cfg: Config{
			Source:        questions.NewFallbackSource(offlineSource{}, nil),
			Ledger:        l,
			Profile:       profile.New(l, store, 10, nil),
			ServerURL:     "http://questions.test",
			AnswerTimeout: -1,
		},
		ledger: l,
		dir:    dir,
	}
}

func (e testEnv) events(t *testing.T) []ledger.AnswerEvent {
	t.Helper()
	events, err := e.ledger.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	return events
}

func TestRunRequiresCollaborators(t *testing.T) {
	if err := Run(context.Background(), strings.NewReader(""), io.Discard, Config{}); err == nil {
		t.Fatalf("expected error for missing collaborators")
	}
}

func TestRunHelpAndUnknownCommand(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("help\nbogus\nexit\n"), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "revise [theme_id,...] [--incorrect]") {
		t.Fatalf("help output missing revise usage: %s", out.String())
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected unknown command message: %s", out.String())
	}
}

func TestRunRevisionRecordsAnswersAndShowsSummary(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	input := "revise 1\nh\na\nno\nprofile\nexit\n"
	if err := Run(context.Background(), strings.NewReader(input), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Question 1/1",
		`The answer starts with "5"`,
		"Wrong. The answer was B. 56",
		"Score: 0/1 (0%)",
		"questions answered: 1",
		"accuracy: 0%",
		"avatar: not set",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	events := env.events(t)
	if len(events) != 1 || events[0].QuestionID != "1" || events[0].IsCorrect || !events[0].IsRevision {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestRunRevisionReplay(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	input := "revise 1\nb\nyes\nb\nno\nexit\n"
	if err := Run(context.Background(), strings.NewReader(input), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Count(out.String(), "Score: 1/1 (100%) ***"); got != 2 {
		t.Fatalf("expected two perfect rounds, got %d:\n%s", got, out.String())
	}
	if len(env.events(t)) != 2 {
		t.Fatalf("expected one event per round")
	}
}

func TestRunRevisionWithoutMatches(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("revise 42\nexit\n"), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "No questions match this selection") {
		t.Fatalf("expected empty selection message:\n%s", out.String())
	}
}

func TestRunRevisionRejectsBadArguments(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("revise x\nrevise --all\nexit\n"), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Count(out.String(), "invalid revise arguments"); got != 2 {
		t.Fatalf("expected two argument errors, got %d:\n%s", got, out.String())
	}
}

func TestRunRevisionTimesOut(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.AnswerTimeout = 20 * time.Millisecond

	reader, writer := io.Pipe()
	go func() {
		_, _ = io.WriteString(writer, "revise 2\n")
		time.Sleep(200 * time.Millisecond)
		_, _ = io.WriteString(writer, "no\nexit\n")
		_ = writer.Close()
	}()

	var out bytes.Buffer
	if err := Run(context.Background(), reader, &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Time is up!") {
		t.Fatalf("expected timeout message:\n%s", out.String())
	}

	events := env.events(t)
	if len(events) != 1 || events[0].Answered() || events[0].IsCorrect {
		t.Fatalf("expected one unanswered event, got %+v", events)
	}
}

func TestRunFeedAnswersOncePerQuestion(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	input := "feed\nb\ns\nq\nfeed\nexit\n"
	if err := Run(context.Background(), strings.NewReader(input), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "Discover #1") || !strings.Contains(text, "Correct!") {
		t.Fatalf("unexpected feed output:\n%s", text)
	}
	// Offline, only page 1 is bundled; the next page reports the outage and
	// stays retryable.
	if !strings.Contains(text, "question service unavailable at http://questions.test") {
		t.Fatalf("expected retryable outage message:\n%s", text)
	}
	if strings.Contains(text, "You have seen every question") {
		t.Fatalf("an outage must not end the feed:\n%s", text)
	}

	events := env.events(t)
	if len(events) != 1 || events[0].IsRevision || !events[0].IsCorrect {
		t.Fatalf("unexpected feed events: %+v", events)
	}
}

func TestRunThemesFallbackAndAchievementError(t *testing.T) {
	env := newTestEnv(t)
	var out bytes.Buffer

	if err := Run(context.Background(), strings.NewReader("themes\nachievements\nexit\n"), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "5. Literature") {
		t.Fatalf("expected bundled themes:\n%s", text)
	}
	if !strings.Contains(text, "answered 503: maintenance") {
		t.Fatalf("expected achievements error:\n%s", text)
	}
}

func TestRunAvatarCommand(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "me.png")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatalf("write avatar: %v", err)
	}

	var out bytes.Buffer
	input := "avatar " + path + "\navatar\nprofile\nexit\n"
	if err := Run(context.Background(), strings.NewReader(input), &out, env.cfg); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Avatar updated.") || !strings.Contains(text, "usage: avatar <image_path>") || !strings.Contains(text, "avatar: set") {
		t.Fatalf("unexpected avatar output:\n%s", text)
	}
}

func TestRunEndsOnEOF(t *testing.T) {
	env := newTestEnv(t)
	if err := Run(context.Background(), strings.NewReader("profile"), io.Discard, env.cfg); err != nil {
		t.Fatalf("Run returned error at EOF: %v", err)
	}
}

func TestRunHonorsCanceledContext(t *testing.T) {
	env := newTestEnv(t)
	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, reader, io.Discard, env.cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}

func TestParseReviseArgs(t *testing.T) {
	opts, err := parseReviseArgs([]string{"1,2", "5", "--incorrect"})
	if err != nil {
		t.Fatalf("parseReviseArgs returned error: %v", err)
	}
	if len(opts.ThemeIDs) != 3 || opts.ThemeIDs[2] != 5 || !opts.IncorrectOnly {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if _, err := parseReviseArgs([]string{"0"}); err == nil {
		t.Fatalf("expected error for non-positive theme id")
	}
}
