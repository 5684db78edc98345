package questions

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient("http://questions.test", &http.Client{Transport: rt})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestFetchPageDecodesQuestions(t *testing.T) {
	var seenPage string
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seenPage = r.URL.Query().Get("page")
		if r.URL.Path != "/questions" {
			t.Fatalf("path = %q, want /questions", r.URL.Path)
		}
		return jsonResponse(http.StatusOK, `[{"id":7,"question":"2+2?","answers":{"a":"3","b":"4"},"correct_answer":"b","theme_id":1,"image":null}]`), nil
	}))

	got, err := client.FetchPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if seenPage != "1" {
		t.Fatalf("page = %q, want 1 for non-positive input", seenPage)
	}
	if len(got) != 1 {
		t.Fatalf("len(questions) = %d, want 1", len(got))
	}
	q := got[0]
	if q.ID != "7" || q.CorrectAnswer != "b" || q.ThemeID == nil || *q.ThemeID != 1 || q.Image != "" {
		t.Fatalf("unexpected question: %+v", q)
	}
}

func TestFetchRevisionEncodesQuery(t *testing.T) {
	var seen *http.Request
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return jsonResponse(http.StatusOK, `[]`), nil
	}))

	if _, err := client.FetchRevision(context.Background(), RevisionQuery{ThemeIDs: []int{1, 5}, IncorrectOnly: true}); err != nil {
		t.Fatalf("FetchRevision returned error: %v", err)
	}
	if seen.URL.Path != "/revision_questions" {
		t.Fatalf("path = %q, want /revision_questions", seen.URL.Path)
	}
	if got := seen.URL.Query().Get("themes"); got != "1,5" {
		t.Fatalf("themes = %q, want 1,5", got)
	}
	if got := seen.URL.Query().Get("incorrect_only"); got != "1" {
		t.Fatalf("incorrect_only = %q, want 1", got)
	}
}

func TestNonOKStatusIsAPIError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{"error":"upstream down"}`), nil
	}))

	_, err := client.FetchThemes(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream down" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("APIError should match ErrNetwork")
	}
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}))

	_, err := client.FetchAchievements(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestMalformedBodyIsNetworkError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not-json`), nil
	}))

	if _, err := client.FetchPage(context.Background(), 2); !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork for undecodable body, got %v", err)
	}
}

func TestClientAgainstHTTPServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/themes" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Maths","icon":"calculator","progress":40}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", server.Client())
	themes, err := client.FetchThemes(context.Background())
	if err != nil {
		t.Fatalf("FetchThemes returned error: %v", err)
	}
	if len(themes) != 1 || themes[0].Title != "Maths" || themes[0].Progress != 40 {
		t.Fatalf("unexpected themes: %+v", themes)
	}

	_, err = client.FetchAchievements(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestQuestionHelpers(t *testing.T) {
	q := Builtin()[2]

	options := q.Options()
	if len(options) != 4 || options[0].Key != "a" || options[3].Key != "d" {
		t.Fatalf("options not sorted by key: %+v", options)
	}
	if q.CorrectText() != "Victor Hugo" {
		t.Fatalf("CorrectText = %q", q.CorrectText())
	}
	if !strings.Contains(q.Hint(), `"V"`) {
		t.Fatalf("Hint = %q, want first letter V", q.Hint())
	}
	if !q.Usable() {
		t.Fatalf("builtin question should be usable")
	}

	broken := Question{ID: "9", Question: "?", Answers: map[string]string{"a": "x"}, CorrectAnswer: "z"}
	if broken.Usable() {
		t.Fatalf("question without its correct option should not be usable")
	}
}

func TestHintUppercasesFirstRune(t *testing.T) {
	q := Question{Answers: map[string]string{"a": "émile"}, CorrectAnswer: "a"}
	if got := q.Hint(); got != `The answer starts with "É"` {
		t.Fatalf("Hint = %q", got)
	}
}

func TestBuiltinReturnsFreshCopies(t *testing.T) {
	first := Builtin()
	first[0].Answers["a"] = "changed"
	if Builtin()[0].Answers["a"] != "54" {
		t.Fatalf("Builtin shares state between calls")
	}
}
