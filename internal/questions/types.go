package questions

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"flashquiz/internal/ledger"
)

type Question struct {
	ID            ledger.QuestionID `json:"id"`
	Question      string            `json:"question"`
	Answers       map[string]string `json:"answers"`
	CorrectAnswer string            `json:"correct_answer"`
	ThemeID       *int              `json:"theme_id,omitempty"`
	Theme         string            `json:"theme,omitempty"`
	Explanation   string            `json:"explanation,omitempty"`
	Image         string            `json:"image,omitempty"`
}

type Option struct {
	Key  string
	Text string
}

type Theme struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	Progress int    `json:"progress"`
}

type Achievement struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	Unlocked bool   `json:"unlocked"`
}

type RevisionQuery struct {
	ThemeIDs      []int
	IncorrectOnly bool
}

type Source interface {
	FetchPage(ctx context.Context, page int) ([]Question, error)
	FetchRevision(ctx context.Context, query RevisionQuery) ([]Question, error)
	FetchThemes(ctx context.Context) ([]Theme, error)
	FetchAchievements(ctx context.Context) ([]Achievement, error)
}

// Options lists the answers in key order.
func (q Question) Options() []Option {
	keys := make([]string, 0, len(q.Answers))
	for key := range q.Answers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	options := make([]Option, 0, len(keys))
	for _, key := range keys {
		options = append(options, Option{Key: key, Text: q.Answers[key]})
	}
	return options
}

func (q Question) HasOption(key string) bool {
	_, ok := q.Answers[key]
	return ok
}

func (q Question) CorrectText() string {
	return q.Answers[q.CorrectAnswer]
}

func (q Question) Hint() string {
	text := strings.TrimSpace(q.CorrectText())
	if text == "" {
		return "Look carefully at every option!"
	}
	first, _ := utf8.DecodeRuneInString(text)
	return fmt.Sprintf("The answer starts with %q", string(unicode.ToUpper(first)))
}

// Usable reports whether the record can be played: it has an id, a prompt
// and a correct answer among its options.
func (q Question) Usable() bool {
	return q.ID != "" && strings.TrimSpace(q.Question) != "" && q.HasOption(q.CorrectAnswer)
}
