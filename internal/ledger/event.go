package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuestionID accepts either a JSON number or a JSON string. Ids in canonical
// integer form are written back as numbers so files produced by earlier
// clients round-trip; anything else ("007", "+5") stays a string.
type QuestionID string

func (id QuestionID) MarshalJSON() ([]byte, error) {
	text := string(id)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil && strconv.FormatInt(n, 10) == text {
		return []byte(text), nil
	}
	return json.Marshal(text)
}

func (id *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = QuestionID(strings.TrimSpace(text))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("question id: %w", err)
	}
	*id = QuestionID(number.String())
	return nil
}

// AnswerEvent is one answered (or timed-out) question. A nil UserAnswer
// means the timer ran out.
type AnswerEvent struct {
	QuestionID    QuestionID `json:"questionId"`
	UserAnswer    *string    `json:"userAnswer"`
	CorrectAnswer string     `json:"correctAnswer"`
	IsCorrect     bool       `json:"isCorrect"`
	Timestamp     time.Time  `json:"timestamp"`
	ThemeID       *int       `json:"themeId,omitempty"`
	IsRevision    bool       `json:"isRevision,omitempty"`
}

type EventOption func(*AnswerEvent)

// InRevision marks the event as produced by a revision session.
func InRevision(themeID *int) EventOption {
	return func(e *AnswerEvent) {
		e.IsRevision = true
		WithTheme(themeID)(e)
	}
}

func WithTheme(themeID *int) EventOption {
	return func(e *AnswerEvent) {
		if themeID != nil {
			theme := *themeID
			e.ThemeID = &theme
		}
	}
}

// NewEvent fixes IsCorrect at creation time; it is never recomputed.
func NewEvent(questionID QuestionID, userAnswer *string, correctAnswer string, at time.Time, opts ...EventOption) AnswerEvent {
	event := AnswerEvent{
		QuestionID:    questionID,
		CorrectAnswer: correctAnswer,
		IsCorrect:     userAnswer != nil && *userAnswer == correctAnswer,
		Timestamp:     at.UTC().Truncate(time.Millisecond),
	}
	if userAnswer != nil {
		answer := *userAnswer
		event.UserAnswer = &answer
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// Valid reports whether the event carries the fields metrics rely on.
func (e AnswerEvent) Valid() bool {
	return e.QuestionID != "" && !e.Timestamp.IsZero()
}

func (e AnswerEvent) Answered() bool {
	return e.UserAnswer != nil
}
