// Package metrics derives profile statistics from a ledger snapshot. Every
// function is total: empty input yields zero values and events that are not
// well-formed are ignored.
package metrics

import (
	"math"
	"sort"
	"time"

	"flashquiz/internal/ledger"
)

const DefaultAchievementRun = 5

type Summary struct {
	TotalQuestions   int
	CorrectAnswers   int
	IncorrectAnswers int
	Accuracy         int
	Streak           int
	LastActivity     time.Time
	HasActivity      bool
}

func Summarize(events []ledger.AnswerEvent) Summary {
	valid := wellFormed(events)
	correct := countCorrect(valid)
	last, ok := LastActivity(valid)
	return Summary{
		TotalQuestions:   len(valid),
		CorrectAnswers:   correct,
		IncorrectAnswers: len(valid) - correct,
		Accuracy:         Accuracy(valid),
		Streak:           CurrentStreak(valid),
		LastActivity:     last,
		HasActivity:      ok,
	}
}

// Accuracy is round(100*correct/total), except that a record with any
// incorrect answer is capped at 99 so 100 means every answer was correct.
func Accuracy(events []ledger.AnswerEvent) int {
	valid := wellFormed(events)
	if len(valid) == 0 {
		return 0
	}
	correct := countCorrect(valid)
	percent := int(math.Round(100 * float64(correct) / float64(len(valid))))
	if percent == 100 && correct < len(valid) {
		return 99
	}
	return percent
}

// CurrentStreak counts correct answers from the most recent backwards.
// Equal timestamps keep ledger order.
func CurrentStreak(events []ledger.AnswerEvent) int {
	streak := 0
	for _, event := range newestFirst(events) {
		if !event.IsCorrect {
			break
		}
		streak++
	}
	return streak
}

func LastActivity(events []ledger.AnswerEvent) (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, event := range events {
		if !event.Valid() {
			continue
		}
		if !found || event.Timestamp.After(latest) {
			latest = event.Timestamp
			found = true
		}
	}
	return latest, found
}

// ConsecutiveDayStreak counts active calendar days ending at today. No
// activity yet today does not break the streak; any earlier gap does.
// Dates are taken in today's location.
func ConsecutiveDayStreak(events []ledger.AnswerEvent, today time.Time) int {
	active := make(map[civilDate]struct{})
	for _, event := range wellFormed(events) {
		active[dateOf(event.Timestamp.In(today.Location()))] = struct{}{}
	}
	if len(active) == 0 {
		return 0
	}

	day := dateOf(today)
	if _, ok := active[day]; !ok {
		day = day.addDays(-1)
	}

	streak := 0
	for {
		if _, ok := active[day]; !ok {
			return streak
		}
		streak++
		day = day.addDays(-1)
	}
}

// WeeklyProgress is the share of target reached by events from the last
// seven calendar days including today, capped at 100.
func WeeklyProgress(events []ledger.AnswerEvent, today time.Time, target int) int {
	if target <= 0 {
		return 0
	}

	todayDate := dateOf(today)
	count := 0
	for _, event := range wellFormed(events) {
		daysAgo := todayDate.daysSince(dateOf(event.Timestamp.In(today.Location())))
		if daysAgo >= 0 && daysAgo < 7 {
			count++
		}
	}

	progress := int(math.Round(100 * float64(count) / float64(target)))
	if progress > 100 {
		return 100
	}
	if progress < 0 {
		return 0
	}
	return progress
}

// ThemeLookup resolves the theme of a question record.
type ThemeLookup func(ledger.QuestionID) (int, bool)

// FilterByTheme keeps events whose theme is one of themeIDs. The theme comes
// from the event when attached, otherwise from lookup.
func FilterByTheme(events []ledger.AnswerEvent, themeIDs []int, lookup ThemeLookup) []ledger.AnswerEvent {
	wanted := make(map[int]struct{}, len(themeIDs))
	for _, id := range themeIDs {
		wanted[id] = struct{}{}
	}

	filtered := make([]ledger.AnswerEvent, 0)
	for _, event := range wellFormed(events) {
		theme, ok := themeOf(event, lookup)
		if !ok {
			continue
		}
		if _, match := wanted[theme]; match {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// FilterIncorrect returns, for each question with at least one incorrect
// attempt, its first incorrect event in ledger order.
func FilterIncorrect(events []ledger.AnswerEvent) []ledger.AnswerEvent {
	seen := make(map[ledger.QuestionID]struct{})
	filtered := make([]ledger.AnswerEvent, 0)
	for _, event := range wellFormed(events) {
		if event.IsCorrect {
			continue
		}
		if _, dup := seen[event.QuestionID]; dup {
			continue
		}
		seen[event.QuestionID] = struct{}{}
		filtered = append(filtered, event)
	}
	return filtered
}

func IncorrectQuestionIDs(events []ledger.AnswerEvent) map[ledger.QuestionID]struct{} {
	ids := make(map[ledger.QuestionID]struct{})
	for _, event := range FilterIncorrect(events) {
		ids[event.QuestionID] = struct{}{}
	}
	return ids
}

// RecentRunCorrect reports whether the last n appended events are all
// correct.
func RecentRunCorrect(events []ledger.AnswerEvent, n int) bool {
	valid := wellFormed(events)
	if n <= 0 || len(valid) < n {
		return false
	}
	for _, event := range valid[len(valid)-n:] {
		if !event.IsCorrect {
			return false
		}
	}
	return true
}

func themeOf(event ledger.AnswerEvent, lookup ThemeLookup) (int, bool) {
	if event.ThemeID != nil {
		return *event.ThemeID, true
	}
	if lookup == nil {
		return 0, false
	}
	return lookup(event.QuestionID)
}

func newestFirst(events []ledger.AnswerEvent) []ledger.AnswerEvent {
	sorted := wellFormed(events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// wellFormed always returns a fresh slice so callers may reorder it.
func wellFormed(events []ledger.AnswerEvent) []ledger.AnswerEvent {
	valid := make([]ledger.AnswerEvent, 0, len(events))
	for _, event := range events {
		if event.Valid() {
			valid = append(valid, event)
		}
	}
	return valid
}

func countCorrect(events []ledger.AnswerEvent) int {
	correct := 0
	for _, event := range events {
		if event.IsCorrect {
			correct++
		}
	}
	return correct
}
