package session

import (
	"flashquiz/internal/ledger"
	"flashquiz/internal/metrics"
	"flashquiz/internal/questions"
)

// FilterRevision keeps playable questions in the selected themes (all
// themes when none is selected). With incorrectOnly and a non-empty
// history it further keeps questions that were answered wrong at least
// once. Input order is preserved.
func FilterRevision(all []questions.Question, history []ledger.AnswerEvent, themeIDs []int, incorrectOnly bool) []questions.Question {
	wanted := make(map[int]struct{}, len(themeIDs))
	for _, id := range themeIDs {
		wanted[id] = struct{}{}
	}

	var missed map[ledger.QuestionID]struct{}
	if incorrectOnly && len(history) > 0 {
		missed = metrics.IncorrectQuestionIDs(history)
	}

	selected := make([]questions.Question, 0, len(all))
	for _, q := range all {
		if !q.Usable() {
			continue
		}
		if len(wanted) > 0 {
			if q.ThemeID == nil {
				continue
			}
			if _, ok := wanted[*q.ThemeID]; !ok {
				continue
			}
		}
		if missed != nil {
			if _, ok := missed[q.ID]; !ok {
				continue
			}
		}
		selected = append(selected, q)
	}
	return selected
}
