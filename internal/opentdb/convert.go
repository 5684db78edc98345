package opentdb

import (
	"crypto/sha1"
	"encoding/hex"
	"hash/crc32"
	"html"
	"math/rand/v2"
	"sort"
	"strings"

	"flashquiz/internal/ledger"
	"flashquiz/internal/questionbank"
	"flashquiz/internal/questions"
)

// Imported categories get theme ids above the hand-curated range.
const themeIDBase = 1000

type Shuffler func(n int, swap func(i, j int))

// ToSeed converts trivia into bank records. Answers are shuffled onto keys
// a, b, c...; question ids are content hashes so re-imports are idempotent.
// Records without a correct answer are dropped.
func ToSeed(raw []RawQuestion, shuffle Shuffler) questionbank.Seed {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	themes := make(map[int]questions.Theme)
	seed := questionbank.Seed{Questions: make([]questions.Question, 0, len(raw))}
	for _, item := range raw {
		q, ok := buildQuestion(item, shuffle)
		if !ok {
			continue
		}
		if category := strings.TrimSpace(html.UnescapeString(item.Category)); category != "" {
			id := themeID(category)
			q.ThemeID = &id
			q.Theme = category
			themes[id] = questions.Theme{ID: id, Title: category, Icon: "sparkles"}
		}
		seed.Questions = append(seed.Questions, q)
	}

	for _, theme := range themes {
		seed.Themes = append(seed.Themes, theme)
	}
	sort.Slice(seed.Themes, func(i, j int) bool { return seed.Themes[i].ID < seed.Themes[j].ID })
	return seed
}

func buildQuestion(raw RawQuestion, shuffle Shuffler) (questions.Question, bool) {
	correct := strings.TrimSpace(html.UnescapeString(raw.CorrectAnswer))
	prompt := strings.TrimSpace(html.UnescapeString(raw.Question))
	if correct == "" || prompt == "" {
		return questions.Question{}, false
	}

	type choice struct {
		text      string
		isCorrect bool
	}

	choices := make([]choice, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		choices = append(choices, choice{
			text:      html.UnescapeString(incorrect),
			isCorrect: false,
		})
	}
	choices = append(choices, choice{text: correct, isCorrect: true})

	shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})

	q := questions.Question{
		Question: prompt,
		Answers:  make(map[string]string, len(choices)),
	}
	for idx, candidate := range choices {
		key := string(rune('a' + idx))
		q.Answers[key] = candidate.text
		if candidate.isCorrect {
			q.CorrectAnswer = key
		}
	}
	q.ID = makeQuestionID(prompt, correct)
	return q, true
}

func makeQuestionID(prompt, correct string) ledger.QuestionID {
	hash := sha1.Sum([]byte(prompt + "|" + correct))
	return ledger.QuestionID("otdb_" + hex.EncodeToString(hash[:8]))
}

func themeID(category string) int {
	return themeIDBase + int(crc32.ChecksumIEEE([]byte(strings.ToLower(category)))%100000)
}
