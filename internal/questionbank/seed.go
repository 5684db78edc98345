package questionbank

import (
	"encoding/json"
	"fmt"
	"os"

	"flashquiz/internal/questions"
)

// Seed is the JSON document accepted by the import.
type Seed struct {
	Themes       []questions.Theme       `json:"themes"`
	Questions    []questions.Question    `json:"questions"`
	Achievements []questions.Achievement `json:"achievements"`
}

func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, err
	}

	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return seed, nil
}

// DefaultSeed is the bundled question set plus the stock achievements.
func DefaultSeed() Seed {
	return Seed{
		Themes:    questions.BuiltinThemes(),
		Questions: questions.Builtin(),
		Achievements: []questions.Achievement{
			{ID: 1, Title: "First answer", Icon: "star"},
			{ID: 2, Title: "Five in a row", Icon: "flame"},
			{ID: 3, Title: "Theme explorer", Icon: "compass"},
		},
	}
}
