package questions

func intPtr(v int) *int {
	return &v
}

// Builtin is the bundled question set served when the remote service
// cannot be reached. Each call returns a fresh copy.
func Builtin() []Question {
	return []Question{
		{
			ID:            "1",
			Question:      "What is 8 × 7?",
			Answers:       map[string]string{"a": "54", "b": "56", "c": "58", "d": "62"},
			CorrectAnswer: "b",
			ThemeID:       intPtr(1),
			Theme:         "Mathematics",
			Explanation:   "8 × 7 = 56 can be pictured as 8 groups of 7 or 7 groups of 8.",
		},
		{
			ID:            "2",
			Question:      "Which planet is closest to the Sun?",
			Answers:       map[string]string{"a": "Venus", "b": "Earth", "c": "Mercury", "d": "Mars"},
			CorrectAnswer: "c",
			ThemeID:       intPtr(2),
			Theme:         "Science",
			Explanation:   "Mercury is the first planet of the solar system and the closest to the Sun.",
			Image:         "https://placehold.co/600x400/FFDAB9/333?text=Solar+system",
		},
		{
			ID:            "3",
			Question:      "Who wrote 'Les Misérables'?",
			Answers:       map[string]string{"a": "Alexandre Dumas", "b": "Victor Hugo", "c": "Émile Zola", "d": "Jules Verne"},
			CorrectAnswer: "b",
			ThemeID:       intPtr(5),
			Theme:         "Literature",
			Explanation:   "Les Misérables is a historical novel by Victor Hugo published in 1862.",
		},
	}
}

func BuiltinThemes() []Theme {
	return []Theme{
		{ID: 1, Title: "Mathematics", Icon: "calculator"},
		{ID: 2, Title: "Science", Icon: "flask"},
		{ID: 5, Title: "Literature", Icon: "book"},
	}
}
