package questionbank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"flashquiz/internal/ledger"
	"flashquiz/internal/questions"
)

const DefaultPageSize = 10

var ErrInvalidQuestion = errors.New("invalid question")

// Store keeps the question catalogue served by the development API.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "questions.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS themes (
			theme_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			progress INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			question_id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			answers_json TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			theme_id INTEGER,
			explanation TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			achievement_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			unlocked INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_position ON questions(position);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_theme ON questions(theme_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Import upserts the seed in one transaction. Questions keep the catalogue
// order they were first imported in; new ones are appended.
func (s *Store) Import(ctx context.Context, seed Seed) error {
	for _, q := range seed.Questions {
		if !q.Usable() {
			return fmt.Errorf("%w: %q", ErrInvalidQuestion, q.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, theme := range seed.Themes {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO themes (theme_id, title, icon, progress) VALUES (?, ?, ?, ?)
			 ON CONFLICT(theme_id) DO UPDATE SET
				title = excluded.title,
				icon = excluded.icon,
				progress = excluded.progress`,
			theme.ID, theme.Title, theme.Icon, theme.Progress,
		); err != nil {
			return err
		}
	}

	for _, achievement := range seed.Achievements {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO achievements (achievement_id, title, icon, unlocked) VALUES (?, ?, ?, ?)
			 ON CONFLICT(achievement_id) DO UPDATE SET
				title = excluded.title,
				icon = excluded.icon,
				unlocked = excluded.unlocked`,
			achievement.ID, achievement.Title, achievement.Icon, achievement.Unlocked,
		); err != nil {
			return err
		}
	}

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM questions`).Scan(&next); err != nil {
		return err
	}

	now := time.Now().UTC().UnixNano()
	for _, q := range seed.Questions {
		answersJSON, err := json.Marshal(q.Answers)
		if err != nil {
			return err
		}
		var themeID any
		if q.ThemeID != nil {
			themeID = *q.ThemeID
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO questions (question_id, position, prompt, answers_json, correct_answer, theme_id, explanation, image, created_at_unix)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(question_id) DO UPDATE SET
				prompt = excluded.prompt,
				answers_json = excluded.answers_json,
				correct_answer = excluded.correct_answer,
				theme_id = excluded.theme_id,
				explanation = excluded.explanation,
				image = excluded.image`,
			string(q.ID), next, q.Question, string(answersJSON), q.CorrectAnswer, themeID, q.Explanation, q.Image, now,
		)
		if err != nil {
			return err
		}
		// Updates leave position untouched, so gaps are possible.
		next++
	}

	return tx.Commit()
}

// Page returns the page-th slice (1-based) of the catalogue. Past the end
// it returns an empty slice.
func (s *Store) Page(ctx context.Context, page, pageSize int) ([]questions.Question, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return s.queryQuestions(
		ctx,
		`SELECT q.question_id, q.prompt, q.answers_json, q.correct_answer, q.theme_id, COALESCE(t.title, ''), q.explanation, q.image
		 FROM questions q
		 LEFT JOIN themes t ON t.theme_id = q.theme_id
		 ORDER BY q.position ASC
		 LIMIT ? OFFSET ?`,
		pageSize, (page-1)*pageSize,
	)
}

// ByThemes returns every question in the given themes, or the whole
// catalogue when themeIDs is empty.
func (s *Store) ByThemes(ctx context.Context, themeIDs []int) ([]questions.Question, error) {
	query := `SELECT q.question_id, q.prompt, q.answers_json, q.correct_answer, q.theme_id, COALESCE(t.title, ''), q.explanation, q.image
		 FROM questions q
		 LEFT JOIN themes t ON t.theme_id = q.theme_id`
	args := make([]any, 0, len(themeIDs))
	if len(themeIDs) > 0 {
		placeholders := make([]string, 0, len(themeIDs))
		for _, id := range themeIDs {
			placeholders = append(placeholders, "?")
			args = append(args, id)
		}
		query += ` WHERE q.theme_id IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY q.position ASC`

	return s.queryQuestions(ctx, query, args...)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]questions.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]questions.Question, 0)
	for rows.Next() {
		var (
			questionID  string
			prompt      string
			answersJSON string
			correct     string
			themeID     sql.NullInt64
			themeTitle  string
			explanation string
			image       string
		)
		if err := rows.Scan(&questionID, &prompt, &answersJSON, &correct, &themeID, &themeTitle, &explanation, &image); err != nil {
			return nil, err
		}

		var answers map[string]string
		if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
			return nil, err
		}

		q := questions.Question{
			ID:            ledger.QuestionID(questionID),
			Question:      prompt,
			Answers:       answers,
			CorrectAnswer: correct,
			Theme:         themeTitle,
			Explanation:   explanation,
			Image:         image,
		}
		if themeID.Valid {
			id := int(themeID.Int64)
			q.ThemeID = &id
		}
		result = append(result, q)
	}

	return result, rows.Err()
}

func (s *Store) Themes(ctx context.Context) ([]questions.Theme, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT theme_id, title, icon, progress FROM themes ORDER BY theme_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	themes := make([]questions.Theme, 0)
	for rows.Next() {
		var theme questions.Theme
		if err := rows.Scan(&theme.ID, &theme.Title, &theme.Icon, &theme.Progress); err != nil {
			return nil, err
		}
		themes = append(themes, theme)
	}
	return themes, rows.Err()
}

func (s *Store) Achievements(ctx context.Context) ([]questions.Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT achievement_id, title, icon, unlocked FROM achievements ORDER BY achievement_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := make([]questions.Achievement, 0)
	for rows.Next() {
		var achievement questions.Achievement
		if err := rows.Scan(&achievement.ID, &achievement.Title, &achievement.Icon, &achievement.Unlocked); err != nil {
			return nil, err
		}
		achievements = append(achievements, achievement)
	}
	return achievements, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

func (s *Store) String() string {
	return fmt.Sprintf("questionbank_store(%T)", s.db)
}
