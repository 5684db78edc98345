package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"flashquiz/internal/questions"
	"flashquiz/internal/session"
)

const maxBarrenPages = 3

func (s *shell) runFeed(ctx context.Context) error {
	barren := 0
	for {
		items := s.feed.Items()
		if s.cursor >= len(items) {
			if !s.feed.HasMore() {
				fmt.Fprintln(s.out, "You have seen every question. Come back later!")
				return nil
			}
			added, err := s.feed.LoadMore(ctx)
			if err != nil {
				return err
			}
			if added == 0 {
				barren++
				if barren >= maxBarrenPages && s.feed.HasMore() {
					fmt.Fprintln(s.out, "No new questions right now.")
					return nil
				}
			} else {
				barren = 0
			}
			continue
		}

		q := items[s.cursor]
		s.cursor++
		if s.feed.Viewed(q.ID) {
			continue
		}

		printQuestion(s.out, fmt.Sprintf("Discover #%d", s.cursor), q)
		quit, err := s.askFeed(ctx, q)
		if err != nil || quit {
			return err
		}
	}
}

func (s *shell) askFeed(ctx context.Context, q questions.Question) (bool, error) {
	invalid := 0
	for {
		fmt.Fprint(s.out, "Your answer (letter), s to skip, q to stop: ")
		line, err := s.input.next(ctx, 0)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q":
			return true, nil
		case "s":
			return false, nil
		}

		key, ok := matchOption(q, line)
		if !ok {
			invalid++
			if invalid >= s.cfg.MaxInvalidAnswers {
				fmt.Fprintln(s.out, "Skipping question after multiple invalid responses.")
				return false, nil
			}
			fmt.Fprintf(s.out, "Invalid input. Attempts remaining: %d\n", s.cfg.MaxInvalidAnswers-invalid)
			continue
		}

		outcome, err := s.feed.Answer(ctx, q.ID, key)
		if err != nil {
			fmt.Fprintf(s.out, "%v\n", err)
			return false, nil
		}
		s.printOutcome(q, outcome)
		return false, nil
	}
}

func (s *shell) runRevision(ctx context.Context, opts session.Options) error {
	sess := session.New(s.cfg.Source, s.cfg.Ledger, opts, s.log)
	fmt.Fprintln(s.out, "Loading questions...")
	if err := sess.Load(ctx); err != nil {
		if errors.Is(err, session.ErrNoQuestions) {
			fmt.Fprintln(s.out, "No questions match this selection. Pick other themes or drop --incorrect, then try again.")
			return nil
		}
		return err
	}

	for {
		quit, err := s.playRound(ctx, sess)
		if err != nil || quit {
			return err
		}

		summary := sess.Summary()
		fmt.Fprintln(s.out)
		fmt.Fprintf(s.out, "Score: %d/%d (%d%%) %s\n", summary.Score, summary.Total, summary.Percentage, stars(summary.Stars()))
		fmt.Fprintln(s.out, summary.Message())

		again, err := s.promptYesNo(ctx, "Play again? (yes/no): ")
		if err != nil || !again {
			return err
		}
		if err := sess.Restart(true); err != nil {
			return err
		}
	}
}

func (s *shell) playRound(ctx context.Context, sess *session.Session) (bool, error) {
	for {
		q, ok := sess.Current()
		if !ok {
			return false, nil
		}
		index, total := sess.Position()
		printQuestion(s.out, fmt.Sprintf("Question %d/%d", index, total), q)

		outcome, quit, err := s.askRevision(ctx, sess, q)
		if err != nil || quit {
			return quit, err
		}
		s.printOutcome(q, outcome)
		if sess.AchievementEarned() {
			fmt.Fprintln(s.out, "Achievement unlocked: five correct answers in a row!")
		}

		if _, err := sess.Advance(); err != nil {
			return false, err
		}
	}
}

func (s *shell) askRevision(ctx context.Context, sess *session.Session, q questions.Question) (session.Outcome, bool, error) {
	var deadline time.Time
	if s.cfg.AnswerTimeout > 0 {
		deadline = time.Now().Add(s.cfg.AnswerTimeout)
		fmt.Fprintf(s.out, "You have %s.\n", s.cfg.AnswerTimeout)
	}

	invalid := 0
	for {
		fmt.Fprint(s.out, "Your answer (letter), h for a hint, q to stop: ")

		var wait time.Duration
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				return s.timeUp(ctx, sess)
			}
		}

		line, err := s.input.next(ctx, wait)
		if errors.Is(err, errAnswerTimeout) {
			return s.timeUp(ctx, sess)
		}
		if err != nil {
			return session.Outcome{}, false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q":
			return session.Outcome{}, true, nil
		case "h":
			fmt.Fprintln(s.out, q.Hint())
			continue
		}

		key, ok := matchOption(q, line)
		if !ok {
			invalid++
			if invalid >= s.cfg.MaxInvalidAnswers {
				fmt.Fprintln(s.out, "Too many invalid responses, moving on.")
				return s.timeUp(ctx, sess)
			}
			fmt.Fprintf(s.out, "Invalid input. Attempts remaining: %d\n", s.cfg.MaxInvalidAnswers-invalid)
			continue
		}

		outcome, err := sess.Select(ctx, key)
		return outcome, false, err
	}
}

func (s *shell) timeUp(ctx context.Context, sess *session.Session) (session.Outcome, bool, error) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Time is up!")
	outcome, err := sess.TimeUp(ctx)
	return outcome, false, err
}

func (s *shell) printOutcome(q questions.Question, outcome session.Outcome) {
	switch {
	case outcome.Correct:
		fmt.Fprintln(s.out, "Correct!")
	case outcome.UserAnswer == nil:
		fmt.Fprintf(s.out, "The answer was %s\n", correctAnswerDisplay(q))
	default:
		fmt.Fprintf(s.out, "Wrong. The answer was %s\n", correctAnswerDisplay(q))
	}
	if outcome.Explanation != "" {
		fmt.Fprintln(s.out, outcome.Explanation)
	}
}

func (s *shell) runProfile(ctx context.Context) {
	stats := s.cfg.Profile.Refresh(ctx)

	fmt.Fprintln(s.out, "Profile:")
	fmt.Fprintf(s.out, "  questions answered: %d\n", stats.TotalQuestions)
	fmt.Fprintf(s.out, "  correct: %d  incorrect: %d\n", stats.CorrectAnswers, stats.IncorrectAnswers)
	fmt.Fprintf(s.out, "  accuracy: %d%%\n", stats.Accuracy)
	fmt.Fprintf(s.out, "  current streak: %d\n", stats.Streak)
	fmt.Fprintf(s.out, "  active days in a row: %d\n", stats.DayStreak)
	fmt.Fprintf(s.out, "  weekly goal: %d%% of %d\n", stats.WeeklyProgress, stats.WeeklyTarget)
	if stats.HasActivity {
		fmt.Fprintf(s.out, "  last activity: %s\n", stats.LastActivity.Local().Format(time.RFC1123))
	} else {
		fmt.Fprintln(s.out, "  last activity: never")
	}

	_, found, err := s.cfg.Profile.Avatar(ctx)
	switch {
	case err != nil:
		s.log.Warn("avatar unavailable", "error", err)
		fmt.Fprintln(s.out, "  avatar: unavailable")
	case found:
		fmt.Fprintln(s.out, "  avatar: set")
	default:
		fmt.Fprintln(s.out, "  avatar: not set")
	}
}

func (s *shell) runThemes(ctx context.Context) error {
	themes, err := s.cfg.Source.FetchThemes(ctx)
	if err != nil {
		return err
	}
	if len(themes) == 0 {
		fmt.Fprintln(s.out, "No themes available.")
		return nil
	}

	fmt.Fprintln(s.out, "Themes:")
	for _, theme := range themes {
		fmt.Fprintf(s.out, "%d. %s (%d%%)\n", theme.ID, theme.Title, theme.Progress)
	}
	return nil
}

func (s *shell) runAchievements(ctx context.Context) error {
	achievements, err := s.cfg.Source.FetchAchievements(ctx)
	if err != nil {
		return err
	}
	if len(achievements) == 0 {
		fmt.Fprintln(s.out, "No achievements yet.")
		return nil
	}

	fmt.Fprintln(s.out, "Achievements:")
	for _, achievement := range achievements {
		status := "locked"
		if achievement.Unlocked {
			status = "unlocked"
		}
		fmt.Fprintf(s.out, "- %s (%s)\n", achievement.Title, status)
	}
	return nil
}

func (s *shell) runAvatar(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := s.cfg.Profile.SetAvatar(ctx, file); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Avatar updated.")
	return nil
}
