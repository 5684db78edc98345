package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"flashquiz/internal/questions"
	"flashquiz/internal/session"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  feed")
	fmt.Fprintln(out, "  revise [theme_id,...] [--incorrect]")
	fmt.Fprintln(out, "  profile")
	fmt.Fprintln(out, "  themes")
	fmt.Fprintln(out, "  achievements")
	fmt.Fprintln(out, "  avatar <image_path>")
	fmt.Fprintln(out, "  exit")
}

func parseReviseArgs(args []string) (session.Options, error) {
	var opts session.Options
	for _, arg := range args {
		switch {
		case arg == "--incorrect" || arg == "-i":
			opts.IncorrectOnly = true
		case strings.HasPrefix(arg, "-"):
			return session.Options{}, fmt.Errorf("unknown flag %q", arg)
		default:
			for _, part := range strings.Split(arg, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.Atoi(part)
				if err != nil || id <= 0 {
					return session.Options{}, errors.New("theme ids must be positive integers")
				}
				opts.ThemeIDs = append(opts.ThemeIDs, id)
			}
		}
	}
	return opts, nil
}

func printQuestion(out io.Writer, heading string, question questions.Question) {
	fmt.Fprintln(out)
	if question.Theme != "" {
		fmt.Fprintf(out, "%s [%s]\n", heading, question.Theme)
	} else {
		fmt.Fprintln(out, heading)
	}
	fmt.Fprintf(out, "%s\n\n", question.Question)
	if question.Image != "" {
		fmt.Fprintf(out, "(image: %s)\n", question.Image)
	}
	for _, option := range question.Options() {
		fmt.Fprintf(out, "%s. %s\n", strings.ToUpper(option.Key), option.Text)
	}
	fmt.Fprintln(out)
}

// matchOption maps typed input onto an option key, ignoring case.
func matchOption(question questions.Question, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, option := range question.Options() {
		if strings.EqualFold(option.Key, input) {
			return option.Key, true
		}
	}
	return "", false
}

func correctAnswerDisplay(question questions.Question) string {
	text := question.CorrectText()
	if text == "" {
		return strings.ToUpper(question.CorrectAnswer)
	}
	return fmt.Sprintf("%s. %s", strings.ToUpper(question.CorrectAnswer), text)
}

func (s *shell) promptYesNo(ctx context.Context, prompt string) (bool, error) {
	for {
		fmt.Fprint(s.out, prompt)
		line, err := s.input.next(ctx, 0)
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(s.out, "Please answer yes or no.")
		}
	}
}

func describeClientError(err error, serverURL string) error {
	var apiErr *questions.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("question service at %s answered %d: %s", serverURL, apiErr.StatusCode, apiErr.Error())
	}
	if errors.Is(err, questions.ErrNetwork) {
		return fmt.Errorf("question service unavailable at %s, try again later", serverURL)
	}
	return err
}

func stars(count int) string {
	return strings.Repeat("*", count) + strings.Repeat(".", 3-count)
}
