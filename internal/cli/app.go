package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"flashquiz/internal/logger"
	"flashquiz/internal/profile"
	"flashquiz/internal/questions"
	"flashquiz/internal/session"
)

const (
	defaultMaxInvalidAnswers = 3
	defaultAnswerTimeout     = 30 * time.Second
)

type Config struct {
	Source    questions.Source
	Ledger    session.EventLog
	Profile   *profile.Profile
	Log       *logger.Logger
	ServerURL string

	MaxInvalidAnswers int
	// AnswerTimeout bounds each revision question; negative disables it.
	AnswerTimeout time.Duration
}

type shell struct {
	cfg    Config
	input  *lineReader
	out    io.Writer
	log    *logger.Logger
	feed   *session.Feed
	cursor int
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	if cfg.Source == nil || cfg.Ledger == nil || cfg.Profile == nil {
		return errors.New("question source, ledger and profile are required")
	}
	if cfg.MaxInvalidAnswers <= 0 {
		cfg.MaxInvalidAnswers = defaultMaxInvalidAnswers
	}
	if cfg.AnswerTimeout == 0 {
		cfg.AnswerTimeout = defaultAnswerTimeout
	}

	s := &shell{
		cfg:   cfg,
		input: newLineReader(in),
		out:   out,
		log:   logger.OrNop(cfg.Log),
	}
	defer s.input.close()
	s.feed = session.NewFeed(cfg.Source, cfg.Ledger, s.log)

	fmt.Fprintf(out, "flashquiz\nserver=%s\n\n", cfg.ServerURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := s.input.next(ctx, 0)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		switch command {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return nil
		case "feed":
			err = s.runFeed(ctx)
		case "revise":
			opts, parseErr := parseReviseArgs(args[1:])
			if parseErr != nil {
				fmt.Fprintf(out, "invalid revise arguments: %v\n", parseErr)
				fmt.Fprintln(out, "usage: revise [theme_id,...] [--incorrect]")
				continue
			}
			err = s.runRevision(ctx, opts)
		case "profile":
			s.runProfile(ctx)
		case "themes":
			err = s.runThemes(ctx)
		case "achievements":
			err = s.runAchievements(ctx)
		case "avatar":
			if len(args) != 2 {
				fmt.Fprintln(out, "usage: avatar <image_path>")
				continue
			}
			err = s.runAvatar(ctx, args[1])
		default:
			fmt.Fprintln(out, "unknown command. type 'help' for usage.")
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %v\n", describeClientError(err, cfg.ServerURL))
		}
	}
}
