package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"flashquiz/internal/config"
	"flashquiz/internal/httpapi"
	"flashquiz/internal/logger"
	"flashquiz/internal/opentdb"
	"flashquiz/internal/questionbank"
)

func main() {
	cfg := config.LoadService()

	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "question database path")
	flag.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "JSON seed file imported at startup")
	flag.IntVar(&cfg.OpenTDBAmount, "opentdb", cfg.OpenTDBAmount, "questions to import from Open Trivia DB at startup")
	flag.Parse()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("question-service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Service, log *logger.Logger) error {
	bank, err := questionbank.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open question bank: %w", err)
	}
	defer bank.Close()

	if err := seed(ctx, bank, cfg.SeedFile, log); err != nil {
		return err
	}
	if cfg.OpenTDBAmount > 0 {
		importTrivia(ctx, bank, cfg.OpenTDBAmount, log)
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpapi.NewRouter(bank, questionbank.DefaultPageSize, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("question-service listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func seed(ctx context.Context, bank *questionbank.Store, seedFile string, log *logger.Logger) error {
	if seedFile != "" {
		data, err := questionbank.LoadSeedFile(seedFile)
		if err != nil {
			return err
		}
		if err := bank.Import(ctx, data); err != nil {
			return fmt.Errorf("import %s: %w", seedFile, err)
		}
		log.Info("seed imported", "file", seedFile, "questions", len(data.Questions))
		return nil
	}

	count, err := bank.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := bank.Import(ctx, questionbank.DefaultSeed()); err != nil {
		return fmt.Errorf("import bundled questions: %w", err)
	}
	log.Info("bundled questions imported")
	return nil
}

// importTrivia is best effort; the service still starts on the bundled set.
func importTrivia(ctx context.Context, bank *questionbank.Store, amount int, log *logger.Logger) {
	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	raw, err := opentdb.NewClient(&http.Client{Timeout: 10 * time.Second}).FetchQuestions(fetchCtx, amount)
	if err != nil {
		log.Warn("open trivia import failed", "error", err)
		return
	}
	trivia := opentdb.ToSeed(raw, nil)
	if err := bank.Import(ctx, trivia); err != nil {
		log.Warn("open trivia import rejected", "error", err)
		return
	}
	log.Info("open trivia imported", "questions", len(trivia.Questions), "themes", len(trivia.Themes))
}
