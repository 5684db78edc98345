package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"flashquiz/internal/blobstore"
	"flashquiz/internal/cli"
	"flashquiz/internal/config"
	"flashquiz/internal/ledger"
	"flashquiz/internal/logger"
	"flashquiz/internal/profile"
	"flashquiz/internal/questions"
)

func main() {
	cfg := config.LoadClient()

	flag.StringVar(&cfg.APIURL, "server", cfg.APIURL, "question service base URL")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for local statistics")
	flag.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver,
		fmt.Sprintf("statistics store: %s, %s or %s", config.StoreFile, config.StoreSQLite, config.StoreRedis))
	flag.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	flag.BoolVar(&cfg.FallbackLocal, "fallback", cfg.FallbackLocal, "serve bundled questions when the service is unreachable")
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
		log.Error("flashquiz failed", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Client, log *logger.Logger) error {
	store, release, err := blobstore.Open(ctx, blobstore.Options{
		Driver:     cfg.StoreDriver,
		Dir:        cfg.DataDir,
		SQLitePath: cfg.SQLitePath,
		RedisAddr:  cfg.RedisAddr,
		RedisDB:    cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("closing store failed", "error", err)
		}
	}()
	log.Info("statistics store ready", "driver", cfg.StoreDriver, "store", store)

	stats := ledger.New(store, ledger.DefaultKey, log)

	var source questions.Source = questions.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout})
	if cfg.FallbackLocal {
		source = questions.NewFallbackSource(source, log)
	}

	return cli.Run(ctx, os.Stdin, os.Stdout, cli.Config{
		Source:    source,
		Ledger:    stats,
		Profile:   profile.New(stats, store, cfg.WeeklyTarget, log),
		Log:       log,
		ServerURL: cfg.APIURL,
	})
}
