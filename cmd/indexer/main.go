package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/metrics"
)

const usage = "usage: indexer [-config file] pageDirectory indexFilename"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "indexer: %v\n", err)
		stop()
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return apperrors.New(apperrors.ErrUsage, 1, usage)
	}
	dir, indexPath := args[0], args[1]

	store, err := pagedir.Validate(dir)
	if err != nil {
		return apperrors.Newf(apperrors.ErrPageDirectory, 2, "%v", err)
	}
	out, err := index.Create(indexPath)
	if err != nil {
		return apperrors.Newf(apperrors.ErrIndexFile, 3, "%s: %v", indexPath, err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}

	engine := indexer.NewEngine(cfg.Indexer, m)
	x, stats, err := engine.Build(ctx, store)
	if err != nil {
		out.Abort()
		return err
	}
	if err := out.Commit(x); err != nil {
		if m != nil {
			m.IndexSavesTotal.WithLabelValues("error").Inc()
		}
		return apperrors.Newf(apperrors.ErrIndexSave, 4, "%s: %v", indexPath, err)
	}
	if m != nil {
		m.IndexSavesTotal.WithLabelValues("ok").Inc()
	}
	slog.Info("index saved",
		"path", indexPath,
		"documents", stats.Documents,
		"skipped", stats.Skipped,
		"words", stats.Words,
	)
	return nil
}
