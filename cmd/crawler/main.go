package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/crawler"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/crawler/ledger"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/postgres"
)

const usage = "usage: crawler [-config file] seedURL pageDirectory maxDepth"

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
		fmt.Fprintf(os.Stderr, "crawler: %v\n", err)
		stop()
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 3 {
		return apperrors.New(apperrors.ErrUsage, 1, usage)
	}
	seedArg, dir, depthArg := args[0], args[1], args[2]

	seed, err := crawler.NormalizeURL(seedArg)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidSeed, 2, "%v", err)
	}
	policy, err := crawler.NewURLPolicy(cfg.Crawler.InternalPrefix, seed)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidSeed, 2, "%v", err)
	}
	if !policy.IsInternal(seed) {
		return apperrors.Newf(apperrors.ErrExternalSeed, 3, "%s is outside %s", seed, policy.Prefix())
	}
	maxDepth, err := strconv.Atoi(depthArg)
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidDepth, 5, "maxDepth %q is not an integer", depthArg)
	}
	if err := crawler.ValidateDepth(maxDepth, cfg.Crawler.MaxDepthLimit); err != nil {
		return err
	}
	store, err := pagedir.Init(dir)
	if err != nil {
		return apperrors.Newf(apperrors.ErrPageDirectory, 4, "%v", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}

	var observers []crawler.Observer
	var collector *analytics.BatchCollector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CrawlEvents)
		defer producer.Close()
		collector = analytics.NewBatchCollector(producer, cfg.Kafka.BatchSize, cfg.Kafka.FlushInterval)
		observers = append(observers, collector)
	}
	var book *ledger.Store
	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("crawl ledger disabled", "error", err)
		} else {
			defer db.Close()
			book = ledger.NewStore(db)
			if err := book.Migrate(ctx); err != nil {
				slog.Warn("crawl ledger disabled", "error", err)
				book = nil
			} else {
				observers = append(observers, book)
			}
		}
	}

	runID := crawler.NewRunID()
	if book != nil {
		if err := book.StartRun(ctx, runID, seed, dir, maxDepth); err != nil {
			slog.Warn("crawl ledger disabled", "error", err)
			observers = observers[:len(observers)-1]
			book = nil
		}
	}

	c := crawler.New(store, crawler.NewHTTPFetcher(cfg.Crawler), crawler.Options{
		RunID:     runID,
		MaxDepth:  maxDepth,
		Delay:     cfg.Crawler.PolitenessDelay,
		Policy:    policy,
		Observers: observers,
		Metrics:   m,
	})

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	if collector != nil {
		collector.Start(collectorCtx)
	}

	stats, err := c.Run(ctx, seed)

	stopCollector()
	if collector != nil {
		collector.Close()
	}
	if book != nil {
		if _, _, ferr := book.FinishRun(context.Background(), c.RunID()); ferr != nil {
			slog.Warn("closing crawl ledger run failed", "error", ferr)
		}
	}
	if err != nil {
		return err
	}
	slog.Info("crawler finished",
		"run_id", c.RunID(),
		"page_dir", dir,
		"saved", stats.Saved,
		"failed", stats.Failed,
	)
	return nil
}
