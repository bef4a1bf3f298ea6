package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier/cache"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/redis"
)

const usage = "usage: querier [-config file] [-flush-cache] pageDirectory indexFilename"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flushCache := flag.Bool("flush-cache", false, "drop cached query results before reading queries")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format, nil)

	// An interrupt ends the process directly; the read loop blocks on stdin.
	if err := run(context.Background(), cfg, flag.Args(), *flushCache); err != nil {
		fmt.Fprintf(os.Stderr, "querier: %v\n", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, flushCache bool) error {
	if len(args) != 2 {
		return apperrors.New(apperrors.ErrUsage, 1, usage)
	}
	dir, indexPath := args[0], args[1]

	store, err := pagedir.Validate(dir)
	if err != nil {
		return apperrors.Newf(apperrors.ErrPageDirectory, 2, "%v", err)
	}
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return apperrors.Newf(apperrors.ErrIndexFile, 3, "%v", err)
	}
	x := index.New(0)
	stats, err := x.Load(bytes.NewReader(data))
	if err != nil {
		return apperrors.Newf(apperrors.ErrIndexLoad, 4, "%s: %v", indexPath, err)
	}
	slog.Info("index loaded", "path", indexPath, "words", x.Len(), "postings", stats.Postings, "malformed", stats.Malformed)

	opts := querier.Options{
		Prompt:     cfg.Querier.Prompt,
		MaxTokens:  cfg.Querier.MaxTokens,
		Aggregator: analytics.NewAggregator(),
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = metrics.New(nil)
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("query cache disabled", "error", err)
		} else {
			defer rdb.Close()
			opts.Cache = cache.New(rdb, redis.IsNilError, cfg.Redis.CacheTTL, cache.Fingerprint(data))
			if flushCache {
				if err := opts.Cache.Invalidate(ctx); err != nil {
					slog.Warn("query cache flush failed", "error", err)
				}
			}
		}
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		defer producer.Close()
		collector := analytics.NewBatchCollector(producer, cfg.Kafka.BatchSize, cfg.Kafka.FlushInterval)
		collectorCtx, stopCollector := context.WithCancel(context.Background())
		collector.Start(collectorCtx)
		defer collector.Close()
		defer stopCollector()
		opts.Tracker = collector
	}

	q := querier.New(x, store, opts)
	return q.Run(ctx, os.Stdin, os.Stdout, os.Stderr)
}
