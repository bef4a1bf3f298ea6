package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/metrics"
)

// PageSource is the read side of a page directory.
type PageSource interface {
	Load(docID int) (pagedir.Page, error)
}

// Stats describes one index build.
type Stats struct {
	Documents int
	Skipped   int
	Words     int
}

// Engine builds an inverted index from the pages of a page directory.
type Engine struct {
	cfg     config.IndexerConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine. m may be nil.
func NewEngine(cfg config.IndexerConfig, m *metrics.Metrics) *Engine {
	if cfg.MinWordLength < 1 {
		cfg.MinWordLength = 3
	}
	if cfg.LoadWorkers < 1 {
		cfg.LoadWorkers = 1
	}
	return &Engine{
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
}

// Build reads documents 1, 2, 3, ... from src until one does not exist and
// folds every word of at least MinWordLength characters into a new index.
// Pages are read ahead in batches of LoadWorkers but always folded in
// document-ID order. Malformed or unreadable pages are skipped.
func (e *Engine) Build(ctx context.Context, src PageSource) (*index.Index, Stats, error) {
	x := index.New(500)
	var stats Stats
	batch := e.cfg.LoadWorkers
	for next := 1; ; next += batch {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("index build cancelled: %w", err)
		}
		results, err := e.loadBatch(ctx, src, next, batch)
		if err != nil {
			return nil, stats, fmt.Errorf("index build cancelled: %w", err)
		}
		for i, res := range results {
			docID := next + i
			if errors.Is(res.err, apperrors.ErrPageNotFound) {
				stats.Words = x.Len()
				e.logger.Info("index build complete",
					"documents", stats.Documents,
					"skipped", stats.Skipped,
					"words", stats.Words,
				)
				if e.metrics != nil {
					e.metrics.IndexWords.Set(float64(stats.Words))
				}
				return x, stats, nil
			}
			if res.err != nil {
				e.logger.Warn("skipping unreadable page", "doc_id", docID, "error", res.err)
				stats.Skipped++
				continue
			}
			terms := e.IndexPage(x, res.page, docID)
			stats.Documents++
			if e.metrics != nil {
				e.metrics.DocsIndexedTotal.Inc()
			}
			e.logger.Debug("page indexed", "doc_id", docID, "url", res.page.URL, "terms", terms)
		}
	}
}

// IndexPage folds the words of page into x under docID and returns how many
// occurrences were recorded.
func (e *Engine) IndexPage(x *index.Index, page pagedir.Page, docID int) int {
	n := 0
	for term := range tokenizer.IndexTerms(page.HTML, e.cfg.MinWordLength) {
		if x.Insert(term, docID) {
			n++
		}
	}
	return n
}

type loadResult struct {
	page pagedir.Page
	err  error
}

// loadBatch loads documents first..first+n-1 concurrently. Per-page errors
// are reported in the results; only cancellation fails the batch.
func (e *Engine) loadBatch(ctx context.Context, src PageSource, first, n int) ([]loadResult, error) {
	results := make([]loadResult, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.LoadWorkers)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := src.Load(first + i)
			results[i] = loadResult{page: page, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
