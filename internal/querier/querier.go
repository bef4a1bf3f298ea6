// Package querier answers boolean word queries against a loaded index and
// prints ranked matches with their URLs.
package querier

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier/cache"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier/executor"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier/parser"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier/ranker"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/tracing"
)

// URLSource resolves a document ID to its URL. *pagedir.Store satisfies it.
type URLSource interface {
	URLOf(docID int) (string, error)
}

// QueryTracker receives one event per query. *analytics.BatchCollector
// satisfies it.
type QueryTracker interface {
	TrackQuery(ctx context.Context, ev analytics.QueryEvent)
}

type Options struct {
	Prompt     string
	MaxTokens  int
	Cache      *cache.QueryCache
	Metrics    *metrics.Metrics
	Tracker    QueryTracker
	Aggregator *analytics.Aggregator
}

// Result is the outcome of one valid query.
type Result struct {
	Tokens   []string
	Docs     []ranker.ScoredDoc
	CacheHit bool
}

type Querier struct {
	index     executor.Postings
	urls      URLSource
	opts      Options
	sessionID string
	seq       int
	logger    *slog.Logger
}

func New(idx executor.Postings, urls URLSource, opts Options) *Querier {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = parser.DefaultMaxTokens
	}
	sessionID := fmt.Sprintf("q-%x", time.Now().UnixNano())
	return &Querier{
		index:     idx,
		urls:      urls,
		opts:      opts,
		sessionID: sessionID,
		logger:    slog.Default().With("component", "querier", "session_id", sessionID),
	}
}

// Query parses, validates, evaluates and ranks one query line. Invalid
// syntax yields a *parser.SyntaxError.
func (q *Querier) Query(ctx context.Context, line string) (Result, error) {
	start := time.Now()
	q.seq++
	ctx, span := tracing.StartSpan(ctx, "query", fmt.Sprintf("%s-%d", q.sessionID, q.seq))
	defer func() {
		span.End()
		span.Log(ctx, q.logger)
	}()

	_, parseSpan := tracing.StartChildSpan(ctx, "parse")
	tokens := parser.Parse(line, q.opts.MaxTokens)
	err := parser.Validate(tokens)
	parseSpan.SetAttr("tokens", len(tokens))
	parseSpan.End()
	if err != nil {
		q.record(ctx, analytics.QueryEvent{Type: analytics.EventBadQuery, Query: line}, start)
		if q.opts.Metrics != nil {
			q.opts.Metrics.QueriesTotal.WithLabelValues("syntax_error").Inc()
		}
		return Result{Tokens: tokens}, err
	}

	groups := parser.Groups(tokens)
	compute := func() []ranker.ScoredDoc {
		_, evalSpan := tracing.StartChildSpan(ctx, "evaluate")
		scores := executor.Evaluate(q.index, groups)
		evalSpan.SetAttr("matches", scores.Size())
		evalSpan.End()

		_, rankSpan := tracing.StartChildSpan(ctx, "rank")
		defer rankSpan.End()
		return ranker.Rank(scores)
	}

	res := Result{Tokens: tokens}
	if q.opts.Cache != nil {
		res.Docs, res.CacheHit = q.opts.Cache.GetOrCompute(ctx, groups, compute)
	} else {
		res.Docs = compute()
	}
	span.SetAttr("cache_hit", res.CacheHit)
	span.SetAttr("matches", len(res.Docs))

	typ := analytics.EventQuery
	if len(res.Docs) == 0 {
		typ = analytics.EventZeroResult
	}
	q.record(ctx, analytics.QueryEvent{
		Type:     typ,
		Query:    line,
		Terms:    tokens,
		Matches:  len(res.Docs),
		CacheHit: res.CacheHit,
	}, start)
	q.observe(res, time.Since(start))
	return res, nil
}

// Run prompts on out, reads one query per line from in and prints each
// result to out. Syntax errors go to diag and the loop continues. Run
// returns nil at end of input.
func (q *Querier) Run(ctx context.Context, in io.Reader, out, diag io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, q.opts.Prompt)
		if !scanner.Scan() {
			break
		}
		res, err := q.Query(ctx, scanner.Text())
		var syntaxErr *parser.SyntaxError
		switch {
		case errors.As(err, &syntaxErr):
			fmt.Fprintf(diag, "Error: %s\n", syntaxErr.Reason)
			fmt.Fprintln(diag, "Error: Invalid query syntax.")
			continue
		case err != nil:
			return err
		}
		if err := WriteResult(out, res.Docs, q.urls); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}
	fmt.Fprintln(out)
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries: %w", err)
	}
	q.logSummary()
	return nil
}

// WriteResult prints a ranked result set. Documents whose URL cannot be
// resolved are left out.
func WriteResult(out io.Writer, docs []ranker.ScoredDoc, urls URLSource) error {
	w := bufio.NewWriter(out)
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents match.")
		return w.Flush()
	}
	fmt.Fprintf(w, "Matches %d documents (ranked):\n", len(docs))
	for _, d := range docs {
		url, err := urls.URLOf(d.DocID)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "score %d doc %d: %s\n", d.Score, d.DocID, url)
	}
	return w.Flush()
}

func (q *Querier) record(ctx context.Context, ev analytics.QueryEvent, start time.Time) {
	ev.SessionID = q.sessionID
	ev.LatencyMs = time.Since(start).Milliseconds()
	ev.Timestamp = start.UTC()
	if q.opts.Tracker != nil {
		q.opts.Tracker.TrackQuery(ctx, ev)
	}
	if q.opts.Aggregator != nil {
		q.opts.Aggregator.Record(ev)
	}
}

func (q *Querier) observe(res Result, elapsed time.Duration) {
	m := q.opts.Metrics
	if m == nil {
		return
	}
	resultType := "match"
	if len(res.Docs) == 0 {
		resultType = "zero_result"
	}
	cacheStatus := "none"
	if q.opts.Cache != nil {
		cacheStatus = "miss"
		if res.CacheHit {
			cacheStatus = "hit"
		}
	}
	switch cacheStatus {
	case "hit":
		m.CacheHitsTotal.Inc()
	case "miss":
		m.CacheMissesTotal.Inc()
	}
	m.QueriesTotal.WithLabelValues(resultType).Inc()
	m.QueryLatency.WithLabelValues(cacheStatus).Observe(elapsed.Seconds())
	m.QueryResultsCount.Observe(float64(len(res.Docs)))
}

func (q *Querier) logSummary() {
	if q.opts.Aggregator == nil {
		return
	}
	s := q.opts.Aggregator.Summary(5)
	q.logger.Info("query session finished",
		"queries", s.Queries,
		"syntax_errors", s.SyntaxErrors,
		"zero_results", s.ZeroResults,
		"cache_hits", s.CacheHits,
		"p50_latency_ms", s.P50LatencyMs,
		"p95_latency_ms", s.P95LatencyMs,
		"top_queries", s.TopQueries,
	)
}
