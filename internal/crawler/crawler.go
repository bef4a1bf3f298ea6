// Package crawler walks a site from a seed URL, saving every fetched page
// to a page directory under a sequential document ID.
package crawler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/pagedir"
	apperrors "github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/metrics"
)

// PageSink persists fetched pages.
type PageSink interface {
	Save(page pagedir.Page, docID int) error
}

// Status is the outcome of a single fetch attempt.
type Status string

const (
	StatusSaved  Status = "saved"
	StatusFailed Status = "failed"
)

// Record describes one fetch attempt. DocID is zero for failed fetches.
type Record struct {
	RunID     string
	DocID     int
	URL       string
	Depth     int
	Status    Status
	Bytes     int
	Error     string
	FetchedAt time.Time
	Duration  time.Duration
}

// Observer receives a Record after every fetch attempt. Observers must not
// block the crawl for long.
type Observer interface {
	Observe(ctx context.Context, rec Record)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, rec Record)

func (f ObserverFunc) Observe(ctx context.Context, rec Record) { f(ctx, rec) }

// Options configures a Crawler.
type Options struct {
	// RunID labels the crawl; NewRunID is used when empty.
	RunID     string
	MaxDepth  int
	// Delay is the idle time between the end of one fetch attempt and the
	// start of the next.
	Delay     time.Duration
	Policy    URLPolicy
	Observers []Observer
	Metrics   *metrics.Metrics
}

// Stats summarises a finished crawl.
type Stats struct {
	Saved      int
	Failed     int
	Queued     int
	Duplicates int
	External   int
	Invalid    int
}

type item struct {
	url   string
	depth int
}

// Crawler performs a single depth-bounded traversal. It is not safe for
// concurrent use and must not be reused after Run returns.
type Crawler struct {
	sink      PageSink
	fetcher   Fetcher
	opts      Options
	limiter   *rate.Limiter
	frontier  []item
	seen      map[string]struct{}
	nextDocID int
	runID     string
	stats     Stats
	logger    *slog.Logger
}

// New creates a Crawler that saves pages to sink using fetcher.
func New(sink PageSink, fetcher Fetcher, opts Options) *Crawler {
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	runID := opts.RunID
	if runID == "" {
		runID = NewRunID()
	}
	return &Crawler{
		sink:      sink,
		fetcher:   fetcher,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		seen:      make(map[string]struct{}, 200),
		nextDocID: 1,
		runID:     runID,
		logger:    logger.WithComponent("crawler").With("run_id", runID),
	}
}

// RunID identifies this crawl in logs and observer records.
func (c *Crawler) RunID() string {
	return c.runID
}

// Run crawls from seed. Every URL is fetched at most once; pages at
// MaxDepth are saved but not scanned for links. Fetch failures are logged
// and dropped. A failure to save a page ends the crawl.
func (c *Crawler) Run(ctx context.Context, seed string) (Stats, error) {
	norm, err := NormalizeURL(seed)
	if err != nil {
		return c.stats, apperrors.Newf(apperrors.ErrInvalidSeed, 2, "%v", err)
	}
	if !c.opts.Policy.IsInternal(norm) {
		return c.stats, apperrors.Newf(apperrors.ErrExternalSeed, 3, "%s is outside %s", norm, c.opts.Policy.Prefix())
	}

	ctx = logger.WithRunID(ctx, c.runID)
	c.logger.Info("crawl starting", "seed", norm, "max_depth", c.opts.MaxDepth, "delay", c.opts.Delay)
	c.seen[norm] = struct{}{}
	c.push(item{url: norm, depth: 0})

	for len(c.frontier) > 0 {
		it := c.pop()
		body, ok, err := c.fetch(ctx, it)
		if err != nil {
			return c.stats, err
		}
		if !ok {
			continue
		}
		if err := c.save(ctx, it, body); err != nil {
			return c.stats, err
		}
		if it.depth < c.opts.MaxDepth {
			c.scan(it, body)
		}
	}

	c.logger.Info("crawl complete",
		"saved", c.stats.Saved,
		"failed", c.stats.Failed,
		"duplicates", c.stats.Duplicates,
		"external", c.stats.External,
	)
	return c.stats, nil
}

// fetch waits out the politeness delay and fetches it. A false ok with a nil
// error means the fetch failed and the item was dropped.
func (c *Crawler) fetch(ctx context.Context, it item) (string, bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", false, fmt.Errorf("waiting to fetch %s: %w", it.url, err)
	}
	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, it.url)
	end := time.Now()
	c.rest(end)
	elapsed := end.Sub(start)
	if c.opts.Metrics != nil {
		c.opts.Metrics.FetchDuration.Observe(elapsed.Seconds())
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, fmt.Errorf("fetching %s: %w", it.url, ctxErr)
		}
		c.stats.Failed++
		if c.opts.Metrics != nil {
			c.opts.Metrics.FetchFailuresTotal.Inc()
		}
		c.logger.Warn("fetch failed", "depth", it.depth, "url", it.url, "error", err)
		c.notify(ctx, Record{
			URL:       it.url,
			Depth:     it.depth,
			Status:    StatusFailed,
			Error:     err.Error(),
			FetchedAt: start,
			Duration:  elapsed,
		})
		return "", false, nil
	}
	c.logger.Info("Fetched", "depth", it.depth, "url", it.url)
	return body, true, nil
}

// rest drains the limiter at t, the end of a fetch attempt, so the next
// Wait blocks for the full delay however long the attempt took.
func (c *Crawler) rest(t time.Time) {
	if c.limiter.Limit() == rate.Inf {
		return
	}
	c.limiter.SetBurstAt(t, 0)
	c.limiter.SetBurstAt(t, 1)
}

func (c *Crawler) save(ctx context.Context, it item, body string) error {
	docID := c.nextDocID
	page := pagedir.Page{URL: it.url, Depth: it.depth, HTML: body}
	if err := c.sink.Save(page, docID); err != nil {
		return fmt.Errorf("saving document %d: %w", docID, err)
	}
	c.nextDocID++
	c.stats.Saved++
	if c.opts.Metrics != nil {
		c.opts.Metrics.PagesFetchedTotal.Inc()
	}
	c.notify(ctx, Record{
		DocID:     docID,
		URL:       it.url,
		Depth:     it.depth,
		Status:    StatusSaved,
		Bytes:     len(body),
		FetchedAt: time.Now(),
	})
	return nil
}

func (c *Crawler) scan(it item, body string) {
	c.logger.Debug("Scanning", "depth", it.depth, "url", it.url)
	for raw := range Links(it.url, body) {
		norm, err := NormalizeURL(raw)
		if err != nil {
			c.stats.Invalid++
			c.countLink("invalid")
			c.logger.Debug("IgnInvld", "depth", it.depth, "url", raw)
			continue
		}
		c.logger.Debug("Found", "depth", it.depth, "url", norm)
		if !c.opts.Policy.IsInternal(norm) {
			c.stats.External++
			c.countLink("external")
			c.logger.Debug("IgnExtrn", "depth", it.depth, "url", norm)
			continue
		}
		if _, dup := c.seen[norm]; dup {
			c.stats.Duplicates++
			c.countLink("duplicate")
			c.logger.Debug("IgnDupl", "depth", it.depth, "url", norm)
			continue
		}
		c.seen[norm] = struct{}{}
		c.push(item{url: norm, depth: it.depth + 1})
		c.stats.Queued++
		c.countLink("queued")
		c.logger.Debug("Added", "depth", it.depth, "url", norm)
	}
}

func (c *Crawler) push(it item) {
	c.frontier = append(c.frontier, it)
	c.updateFrontierGauge()
}

func (c *Crawler) pop() item {
	last := len(c.frontier) - 1
	it := c.frontier[last]
	c.frontier = c.frontier[:last]
	c.updateFrontierGauge()
	return it
}

func (c *Crawler) updateFrontierGauge() {
	if c.opts.Metrics != nil {
		c.opts.Metrics.FrontierSize.Set(float64(len(c.frontier)))
	}
}

func (c *Crawler) countLink(outcome string) {
	if c.opts.Metrics != nil {
		c.opts.Metrics.LinksTotal.WithLabelValues(outcome).Inc()
	}
}

func (c *Crawler) notify(ctx context.Context, rec Record) {
	rec.RunID = c.runID
	for _, o := range c.opts.Observers {
		o.Observe(ctx, rec)
	}
}

// NewRunID returns a random identifier for a crawl.
func NewRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// ValidateDepth checks a requested max depth against the configured limit.
func ValidateDepth(depth, limit int) error {
	if depth < 0 || depth > limit {
		return apperrors.Newf(apperrors.ErrInvalidDepth, 5, "maxDepth %d not in [0, %d]", depth, limit)
	}
	return nil
}

