// Package ledger records crawl runs and every fetch attempt in PostgreSQL so
// a crawl can be audited after the page directory has been indexed.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/crawler"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/pkg/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS crawl_runs (
    run_id      TEXT PRIMARY KEY,
    seed_url    TEXT NOT NULL,
    page_dir    TEXT NOT NULL,
    max_depth   INT NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ,
    saved       INT NOT NULL DEFAULT 0,
    failed      INT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS crawl_pages (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT NOT NULL REFERENCES crawl_runs(run_id),
    doc_id      INT,
    url         TEXT NOT NULL,
    depth       INT NOT NULL,
    status      TEXT NOT NULL,
    bytes       INT NOT NULL DEFAULT 0,
    error       TEXT NOT NULL DEFAULT '',
    fetched_at  TIMESTAMPTZ NOT NULL,
    duration_ms BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS crawl_pages_run_idx ON crawl_pages (run_id, doc_id);
`

// Store writes crawl history to the crawl_runs and crawl_pages tables.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: logger.WithComponent("crawl-ledger"),
	}
}

// Migrate creates the ledger tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating ledger schema: %w", err)
	}
	return nil
}

// StartRun registers a new crawl.
func (s *Store) StartRun(ctx context.Context, runID, seed, pageDir string, maxDepth int) error {
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO crawl_runs (run_id, seed_url, page_dir, max_depth, started_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, seed, pageDir, maxDepth, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("starting crawl run %s: %w", runID, err)
	}
	return nil
}

// RecordFetch stores one fetch attempt.
func (s *Store) RecordFetch(ctx context.Context, rec crawler.Record) error {
	var docID sql.NullInt64
	if rec.DocID > 0 {
		docID = sql.NullInt64{Int64: int64(rec.DocID), Valid: true}
	}
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO crawl_pages (run_id, doc_id, url, depth, status, bytes, error, fetched_at, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.RunID, docID, rec.URL, rec.Depth, string(rec.Status),
		rec.Bytes, rec.Error, rec.FetchedAt.UTC(), rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording fetch of %s: %w", rec.URL, err)
	}
	return nil
}

// Observe implements crawler.Observer. Ledger failures are logged and never
// stop the crawl.
func (s *Store) Observe(ctx context.Context, rec crawler.Record) {
	if err := s.RecordFetch(ctx, rec); err != nil {
		logger.FromContext(ctx).Warn("ledger write failed", "component", "crawl-ledger", "url", rec.URL, "error", err)
	}
}

// FinishRun stamps the run as finished and stores the saved and failed
// counts derived from its recorded pages.
func (s *Store) FinishRun(ctx context.Context, runID string) (saved, failed int, err error) {
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT
			     COUNT(*) FILTER (WHERE status = 'saved'),
			     COUNT(*) FILTER (WHERE status = 'failed')
			 FROM crawl_pages WHERE run_id = $1`,
			runID,
		)
		if err := row.Scan(&saved, &failed); err != nil {
			return fmt.Errorf("counting pages for run %s: %w", runID, err)
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE crawl_runs SET finished_at = $2, saved = $3, failed = $4 WHERE run_id = $1`,
			runID, time.Now().UTC(), saved, failed,
		)
		if err != nil {
			return fmt.Errorf("finishing run %s: %w", runID, err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("crawl run recorded", "run_id", runID, "saved", saved, "failed", failed)
	return saved, failed, nil
}
