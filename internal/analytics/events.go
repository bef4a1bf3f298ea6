package analytics

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/crawler"
)

type EventType string

const (
	EventPageSaved   EventType = "page_saved"
	EventFetchFailed EventType = "fetch_failed"
	EventQuery       EventType = "query"
	EventBadQuery    EventType = "bad_query"
	EventZeroResult  EventType = "zero_result"
)

type PageEvent struct {
	Type       EventType `json:"type"`
	RunID      string    `json:"run_id"`
	DocID      int       `json:"doc_id,omitempty"`
	URL        string    `json:"url"`
	Depth      int       `json:"depth"`
	SizeBytes  int       `json:"size_bytes"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

type QueryEvent struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Query     string    `json:"query"`
	Terms     []string  `json:"terms"`
	Matches   int       `json:"matches"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPageEvent converts a crawler fetch record into a publishable event.
func NewPageEvent(rec crawler.Record) PageEvent {
	typ := EventPageSaved
	if rec.Status == crawler.StatusFailed {
		typ = EventFetchFailed
	}
	return PageEvent{
		Type:       typ,
		RunID:      rec.RunID,
		DocID:      rec.DocID,
		URL:        rec.URL,
		Depth:      rec.Depth,
		SizeBytes:  rec.Bytes,
		Error:      rec.Error,
		DurationMs: rec.Duration.Milliseconds(),
		Timestamp:  rec.FetchedAt.UTC(),
	}
}
