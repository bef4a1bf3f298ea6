// Package metrics defines the Prometheus collectors used by the crawler,
// indexer and querier and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	PagesFetchedTotal  prometheus.Counter
	FetchFailuresTotal prometheus.Counter
	LinksTotal         *prometheus.CounterVec
	FrontierSize       prometheus.Gauge
	FetchDuration      prometheus.Histogram
	DocsIndexedTotal   prometheus.Counter
	IndexWords         prometheus.Gauge
	IndexSavesTotal    *prometheus.CounterVec
	QueriesTotal       *prometheus.CounterVec
	QueryLatency       *prometheus.HistogramVec
	QueryResultsCount  prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
}

// New creates all collectors and registers them with reg. A nil reg uses
// the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		PagesFetchedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_pages_fetched_total",
				Help: "Total pages fetched and saved by the crawler.",
			},
		),
		FetchFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_fetch_failures_total",
				Help: "Total fetch attempts that failed and were dropped.",
			},
		),
		LinksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_links_total",
				Help: "Links discovered by outcome (queued, duplicate, external, invalid).",
			},
			[]string{"outcome"},
		),
		FrontierSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_frontier_size",
				Help: "Number of pending items in the crawl frontier.",
			},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Fetch latency in seconds, excluding the politeness delay.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_docs_indexed_total",
				Help: "Total documents folded into the inverted index.",
			},
		),
		IndexWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_words",
				Help: "Number of distinct words in the current index.",
			},
		),
		IndexSavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_saves_total",
				Help: "Total index save operations by status.",
			},
			[]string{"status"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "querier_queries_total",
				Help: "Total queries by result type (match, zero_result, syntax_error).",
			},
			[]string{"result_type"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "querier_latency_seconds",
				Help:    "Query evaluation latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"cache_status"},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "querier_results_count",
				Help:    "Number of matching documents per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "querier_cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "querier_cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
	}

	reg.MustRegister(
		m.PagesFetchedTotal,
		m.FetchFailuresTotal,
		m.LinksTotal,
		m.FrontierSize,
		m.FetchDuration,
		m.DocsIndexedTotal,
		m.IndexWords,
		m.IndexSavesTotal,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
