package analytics

import (
	"slices"
	"strings"
	"sync"
)

// Summary is a snapshot of the queries seen in one querier session.
type Summary struct {
	Queries           int64        `json:"queries"`
	SyntaxErrors      int64        `json:"syntax_errors"`
	ZeroResults       int64        `json:"zero_results"`
	CacheHits         int64        `json:"cache_hits"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds query events into a running Summary.
type Aggregator struct {
	mu          sync.Mutex
	summary     Summary
	latencies   []int64
	queryCounts map[string]int64
	zeroCounts  map[string]int64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:   make([]int64, 0, 64),
		queryCounts: make(map[string]int64),
		zeroCounts:  make(map[string]int64),
	}
}

// Record adds one query event.
func (a *Aggregator) Record(ev QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if ev.Type == EventBadQuery {
		a.summary.SyntaxErrors++
		return
	}
	a.summary.Queries++
	if ev.CacheHit {
		a.summary.CacheHits++
	}
	key := strings.Join(ev.Terms, " ")
	a.queryCounts[key]++
	if ev.Matches == 0 {
		a.summary.ZeroResults++
		a.zeroCounts[key]++
	}
	a.latencies = append(a.latencies, ev.LatencyMs)
}

// Summary returns the current snapshot with the top n queries.
func (a *Aggregator) Summary(n int) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.summary
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		s.AvgLatencyMs = float64(sum) / float64(len(sorted))
		s.P50LatencyMs = percentile(sorted, 50)
		s.P95LatencyMs = percentile(sorted, 95)
	}
	s.TopQueries = topN(a.queryCounts, n)
	s.ZeroResultQueries = topN(a.zeroCounts, n)
	return s
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then query ascending.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	slices.SortFunc(result, func(a, b QueryCount) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Query, b.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
