// Package cache keeps ranked query results in Redis. Keys combine a
// fingerprint of the loaded index with a canonical form of the query, so a
// rebuilt index never serves stale results.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	farmhash "github.com/leemcloughlin/gofarmhash"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tiny-search-engine/internal/querier/ranker"
)

const keyPrefix = "tse:query:"

// Store is the key-value backend. *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// IsMiss reports whether a Store error means "no such key".
type IsMiss func(error) bool

type QueryCache struct {
	store       Store
	isMiss      IsMiss
	ttl         time.Duration
	fingerprint uint64
	group       singleflight.Group
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

// New creates a cache for the index identified by fingerprint.
func New(store Store, isMiss IsMiss, ttl time.Duration, fingerprint uint64) *QueryCache {
	return &QueryCache{
		store:       store,
		isMiss:      isMiss,
		ttl:         ttl,
		fingerprint: fingerprint,
		logger:      slog.Default().With("component", "query-cache"),
	}
}

// Fingerprint hashes the raw bytes of an index file.
func Fingerprint(data []byte) uint64 {
	return farmhash.Hash64(data)
}

// Get returns the cached ranking for groups, if any.
func (c *QueryCache) Get(ctx context.Context, groups [][]string) ([]ranker.ScoredDoc, bool) {
	key := c.Key(groups)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !c.isMiss(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var docs []ranker.ScoredDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return docs, true
}

func (c *QueryCache) Set(ctx context.Context, groups [][]string, docs []ranker.ScoredDoc) {
	key := c.Key(groups)
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached ranking or computes, stores and returns
// it. Concurrent callers for the same key share one computation. The
// boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	groups [][]string,
	compute func() []ranker.ScoredDoc,
) ([]ranker.ScoredDoc, bool) {
	if docs, ok := c.Get(ctx, groups); ok {
		return docs, true
	}
	val, _, _ := c.group.Do(c.Key(groups), func() (any, error) {
		docs := compute()
		c.Set(ctx, groups, docs)
		return docs, nil
	})
	return val.([]ranker.ScoredDoc), false
}

// Invalidate removes every cached query for every index.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating query cache: %w", err)
	}
	c.logger.Info("query cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key builds the cache key for groups. Terms within a group and the groups
// themselves are sorted, since min and sum do not depend on order.
func (c *QueryCache) Key(groups [][]string) string {
	return fmt.Sprintf("%s%016x:%016x", keyPrefix, c.fingerprint, farmhash.Hash64([]byte(Canonical(groups))))
}

// Canonical renders groups in an order-independent form such as
// "cats dogs|mice".
func Canonical(groups [][]string) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		terms := slices.Clone(g)
		slices.Sort(terms)
		parts = append(parts, strings.Join(terms, " "))
	}
	slices.Sort(parts)
	return strings.Join(parts, "|")
}
