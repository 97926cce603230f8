package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	pkgcache "StockLens/pkg/cache"
)

// Class buckets cache entries by operation so each artifact kind carries its
// own TTL: a volatile insight snapshot expires quickly, a 52-week summary
// survives much longer.
type Class string

const (
	ClassSeries     Class = "series"
	ClassSummary    Class = "summary"
	ClassCompare    Class = "compare"
	ClassInsights   Class = "insights"
	ClassPrediction Class = "prediction"
	ClassSymbols    Class = "symbols"
)

// Config holds per-class TTLs and the entry cap.
type Config struct {
	MaxEntries    int
	SeriesTTL     time.Duration
	SummaryTTL    time.Duration
	CompareTTL    time.Duration
	InsightsTTL   time.Duration
	PredictionTTL time.Duration
	SymbolsTTL    time.Duration
}

// DefaultConfig mirrors the TTLs the surrounding service has always used.
func DefaultConfig() Config {
	return Config{
		MaxEntries:    1000,
		SeriesTTL:     5 * time.Minute,
		SummaryTTL:    10 * time.Minute,
		CompareTTL:    5 * time.Minute,
		InsightsTTL:   2 * time.Minute,
		PredictionTTL: time.Hour,
		SymbolsTTL:    10 * time.Minute,
	}
}

type entry struct {
	value    any
	expireAt time.Time
	element  *list.Element // position in the recency list
}

// ResultCache fronts the expensive derived computations. Lookups of a live
// entry return immediately; misses run at most one computation per key, with
// concurrent requesters sharing the outcome. Errors are never stored, so a
// failed computation retries on the next request. An optional BytesCache acts
// as a shared L2 so multiple instances reuse each other's results.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	recency *list.List // front = most recently used
	group   singleflight.Group
	cfg     Config
	remote  pkgcache.BytesCache
	now     func() time.Time
}

func NewResultCache(cfg Config) *ResultCache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultConfig().MaxEntries
	}
	return &ResultCache{
		entries: make(map[string]*entry),
		recency: list.New(),
		cfg:     cfg,
		now:     time.Now,
	}
}

// SetRemote attaches a shared L2 bytes cache (typically Redis).
func (c *ResultCache) SetRemote(remote pkgcache.BytesCache) { c.remote = remote }

// Remote returns the attached L2 cache, or nil.
func (c *ResultCache) Remote() pkgcache.BytesCache { return c.remote }

// TTL returns the configured TTL for a class.
func (c *ResultCache) TTL(class Class) time.Duration {
	switch class {
	case ClassSeries:
		return c.cfg.SeriesTTL
	case ClassSummary:
		return c.cfg.SummaryTTL
	case ClassCompare:
		return c.cfg.CompareTTL
	case ClassInsights:
		return c.cfg.InsightsTTL
	case ClassPrediction:
		return c.cfg.PredictionTTL
	case ClassSymbols:
		return c.cfg.SymbolsTTL
	default:
		return time.Minute
	}
}

// Key fingerprints an operation class plus its parameters. Keys stay readable
// ("summary:RELIANCE") so invalidation can match on prefixes; only the remote
// layer hashes them.
func Key(class Class, params ...any) string {
	return pkgcache.KeyWithParams(string(class), params...)
}

// Invalidate drops every entry built for the given class and leading
// parameters. Matching respects parameter boundaries, so invalidating
// symbol ACME leaves entries for ACMEX alone. Remote entries are left to
// age out on their own TTL.
func (c *ResultCache) Invalidate(class Class, params ...any) int {
	prefix := Key(class, params...)
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if key == prefix || strings.HasPrefix(key, prefix+":") {
			c.removeLocked(key)
			removed++
		}
	}
	return removed
}

// Do returns the cached value for (class, key) or computes it. Exactly one
// computation runs per key; other callers wait for its result. A waiting
// caller whose context ends returns early while the computation finishes and
// is published for the remaining waiters.
func Do[T any](ctx context.Context, c *ResultCache, class Class, key string, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// The computation outlives the requesting caller on purpose: other
		// waiters on this key still need the result.
		bg := context.WithoutCancel(ctx)

		if c.remote != nil {
			if cached, ok := remoteGet[T](bg, c, key); ok {
				c.set(class, key, cached)
				return cached, nil
			}
		}

		v, err := compute(bg)
		if err != nil {
			return nil, err
		}
		c.set(class, key, v)
		if c.remote != nil {
			remoteSet(bg, c, class, key, v)
		}
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (c *ResultCache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expireAt) {
		c.removeLocked(key)
		return nil, false
	}
	c.recency.MoveToFront(e.element)
	return e.value, true
}

func (c *ResultCache) set(class Class, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expireAt = c.now().Add(c.TTL(class))
		c.recency.MoveToFront(e.element)
		return
	}
	if len(c.entries) >= c.cfg.MaxEntries {
		c.evictLocked()
	}
	e := &entry{value: value, expireAt: c.now().Add(c.TTL(class))}
	e.element = c.recency.PushFront(key)
	c.entries[key] = e
}

// evictLocked removes expired entries first, then the least recently used.
func (c *ResultCache) evictLocked() {
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expireAt) {
			c.removeLocked(key)
		}
	}
	for len(c.entries) >= c.cfg.MaxEntries {
		back := c.recency.Back()
		if back == nil {
			return
		}
		c.removeLocked(back.Value.(string))
	}
}

func (c *ResultCache) removeLocked(key string) {
	if e, ok := c.entries[key]; ok {
		c.recency.Remove(e.element)
		delete(c.entries, key)
	}
}

// Len reports the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func remoteGet[T any](ctx context.Context, c *ResultCache, key string) (T, bool) {
	var out T
	b, ok, err := c.remote.GetBytes(ctx, pkgcache.HashKey(key))
	if err != nil || !ok {
		return out, false
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false
	}
	return out, true
}

func remoteSet(ctx context.Context, c *ResultCache, class Class, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.remote.SetBytes(ctx, pkgcache.HashKey(key), b, c.TTL(class))
}
