package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgcache "StockLens/pkg/cache"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxEntries = 8
	return cfg
}

func TestDoCachesValue(t *testing.T) {
	c := NewResultCache(testConfig())
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Do(context.Background(), c, ClassSeries, "series:ACME", compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Fatalf("value = %d, want 42", v)
		}
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times, want 1", calls)
	}
}

func TestDoSingleFlight(t *testing.T) {
	c := NewResultCache(testConfig())
	var calls int32
	gate := make(chan struct{})
	compute := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "done", nil
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Do(context.Background(), c, ClassSummary, "summary:ACME", compute)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute ran %d times, want 1", n)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d error: %v", i, errs[i])
		}
		if results[i] != "done" {
			t.Fatalf("worker %d result = %q", i, results[i])
		}
	}
}

func TestDoErrorNotCached(t *testing.T) {
	c := NewResultCache(testConfig())
	calls := 0
	boom := errors.New("boom")
	compute := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	if _, err := Do(context.Background(), c, ClassSeries, "series:X", compute); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := Do(context.Background(), c, ClassSeries, "series:X", compute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 7 || calls != 2 {
		t.Fatalf("v=%d calls=%d, want recomputation after failure", v, calls)
	}
}

func TestDoAbandonedCaller(t *testing.T) {
	c := NewResultCache(testConfig())
	gate := make(chan struct{})
	compute := func(context.Context) (int, error) {
		<-gate
		return 9, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, c, ClassPrediction, "prediction:ACME", compute)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("abandoning caller did not return")
	}

	// The computation keeps running and publishes for later callers.
	close(gate)
	v, err := Do(context.Background(), c, ClassPrediction, "prediction:ACME", func(context.Context) (int, error) {
		t.Fatal("value should come from the finished computation")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 9 {
		t.Fatalf("v = %d, want 9", v)
	}
}

func TestExpiryTriggersRecompute(t *testing.T) {
	c := NewResultCache(testConfig())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	if v, _ := Do(context.Background(), c, ClassInsights, "insights:1", compute); v != 1 {
		t.Fatalf("first value = %d", v)
	}
	now = now.Add(c.TTL(ClassInsights) / 2)
	if v, _ := Do(context.Background(), c, ClassInsights, "insights:1", compute); v != 1 {
		t.Fatalf("live entry recomputed")
	}
	now = now.Add(c.TTL(ClassInsights))
	if v, _ := Do(context.Background(), c, ClassInsights, "insights:1", compute); v != 2 {
		t.Fatalf("expired entry not recomputed")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := NewResultCache(testConfig())
	seed := func(class Class, key string) {
		if _, err := Do(context.Background(), c, class, key, func(context.Context) (int, error) { return 1, nil }); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	seed(ClassSeries, Key(ClassSeries, "ACME", "2025-01-01", "2025-01-31"))
	seed(ClassSeries, Key(ClassSeries, "ACME", "2025-02-01", "2025-02-28"))
	seed(ClassSeries, Key(ClassSeries, "OTHER", "2025-01-01", "2025-01-31"))
	seed(ClassSummary, Key(ClassSummary, "ACME", "2025-02-28"))

	if removed := c.Invalidate(ClassSeries, "ACME"); removed != 2 {
		t.Fatalf("removed %d series entries, want 2", removed)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if removed := c.Invalidate(ClassSummary); removed != 1 {
		t.Fatalf("removed %d summary entries, want 1", removed)
	}
}

func TestInvalidateRespectsParamBoundaries(t *testing.T) {
	c := NewResultCache(testConfig())
	seed := func(class Class, key string) {
		if _, err := Do(context.Background(), c, class, key, func(context.Context) (int, error) { return 1, nil }); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	seed(ClassSeries, Key(ClassSeries, "ACME", "2025-01-01", "2025-01-31"))
	seed(ClassSeries, Key(ClassSeries, "ACMEX", "2025-01-01", "2025-01-31"))
	seed(ClassSymbols, Key(ClassSymbols))

	if removed := c.Invalidate(ClassSeries, "ACME"); removed != 1 {
		t.Fatalf("removed %d entries, want 1", removed)
	}
	if _, ok := c.lookup(Key(ClassSeries, "ACMEX", "2025-01-01", "2025-01-31")); !ok {
		t.Fatal("longer symbol invalidated by shorter prefix")
	}

	// A bare class key matches itself exactly.
	if removed := c.Invalidate(ClassSymbols); removed != 1 {
		t.Fatalf("removed %d symbols entries, want 1", removed)
	}
}

func TestEvictionPrefersExpired(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntries = 2
	c := NewResultCache(cfg)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	seed := func(key string, v int) {
		if _, err := Do(context.Background(), c, ClassSeries, key, func(context.Context) (int, error) { return v, nil }); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	seed("series:A", 1)
	now = now.Add(c.TTL(ClassSeries) + time.Second) // A expires
	seed("series:B", 2)
	seed("series:C", 3) // must evict expired A, not live B

	if _, ok := c.lookup("series:B"); !ok {
		t.Fatal("live entry evicted while an expired one existed")
	}
	if _, ok := c.lookup("series:A"); ok {
		t.Fatal("expired entry survived eviction")
	}
}

func TestLRUEviction(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntries = 2
	c := NewResultCache(cfg)

	seed := func(key string, v int) {
		if _, err := Do(context.Background(), c, ClassSeries, key, func(context.Context) (int, error) { return v, nil }); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}

	seed("series:A", 1)
	seed("series:B", 2)
	if _, ok := c.lookup("series:A"); !ok { // A becomes most recent
		t.Fatal("A missing")
	}
	seed("series:C", 3) // evicts B

	if _, ok := c.lookup("series:B"); ok {
		t.Fatal("expected LRU entry B to be evicted")
	}
	if _, ok := c.lookup("series:A"); !ok {
		t.Fatal("recently used entry A evicted")
	}
}

func TestRemoteRoundTrip(t *testing.T) {
	remote := pkgcache.NewMemoryCache(16)

	c1 := NewResultCache(testConfig())
	c1.SetRemote(remote)
	if _, err := Do(context.Background(), c1, ClassSummary, "summary:ACME:2025-06-01", func(context.Context) (map[string]float64, error) {
		return map[string]float64{"high": 120}, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second instance sharing the same remote reuses the stored value.
	c2 := NewResultCache(testConfig())
	c2.SetRemote(remote)
	v, err := Do(context.Background(), c2, ClassSummary, "summary:ACME:2025-06-01", func(context.Context) (map[string]float64, error) {
		t.Fatal("compute should not run with a warm remote")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v["high"] != 120 {
		t.Fatalf("remote value = %v", v)
	}
}

func TestKeyReadable(t *testing.T) {
	key := Key(ClassCompare, "ACME", "OTHER", 30)
	if key != "compare:ACME:OTHER:30" {
		t.Fatalf("key = %q", key)
	}
}
