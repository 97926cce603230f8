package usecase

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	domsvc "StockLens/internal/domain/service"
	rcache "StockLens/internal/service/cache"
	"StockLens/internal/services/analytics"
	applogger "StockLens/pkg/logger"
)

const (
	// summaryFetchDays covers a 52-week window with slack for market holidays.
	summaryFetchDays = 420
	// predictionFetchDays bounds forecast training history like the upstream
	// service did.
	predictionFetchDays = 100
)

// Engine is the analytics core: it turns raw observation history into derived
// series, summaries, comparisons, insights, and predictions, fronting every
// operation with the result cache.
type Engine struct {
	store      domrepo.ObservationStore
	cleaner    domsvc.Cleaner
	calculator domsvc.MetricCalculator
	correlator domsvc.CorrelationAnalyzer
	aggregator domsvc.InsightAggregator
	forecaster domsvc.Forecaster
	cache      *rcache.ResultCache
	metrics    domrepo.Metrics
	l          *applogger.Logger

	insightLimit int
}

func NewEngine(
	store domrepo.ObservationStore,
	cleaner domsvc.Cleaner,
	calculator domsvc.MetricCalculator,
	correlator domsvc.CorrelationAnalyzer,
	aggregator domsvc.InsightAggregator,
	forecaster domsvc.Forecaster,
	cache *rcache.ResultCache,
) *Engine {
	return &Engine{
		store:        store,
		cleaner:      cleaner,
		calculator:   calculator,
		correlator:   correlator,
		aggregator:   aggregator,
		forecaster:   forecaster,
		cache:        cache,
		insightLimit: 5,
	}
}

// SetLogger injects a structured logger.
func (e *Engine) SetLogger(l *applogger.Logger) { e.l = l }

// SetMetrics injects an instrumentation recorder.
func (e *Engine) SetMetrics(m domrepo.Metrics) { e.metrics = m }

// SetInsightLimit caps the ranked insight lists.
func (e *Engine) SetInsightLimit(n int) {
	if n > 0 {
		e.insightLimit = n
	}
}

// DerivedSeries returns per-day metrics for symbol between from and to.
func (e *Engine) DerivedSeries(ctx context.Context, symbol string, from, to time.Time) ([]models.DerivedPoint, error) {
	from, to = analytics.CanonicalDate(from), analytics.CanonicalDate(to)
	key := rcache.Key(rcache.ClassSeries, symbol, from.Format(time.DateOnly), to.Format(time.DateOnly))

	return cached(ctx, e, rcache.ClassSeries, "series", key, func(ctx context.Context) ([]models.DerivedPoint, error) {
		obs, err := e.fetchCleaned(ctx, symbol, from, to)
		if err != nil {
			return nil, err
		}
		return e.calculator.DerivedSeries(obs)
	})
}

// Summary returns the trailing 52-week summary for symbol.
func (e *Engine) Summary(ctx context.Context, symbol string) (models.SummaryRecord, error) {
	asOf := analytics.CanonicalDate(time.Now())
	key := rcache.Key(rcache.ClassSummary, symbol, asOf.Format(time.DateOnly))

	return cached(ctx, e, rcache.ClassSummary, "summary", key, func(ctx context.Context) (models.SummaryRecord, error) {
		obs, err := e.fetchCleaned(ctx, symbol, asOf.AddDate(0, 0, -summaryFetchDays), asOf)
		if err != nil {
			return models.SummaryRecord{}, err
		}
		if len(obs) == 0 {
			return models.SummaryRecord{}, &models.InsufficientDataError{Symbol: symbol}
		}
		return e.calculator.Summary(obs)
	})
}

// Compare correlates two symbols over a shared date window and pairs the
// result with both summaries. Both series load concurrently.
func (e *Engine) Compare(ctx context.Context, symbol1, symbol2 string, from, to time.Time) (models.ComparisonResult, error) {
	from, to = analytics.CanonicalDate(from), analytics.CanonicalDate(to)
	key := rcache.Key(rcache.ClassCompare, symbol1, symbol2, from.Format(time.DateOnly), to.Format(time.DateOnly))

	return cached(ctx, e, rcache.ClassCompare, "compare", key, func(ctx context.Context) (models.ComparisonResult, error) {
		var obs1, obs2 []models.Observation
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			obs1, err = e.fetchCleaned(gctx, symbol1, from, to)
			return err
		})
		g.Go(func() (err error) {
			obs2, err = e.fetchCleaned(gctx, symbol2, from, to)
			return err
		})
		if err := g.Wait(); err != nil {
			return models.ComparisonResult{}, err
		}

		corr, shared, err := e.correlator.Correlate(obs1, obs2)
		if err != nil {
			return models.ComparisonResult{}, err
		}

		sum1, err := e.Summary(ctx, symbol1)
		if err != nil {
			return models.ComparisonResult{}, err
		}
		sum2, err := e.Summary(ctx, symbol2)
		if err != nil {
			return models.ComparisonResult{}, err
		}

		return models.ComparisonResult{
			Symbol1:        symbol1,
			Symbol2:        symbol2,
			Correlation:    corr,
			SharedDates:    shared,
			Symbol1Summary: sum1,
			Symbol2Summary: sum2,
		}, nil
	})
}

// Insights ranks every known symbol's latest derived point. A limit of zero
// or less falls back to the configured default.
func (e *Engine) Insights(ctx context.Context, limit int) (models.InsightSnapshot, error) {
	if limit <= 0 {
		limit = e.insightLimit
	}
	asOf := analytics.CanonicalDate(time.Now())
	key := rcache.Key(rcache.ClassInsights, asOf.Format(time.DateOnly), limit)

	return cached(ctx, e, rcache.ClassInsights, "insights", key, func(ctx context.Context) (models.InsightSnapshot, error) {
		symbols, err := e.store.Symbols(ctx)
		if err != nil {
			return models.InsightSnapshot{}, &models.UpstreamUnavailableError{Err: err}
		}
		sort.Strings(symbols)

		latest := make([]models.DerivedPoint, 0, len(symbols))
		for _, sym := range symbols {
			obs, err := e.fetchCleaned(ctx, sym, asOf.AddDate(0, 0, -90), asOf)
			if err != nil {
				return models.InsightSnapshot{}, err
			}
			if len(obs) == 0 {
				continue
			}
			points, err := e.calculator.DerivedSeries(obs)
			if err != nil {
				continue // a symbol without usable data never sinks the snapshot
			}
			latest = append(latest, points[len(points)-1])
		}

		return e.aggregator.Snapshot(latest, limit), nil
	})
}

// ListSymbols returns the sorted symbol universe known to the store.
func (e *Engine) ListSymbols(ctx context.Context) ([]string, error) {
	key := rcache.Key(rcache.ClassSymbols)

	return cached(ctx, e, rcache.ClassSymbols, "symbols", key, func(ctx context.Context) ([]string, error) {
		symbols, err := e.store.Symbols(ctx)
		if err != nil {
			return nil, &models.UpstreamUnavailableError{Err: err}
		}
		sort.Strings(symbols)
		return symbols, nil
	})
}

// Predict fits a fresh model over the symbol's recent history and returns a
// single-step-ahead close price.
func (e *Engine) Predict(ctx context.Context, symbol string) (models.Prediction, error) {
	asOf := analytics.CanonicalDate(time.Now())
	key := rcache.Key(rcache.ClassPrediction, symbol, asOf.Format(time.DateOnly))

	return cached(ctx, e, rcache.ClassPrediction, "predict", key, func(ctx context.Context) (models.Prediction, error) {
		obs, err := e.fetchCleaned(ctx, symbol, asOf.AddDate(0, 0, -predictionFetchDays), asOf)
		if err != nil {
			return models.Prediction{}, err
		}
		return e.forecaster.Predict(symbol, obs)
	})
}

// Refresh drops cached artifacts for one symbol plus the cross-symbol
// snapshot, forcing recomputation on the next request.
func (e *Engine) Refresh(ctx context.Context, symbol string) int {
	removed := 0
	removed += e.cache.Invalidate(rcache.ClassSeries, symbol)
	removed += e.cache.Invalidate(rcache.ClassSummary, symbol)
	removed += e.cache.Invalidate(rcache.ClassPrediction, symbol)
	removed += e.cache.Invalidate(rcache.ClassCompare)
	removed += e.cache.Invalidate(rcache.ClassInsights)
	removed += e.cache.Invalidate(rcache.ClassSymbols)
	if e.l != nil {
		e.l.Info("cache refresh", applogger.String("symbol", symbol), applogger.Int("removed", removed))
	}
	return removed
}

func (e *Engine) fetchCleaned(ctx context.Context, symbol string, from, to time.Time) ([]models.Observation, error) {
	raw, err := e.store.GetObservations(ctx, symbol, from, to)
	if err != nil {
		return nil, &models.UpstreamUnavailableError{Symbol: symbol, Err: err}
	}
	return e.cleaner.Clean(symbol, raw)
}

// cached wraps a computation with the result cache plus latency/error
// instrumentation. The computation closure runs on the flight goroutine,
// which can outlive an abandoning caller, so the miss flag must be atomic.
func cached[T any](ctx context.Context, e *Engine, class rcache.Class, op, key string, compute func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	var miss atomic.Bool
	v, err := rcache.Do(ctx, e.cache, class, key, func(ctx context.Context) (T, error) {
		miss.Store(true)
		return compute(ctx)
	})
	if e.metrics != nil {
		e.metrics.RecordLatency(op, time.Since(start).Seconds())
		if miss.Load() {
			e.metrics.RecordCacheMiss(string(class))
		} else {
			e.metrics.RecordCacheHit(string(class))
		}
		if err != nil {
			e.metrics.RecordError(op, errorKind(err))
		}
	}
	return v, err
}
