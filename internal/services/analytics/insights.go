package analytics

import (
	"sort"
	"time"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

// Aggregator ranks the latest derived point of every known symbol. Pure:
// no state survives between calls.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// Snapshot produces capped gainer/loser/volatility rankings. Symbols without
// a daily return are skipped for gainers and losers but still rank by
// volatility when a score exists. Ties break on symbol order so repeated
// snapshots over identical inputs are identical.
func (a *Aggregator) Snapshot(latest []models.DerivedPoint, limit int) models.InsightSnapshot {
	var asOf time.Time
	withReturn := make([]models.DerivedPoint, 0, len(latest))
	withScore := make([]models.DerivedPoint, 0, len(latest))
	for _, p := range latest {
		if p.Date.After(asOf) {
			asOf = p.Date
		}
		if p.DailyReturn != nil {
			withReturn = append(withReturn, p)
		}
		if p.VolatilityScore != nil {
			withScore = append(withScore, p)
		}
	}

	gainers := rank(withReturn, limit, func(x, y models.DerivedPoint) bool {
		if *x.DailyReturn != *y.DailyReturn {
			return *x.DailyReturn > *y.DailyReturn
		}
		return x.Symbol < y.Symbol
	})
	losers := rank(withReturn, limit, func(x, y models.DerivedPoint) bool {
		if *x.DailyReturn != *y.DailyReturn {
			return *x.DailyReturn < *y.DailyReturn
		}
		return x.Symbol < y.Symbol
	})
	volatile := rank(withScore, limit, func(x, y models.DerivedPoint) bool {
		if *x.VolatilityScore != *y.VolatilityScore {
			return *x.VolatilityScore > *y.VolatilityScore
		}
		return x.Symbol < y.Symbol
	})

	return models.InsightSnapshot{
		AsOfDate:     asOf,
		TopGainers:   entries(gainers, true),
		TopLosers:    entries(losers, true),
		MostVolatile: entries(volatile, false),
	}
}

func rank(points []models.DerivedPoint, limit int, less func(x, y models.DerivedPoint) bool) []models.DerivedPoint {
	sorted := make([]models.DerivedPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func entries(points []models.DerivedPoint, byReturn bool) []models.RankedSymbol {
	out := make([]models.RankedSymbol, len(points))
	for i, p := range points {
		out[i] = models.RankedSymbol{Symbol: p.Symbol, Close: p.Close}
		if byReturn {
			out[i].DailyReturn = p.DailyReturn
		} else {
			out[i].VolatilityScore = p.VolatilityScore
		}
	}
	return out
}

var _ domsvc.InsightAggregator = (*Aggregator)(nil)
