package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

// Correlator computes Pearson correlation between two cleaned series on their
// shared dates only.
type Correlator struct{}

func NewCorrelator() *Correlator { return &Correlator{} }

// Correlate inner-joins on date and correlates the aligned close prices.
// A zero-variance series yields 0 by convention rather than NaN.
func (c *Correlator) Correlate(a, b []models.Observation) (float64, int, error) {
	byDate := make(map[time.Time]float64, len(a))
	for _, o := range a {
		byDate[o.Date] = o.Close
	}

	xs := make([]float64, 0, len(b))
	ys := make([]float64, 0, len(b))
	for _, o := range b {
		if closeA, ok := byDate[o.Date]; ok {
			xs = append(xs, closeA)
			ys = append(ys, o.Close)
		}
	}

	if len(xs) < 2 {
		sym1, sym2 := seriesSymbol(a), seriesSymbol(b)
		return 0, len(xs), &models.DisjointSeriesError{Symbol1: sym1, Symbol2: sym2, Shared: len(xs)}
	}

	corr := stat.Correlation(xs, ys, nil)
	if math.IsNaN(corr) {
		return 0, len(xs), nil
	}
	return corr, len(xs), nil
}

func seriesSymbol(obs []models.Observation) string {
	if len(obs) == 0 {
		return ""
	}
	return obs[0].Symbol
}

var _ domsvc.CorrelationAnalyzer = (*Correlator)(nil)
