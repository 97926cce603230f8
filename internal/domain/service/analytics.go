package service

import "StockLens/internal/domain/models"

// Cleaner normalizes a raw observation sequence for one symbol into a sorted,
// deduplicated, gap-filled series.
type Cleaner interface {
	Clean(symbol string, raw []models.RawObservation) ([]models.Observation, error)
}

// MetricCalculator derives per-day metrics and rolling summaries from a
// cleaned series.
type MetricCalculator interface {
	DerivedSeries(obs []models.Observation) ([]models.DerivedPoint, error)
	Summary(obs []models.Observation) (models.SummaryRecord, error)
}

// CorrelationAnalyzer computes Pearson correlation between two cleaned series
// aligned on shared dates.
type CorrelationAnalyzer interface {
	Correlate(a, b []models.Observation) (corr float64, shared int, err error)
}

// InsightAggregator ranks the latest derived point of every symbol.
type InsightAggregator interface {
	Snapshot(latest []models.DerivedPoint, limit int) models.InsightSnapshot
}

// Forecaster produces a single-step-ahead close price prediction from a
// symbol's full derived history.
type Forecaster interface {
	Predict(symbol string, obs []models.Observation) (models.Prediction, error)
}
