package models

import "time"

// RawObservation is a daily OHLCV row as delivered by the observation store.
// Numeric fields are pointers because upstream feeds routinely drop them;
// the cleaner resolves the gaps before anything downstream sees the row.
type RawObservation struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open"`
	High   *float64  `json:"high"`
	Low    *float64  `json:"low"`
	Close  *float64  `json:"close"`
	Volume *float64  `json:"volume"`
}

// Observation is a cleaned daily bar: one per calendar date, sorted ascending,
// all fields resolved. Immutable once produced by the cleaner.
type Observation struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// DerivedPoint carries the per-day metrics computed from one Observation.
// DailyReturn is nil when open == 0; VolatilityScore is nil when fewer than
// two returns exist in the trailing window.
type DerivedPoint struct {
	Symbol          string    `json:"symbol"`
	Date            time.Time `json:"date"`
	Close           float64   `json:"close"`
	DailyReturn     *float64  `json:"daily_return"`
	MovingAvg7      float64   `json:"moving_avg_7"`
	VolatilityScore *float64  `json:"volatility_score"`
	SentimentIndex  float64   `json:"sentiment_index"`
}

// SummaryRecord is the trailing 52-week view of one symbol.
type SummaryRecord struct {
	Symbol       string    `json:"symbol"`
	Week52High   float64   `json:"week_52_high"`
	Week52Low    float64   `json:"week_52_low"`
	AvgClose     float64   `json:"avg_close"`
	CurrentPrice float64   `json:"current_price"`
	AsOfDate     time.Time `json:"as_of_date"`
}

// RankedSymbol is one entry in an insight list.
type RankedSymbol struct {
	Symbol          string   `json:"symbol"`
	DailyReturn     *float64 `json:"daily_return,omitempty"`
	VolatilityScore *float64 `json:"volatility_score,omitempty"`
	Close           float64  `json:"close"`
}

// InsightSnapshot ranks every symbol's latest derived point.
type InsightSnapshot struct {
	AsOfDate     time.Time      `json:"as_of_date"`
	TopGainers   []RankedSymbol `json:"top_gainers"`
	TopLosers    []RankedSymbol `json:"top_losers"`
	MostVolatile []RankedSymbol `json:"most_volatile"`
}

// ComparisonResult holds the pairwise correlation and both summaries.
type ComparisonResult struct {
	Symbol1        string        `json:"symbol1"`
	Symbol2        string        `json:"symbol2"`
	Correlation    float64       `json:"correlation"`
	SharedDates    int           `json:"shared_dates"`
	Symbol1Summary SummaryRecord `json:"symbol1_summary"`
	Symbol2Summary SummaryRecord `json:"symbol2_summary"`
}

// Prediction is a single-step-ahead close price forecast.
type Prediction struct {
	Symbol         string    `json:"symbol"`
	CurrentPrice   float64   `json:"current_price"`
	PredictedPrice float64   `json:"predicted_price"`
	Confidence     float64   `json:"confidence"`
	PredictionDate time.Time `json:"prediction_date"`
}

// Float64 returns a pointer to v. Convenience for nullable metric fields.
func Float64(v float64) *float64 { return &v }
