package analytics

import (
	"math"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

const (
	movingAvgWindow  = 7
	volatilityWindow = 30
	summaryWindow    = 252 // trailing trading days in a 52-week window

	sentimentReturnWeight = 8.0
	sentimentVolumeWeight = 2.0
)

// Calculator derives per-day metrics from a cleaned series in a single pass.
// Windowed statistics keep running sums so multi-year series stay O(n).
type Calculator struct{}

func NewCalculator() *Calculator { return &Calculator{} }

// DerivedSeries computes one DerivedPoint per cleaned observation.
func (c *Calculator) DerivedSeries(obs []models.Observation) ([]models.DerivedPoint, error) {
	if len(obs) == 0 {
		return nil, &models.InsufficientDataError{Symbol: ""}
	}

	out := make([]models.DerivedPoint, len(obs))

	var closeSum, volumeSum float64 // trailing moving-average window
	var retSum, retSumSq float64    // trailing volatility window
	retWindow := make([]*float64, 0, len(obs))
	retCount := 0

	for i, o := range obs {
		p := models.DerivedPoint{Symbol: o.Symbol, Date: o.Date, Close: o.Close}

		if o.Open != 0 {
			p.DailyReturn = models.Float64((o.Close - o.Open) / o.Open)
		}

		closeSum += o.Close
		volumeSum += o.Volume
		if i >= movingAvgWindow {
			closeSum -= obs[i-movingAvgWindow].Close
			volumeSum -= obs[i-movingAvgWindow].Volume
		}
		span := float64(min(i+1, movingAvgWindow))
		p.MovingAvg7 = closeSum / span

		retWindow = append(retWindow, p.DailyReturn)
		if p.DailyReturn != nil {
			retSum += *p.DailyReturn
			retSumSq += *p.DailyReturn * *p.DailyReturn
			retCount++
		}
		if len(retWindow) > volatilityWindow {
			if old := retWindow[len(retWindow)-volatilityWindow-1]; old != nil {
				retSum -= *old
				retSumSq -= *old * *old
				retCount--
			}
		}
		if retCount >= 2 {
			n := float64(retCount)
			variance := (retSumSq - retSum*retSum/n) / (n - 1)
			if variance < 0 {
				variance = 0 // guard against float drift
			}
			p.VolatilityScore = models.Float64(math.Sqrt(variance))
		}

		p.SentimentIndex = sentiment(p.DailyReturn, o.Volume, volumeSum/span)

		out[i] = p
	}

	return out, nil
}

// Summary restricts the series to the trailing 252 observations and reports
// the 52-week high/low/average alongside the latest close.
func (c *Calculator) Summary(obs []models.Observation) (models.SummaryRecord, error) {
	if len(obs) == 0 {
		return models.SummaryRecord{}, &models.InsufficientDataError{Symbol: ""}
	}

	start := len(obs) - summaryWindow
	if start < 0 {
		start = 0
	}
	window := obs[start:]

	high := math.Inf(-1)
	low := math.Inf(1)
	closeSum := 0.0
	for _, o := range window {
		if o.High > high {
			high = o.High
		}
		if o.Low < low {
			low = o.Low
		}
		closeSum += o.Close
	}

	last := obs[len(obs)-1]
	return models.SummaryRecord{
		Symbol:       last.Symbol,
		Week52High:   high,
		Week52Low:    low,
		AvgClose:     closeSum / float64(len(window)),
		CurrentPrice: last.Close,
		AsOfDate:     last.Date,
	}, nil
}

// sentiment maps the signed daily return, amplified by relative volume, onto
// [-1, 1] via tanh. Monotonic in the return and in the volume ratio (volume
// amplifies the move in its own direction), saturating at the bounds.
func sentiment(dailyReturn *float64, volume, avgVolume float64) float64 {
	if dailyReturn == nil {
		return 0
	}
	relVolume := 1.0
	if avgVolume > 0 {
		relVolume = volume / avgVolume
	}
	return math.Tanh(*dailyReturn * (sentimentReturnWeight + sentimentVolumeWeight*relVolume))
}

var _ domsvc.MetricCalculator = (*Calculator)(nil)
