package analytics

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

const (
	forecastLookback   = 7
	featureCount       = forecastLookback + 5 // trailing closes + ma7, ma3, avg volume, last volume, last return
	DefaultMinHistory  = 10
	confidenceFullSpan = 100.0 // history depth at which fit quality is trusted outright
)

// LeastSquaresForecaster fits an ordinary least squares model over all
// (feature, next-close) pairs on every request. Features are standardized
// with the training statistics; the identical construction runs at inference.
// No model state survives between calls, so the fit always reflects the
// latest available history.
type LeastSquaresForecaster struct {
	minHistory int
}

func NewLeastSquaresForecaster(minHistory int) *LeastSquaresForecaster {
	if minHistory < forecastLookback+2 {
		minHistory = DefaultMinHistory
	}
	return &LeastSquaresForecaster{minHistory: minHistory}
}

func (f *LeastSquaresForecaster) Predict(symbol string, obs []models.Observation) (models.Prediction, error) {
	if len(obs) < f.minHistory {
		return models.Prediction{}, &models.InsufficientHistoryError{Symbol: symbol, Points: len(obs), Min: f.minHistory}
	}

	// One training pair per day that has a full lookback window behind it.
	m := len(obs) - forecastLookback
	features := make([][]float64, m)
	targets := make([]float64, m)
	for i := 0; i < m; i++ {
		features[i] = featureVector(obs, forecastLookback+i)
		targets[i] = obs[forecastLookback+i].Close
	}

	means, scales := columnStats(features)
	x := designMatrix(features, means, scales)
	y := mat.NewDense(m, 1, targets)

	var beta mat.Dense
	if err := beta.Solve(x, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return models.Prediction{}, &models.InsufficientHistoryError{Symbol: symbol, Points: len(obs), Min: f.minHistory}
		}
		// Ill-conditioned fits still produce the minimum-norm solution;
		// the low R² they earn shows up in the confidence instead.
	}

	var fitted mat.Dense
	fitted.Mul(x, &beta)
	r2 := rSquared(targets, fitted.RawMatrix().Data)

	latest := standardize(featureVector(obs, len(obs)), means, scales)
	predicted := beta.At(0, 0)
	for j, v := range latest {
		predicted += v * beta.At(j+1, 0)
	}

	last := obs[len(obs)-1]
	confidence := clamp01(r2) * clamp01(float64(len(obs))/confidenceFullSpan)

	return models.Prediction{
		Symbol:         symbol,
		CurrentPrice:   last.Close,
		PredictedPrice: predicted,
		Confidence:     confidence,
		PredictionDate: last.Date.AddDate(0, 0, 1),
	}, nil
}

// featureVector builds the fixed-width feature row describing the window that
// ends just before index i. Valid for forecastLookback <= i <= len(obs).
func featureVector(obs []models.Observation, i int) []float64 {
	window := obs[i-forecastLookback : i]

	v := make([]float64, 0, featureCount)
	closeSum, volumeSum := 0.0, 0.0
	for _, o := range window {
		v = append(v, o.Close)
		closeSum += o.Close
		volumeSum += o.Volume
	}

	ma3 := 0.0
	for _, o := range window[forecastLookback-3:] {
		ma3 += o.Close
	}

	prev := window[forecastLookback-1]
	lastReturn := 0.0
	if prev.Open != 0 {
		lastReturn = (prev.Close - prev.Open) / prev.Open
	}

	return append(v,
		closeSum/forecastLookback,
		ma3/3,
		volumeSum/forecastLookback,
		prev.Volume,
		lastReturn,
	)
}

func columnStats(rows [][]float64) (means, scales []float64) {
	means = make([]float64, featureCount)
	scales = make([]float64, featureCount)
	col := make([]float64, len(rows))
	for j := 0; j < featureCount; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		means[j] = stat.Mean(col, nil)
		scales[j] = stat.StdDev(col, nil)
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func standardize(row, means, scales []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - means[j]) / scales[j]
	}
	return out
}

// designMatrix standardizes every row and prepends an intercept column.
func designMatrix(rows [][]float64, means, scales []float64) *mat.Dense {
	x := mat.NewDense(len(rows), featureCount+1, nil)
	for i, row := range rows {
		x.Set(i, 0, 1)
		for j, v := range standardize(row, means, scales) {
			x.Set(i, j+1, v)
		}
	}
	return x
}

func rSquared(actual, fitted []float64) float64 {
	meanY := stat.Mean(actual, nil)
	ssRes, ssTot := 0.0, 0.0
	for i, y := range actual {
		r := y - fitted[i]
		d := y - meanY
		ssRes += r * r
		ssTot += d * d
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ domsvc.Forecaster = (*LeastSquaresForecaster)(nil)
