package analytics

import (
	"sort"
	"strings"
	"time"

	"StockLens/internal/domain/models"
	domsvc "StockLens/internal/domain/service"
)

// SeriesCleaner normalizes raw rows into a canonical daily series:
// dates truncated to UTC midnight, one row per date (latest arrival wins),
// ascending order, missing numerics filled forward, then backward, then zero.
type SeriesCleaner struct{}

func NewSeriesCleaner() *SeriesCleaner { return &SeriesCleaner{} }

func (c *SeriesCleaner) Clean(symbol string, raw []models.RawObservation) ([]models.Observation, error) {
	if len(raw) == 0 {
		return []models.Observation{}, nil
	}

	byDate := make(map[time.Time]models.RawObservation, len(raw))
	order := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		if r.Date.IsZero() {
			return nil, &models.MalformedInputError{Symbol: symbol, Reason: "row has no date"}
		}
		if r.Symbol != "" && !strings.EqualFold(r.Symbol, symbol) {
			return nil, &models.MalformedInputError{Symbol: symbol, Reason: "row belongs to " + r.Symbol}
		}
		d := CanonicalDate(r.Date)
		if _, seen := byDate[d]; !seen {
			order = append(order, d)
		}
		byDate[d] = r // later arrivals replace earlier ones
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]models.Observation, len(order))
	for i, d := range order {
		r := byDate[d]
		out[i] = models.Observation{Symbol: symbol, Date: d}
		assign(&out[i], r)
	}

	fillField(out, func(o *models.Observation) *float64 { return &o.Open }, missingMask(order, byDate, func(r models.RawObservation) *float64 { return r.Open }))
	fillField(out, func(o *models.Observation) *float64 { return &o.High }, missingMask(order, byDate, func(r models.RawObservation) *float64 { return r.High }))
	fillField(out, func(o *models.Observation) *float64 { return &o.Low }, missingMask(order, byDate, func(r models.RawObservation) *float64 { return r.Low }))
	fillField(out, func(o *models.Observation) *float64 { return &o.Close }, missingMask(order, byDate, func(r models.RawObservation) *float64 { return r.Close }))
	fillField(out, func(o *models.Observation) *float64 { return &o.Volume }, missingMask(order, byDate, func(r models.RawObservation) *float64 { return r.Volume }))

	return out, nil
}

// CanonicalDate discards any time-of-day component, normalizing to UTC midnight.
func CanonicalDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assign(o *models.Observation, r models.RawObservation) {
	if r.Open != nil {
		o.Open = *r.Open
	}
	if r.High != nil {
		o.High = *r.High
	}
	if r.Low != nil {
		o.Low = *r.Low
	}
	if r.Close != nil {
		o.Close = *r.Close
	}
	if r.Volume != nil {
		o.Volume = *r.Volume
	}
}

func missingMask(order []time.Time, byDate map[time.Time]models.RawObservation, field func(models.RawObservation) *float64) []bool {
	mask := make([]bool, len(order))
	for i, d := range order {
		mask[i] = field(byDate[d]) == nil
	}
	return mask
}

// fillField resolves missing values per the forward/backward/zero policy.
// Forward fill first, then a backward pass for gaps at the series head.
func fillField(obs []models.Observation, field func(*models.Observation) *float64, missing []bool) {
	lastKnown := -1
	for i := range obs {
		if !missing[i] {
			lastKnown = i
			continue
		}
		if lastKnown >= 0 {
			*field(&obs[i]) = *field(&obs[lastKnown])
			missing[i] = false
		}
	}
	nextKnown := -1
	for i := len(obs) - 1; i >= 0; i-- {
		if !missing[i] {
			nextKnown = i
			continue
		}
		if nextKnown >= 0 {
			*field(&obs[i]) = *field(&obs[nextKnown])
		} else {
			*field(&obs[i]) = 0
		}
	}
}

var _ domsvc.Cleaner = (*SeriesCleaner)(nil)
