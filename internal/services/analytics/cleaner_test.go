package analytics

import (
	"errors"
	"testing"
	"time"

	"StockLens/internal/domain/models"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func rawObs(d int, open, high, low, close, volume *float64) models.RawObservation {
	return models.RawObservation{
		Symbol: "ACME",
		Date:   day(d),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}

func fillRaw(d int, close float64) models.RawObservation {
	return rawObs(d,
		models.Float64(close), models.Float64(close+1),
		models.Float64(close-1), models.Float64(close), models.Float64(1000))
}

func TestCleanEmpty(t *testing.T) {
	c := NewSeriesCleaner()
	out, err := c.Clean("ACME", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty series, got %d", len(out))
	}
}

func TestCleanSortsAndCanonicalizes(t *testing.T) {
	c := NewSeriesCleaner()
	raw := []models.RawObservation{fillRaw(3, 30), fillRaw(1, 10), fillRaw(2, 20)}
	raw[1].Date = time.Date(2025, 1, 1, 15, 4, 5, 0, time.FixedZone("IST", 5*3600+1800))

	out, err := c.Clean("ACME", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	for i, want := range []float64{10, 20, 30} {
		if out[i].Close != want {
			t.Fatalf("row %d close = %v, want %v", i, out[i].Close, want)
		}
		if !out[i].Date.Equal(day(i + 1)) {
			t.Fatalf("row %d date = %v, want %v", i, out[i].Date, day(i+1))
		}
		if h, m, s := out[i].Date.Clock(); h+m+s != 0 {
			t.Fatalf("row %d date has time-of-day: %v", i, out[i].Date)
		}
	}
}

func TestCleanDuplicateDateLatestWins(t *testing.T) {
	c := NewSeriesCleaner()
	out, err := c.Clean("ACME", []models.RawObservation{fillRaw(1, 10), fillRaw(2, 20), fillRaw(1, 11)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}
	if out[0].Close != 11 {
		t.Fatalf("duplicate date resolved to %v, want 11", out[0].Close)
	}
}

func TestCleanFillPolicy(t *testing.T) {
	c := NewSeriesCleaner()
	// Close missing on days 1 and 3: head gap backfills from day 2,
	// interior gap forward-fills from day 2.
	raw := []models.RawObservation{
		rawObs(1, models.Float64(9), models.Float64(12), models.Float64(8), nil, models.Float64(100)),
		rawObs(2, models.Float64(10), models.Float64(12), models.Float64(8), models.Float64(11), models.Float64(100)),
		rawObs(3, models.Float64(10), models.Float64(12), models.Float64(8), nil, models.Float64(100)),
	}
	out, err := c.Clean("ACME", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Close != 11 {
		t.Fatalf("head gap close = %v, want backfill 11", out[0].Close)
	}
	if out[2].Close != 11 {
		t.Fatalf("interior gap close = %v, want forward fill 11", out[2].Close)
	}
}

func TestCleanAllMissingFieldZero(t *testing.T) {
	c := NewSeriesCleaner()
	raw := []models.RawObservation{
		rawObs(1, models.Float64(10), models.Float64(12), models.Float64(8), models.Float64(11), nil),
		rawObs(2, models.Float64(10), models.Float64(12), models.Float64(8), models.Float64(11), nil),
	}
	out, err := c.Clean("ACME", raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, o := range out {
		if o.Volume != 0 {
			t.Fatalf("row %d volume = %v, want 0", i, o.Volume)
		}
	}
}

func TestCleanMissingDate(t *testing.T) {
	c := NewSeriesCleaner()
	_, err := c.Clean("ACME", []models.RawObservation{{Symbol: "ACME", Close: models.Float64(10)}})
	var me *models.MalformedInputError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}

func TestCleanSymbolMismatch(t *testing.T) {
	c := NewSeriesCleaner()
	row := fillRaw(1, 10)
	row.Symbol = "OTHER"
	_, err := c.Clean("ACME", []models.RawObservation{row})
	var me *models.MalformedInputError
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
}

func TestCleanSymbolCaseInsensitive(t *testing.T) {
	c := NewSeriesCleaner()
	row := fillRaw(1, 10)
	row.Symbol = "acme"
	out, err := c.Clean("ACME", []models.RawObservation{row})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Symbol != "ACME" {
		t.Fatalf("symbol = %q, want ACME", out[0].Symbol)
	}
}
