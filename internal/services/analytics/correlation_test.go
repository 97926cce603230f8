package analytics

import (
	"errors"
	"math"
	"testing"

	"StockLens/internal/domain/models"
)

func TestCorrelateSelf(t *testing.T) {
	c := NewCorrelator()
	a := obsSeries(100, 102, 101, 105)

	corr, shared, err := c.Correlate(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shared != 4 {
		t.Fatalf("shared = %d, want 4", shared)
	}
	if math.Abs(corr-1) > 1e-9 {
		t.Fatalf("self correlation = %v, want 1", corr)
	}
}

func TestCorrelateInverse(t *testing.T) {
	c := NewCorrelator()
	a := obsSeries(100, 102, 104, 106)
	b := obsSeries(106, 104, 102, 100)

	corr, _, err := c.Correlate(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(corr+1) > 1e-9 {
		t.Fatalf("inverse correlation = %v, want -1", corr)
	}
}

func TestCorrelateSharedDatesOnly(t *testing.T) {
	c := NewCorrelator()
	a := obsSeries(100, 102, 104)
	b := obsSeries(50, 51, 52)
	b[2].Date = day(9) // drop day 3 from the intersection

	_, shared, err := c.Correlate(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shared != 2 {
		t.Fatalf("shared = %d, want 2", shared)
	}
}

func TestCorrelateDisjoint(t *testing.T) {
	c := NewCorrelator()
	a := obsSeries(100, 102)
	b := obsSeries(50, 51)
	b[0].Date = day(8)
	b[1].Date = day(9)

	_, shared, err := c.Correlate(a, b)
	var de *models.DisjointSeriesError
	if !errors.As(err, &de) {
		t.Fatalf("expected DisjointSeriesError, got %v", err)
	}
	if shared != 0 || de.Shared != 0 {
		t.Fatalf("shared = %d/%d, want 0", shared, de.Shared)
	}
}

func TestCorrelateSingleSharedDate(t *testing.T) {
	c := NewCorrelator()
	a := obsSeries(100, 102)
	b := obsSeries(50, 51)
	b[1].Date = day(9)

	_, _, err := c.Correlate(a, b)
	var de *models.DisjointSeriesError
	if !errors.As(err, &de) {
		t.Fatalf("expected DisjointSeriesError, got %v", err)
	}
	if de.Shared != 1 {
		t.Fatalf("shared = %d, want 1", de.Shared)
	}
}

func TestCorrelateConstantSeries(t *testing.T) {
	c := NewCorrelator()
	a := obsSeries(100, 100, 100)
	b := obsSeries(50, 51, 52)

	corr, _, err := c.Correlate(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if corr != 0 {
		t.Fatalf("zero-variance correlation = %v, want 0", corr)
	}
}
