package analytics

import (
	"testing"

	"StockLens/internal/domain/models"
)

func point(symbol string, ret, score *float64) models.DerivedPoint {
	return models.DerivedPoint{
		Symbol:          symbol,
		Date:            day(5),
		Close:           100,
		DailyReturn:     ret,
		VolatilityScore: score,
	}
}

func TestSnapshotRanking(t *testing.T) {
	a := NewAggregator()
	latest := []models.DerivedPoint{
		point("AAA", models.Float64(0.02), models.Float64(0.01)),
		point("BBB", models.Float64(-0.04), models.Float64(0.05)),
		point("CCC", models.Float64(0.07), models.Float64(0.02)),
	}

	snap := a.Snapshot(latest, 5)

	if got := symbols(snap.TopGainers); got[0] != "CCC" || got[2] != "BBB" {
		t.Fatalf("gainers order = %v", got)
	}
	if got := symbols(snap.TopLosers); got[0] != "BBB" || got[2] != "CCC" {
		t.Fatalf("losers order = %v", got)
	}
	if got := symbols(snap.MostVolatile); got[0] != "BBB" || got[2] != "AAA" {
		t.Fatalf("volatile order = %v", got)
	}
}

func TestSnapshotCaps(t *testing.T) {
	a := NewAggregator()
	latest := []models.DerivedPoint{
		point("AAA", models.Float64(0.01), models.Float64(0.01)),
		point("BBB", models.Float64(0.02), models.Float64(0.02)),
		point("CCC", models.Float64(0.03), models.Float64(0.03)),
	}

	snap := a.Snapshot(latest, 2)
	if len(snap.TopGainers) != 2 || len(snap.TopLosers) != 2 || len(snap.MostVolatile) != 2 {
		t.Fatalf("lists not capped: %d/%d/%d",
			len(snap.TopGainers), len(snap.TopLosers), len(snap.MostVolatile))
	}
}

func TestSnapshotSkipsMissingMetrics(t *testing.T) {
	a := NewAggregator()
	latest := []models.DerivedPoint{
		point("AAA", nil, models.Float64(0.01)),
		point("BBB", models.Float64(0.02), nil),
	}

	snap := a.Snapshot(latest, 5)
	if got := symbols(snap.TopGainers); len(got) != 1 || got[0] != "BBB" {
		t.Fatalf("gainers = %v, want [BBB]", got)
	}
	if got := symbols(snap.MostVolatile); len(got) != 1 || got[0] != "AAA" {
		t.Fatalf("volatile = %v, want [AAA]", got)
	}
}

func TestSnapshotDeterministicTies(t *testing.T) {
	a := NewAggregator()
	latest := []models.DerivedPoint{
		point("BBB", models.Float64(0.02), nil),
		point("AAA", models.Float64(0.02), nil),
	}

	for i := 0; i < 5; i++ {
		snap := a.Snapshot(latest, 5)
		if got := symbols(snap.TopGainers); got[0] != "AAA" || got[1] != "BBB" {
			t.Fatalf("tie order = %v, want symbol order", got)
		}
	}
}

func TestSnapshotAsOfDate(t *testing.T) {
	a := NewAggregator()
	p1 := point("AAA", models.Float64(0.01), nil)
	p2 := point("BBB", models.Float64(0.02), nil)
	p2.Date = day(9)

	snap := a.Snapshot([]models.DerivedPoint{p1, p2}, 5)
	if !snap.AsOfDate.Equal(day(9)) {
		t.Fatalf("as of = %v, want %v", snap.AsOfDate, day(9))
	}
}

func TestSnapshotEmpty(t *testing.T) {
	a := NewAggregator()
	snap := a.Snapshot(nil, 5)
	if len(snap.TopGainers)+len(snap.TopLosers)+len(snap.MostVolatile) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func symbols(rs []models.RankedSymbol) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Symbol
	}
	return out
}
