package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseDateDayOnly(t *testing.T) {
	got, ok := ParseDate("2025-03-14")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseDate(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseDate(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestTruncateToDay(t *testing.T) {
	in := time.Date(2025, 6, 1, 17, 45, 12, 99, time.FixedZone("X", -5*3600))
	got := TruncateToDay(in)
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
