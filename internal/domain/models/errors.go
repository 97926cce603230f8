package models

import "fmt"

// MalformedInputError reports a raw row that cannot be normalized: a missing
// date or a symbol that does not match the requested series.
type MalformedInputError struct {
	Symbol string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input for %s: %s", e.Symbol, e.Reason)
}

// InsufficientDataError reports an empty input to a metric computation.
type InsufficientDataError struct {
	Symbol string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("no observations for %s", e.Symbol)
}

// DisjointSeriesError reports fewer than two shared dates between the series
// of a comparison request.
type DisjointSeriesError struct {
	Symbol1 string
	Symbol2 string
	Shared  int
}

func (e *DisjointSeriesError) Error() string {
	return fmt.Sprintf("series %s and %s share %d dates, need at least 2", e.Symbol1, e.Symbol2, e.Shared)
}

// InsufficientHistoryError reports too little history to fit a forecast model.
type InsufficientHistoryError struct {
	Symbol string
	Points int
	Min    int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("forecast for %s needs %d points, have %d", e.Symbol, e.Min, e.Points)
}

// UpstreamUnavailableError wraps a failure of the observation store.
type UpstreamUnavailableError struct {
	Symbol string
	Err    error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("observation store unavailable: %v", e.Err)
	}
	return fmt.Sprintf("observation store unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }
