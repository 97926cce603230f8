package repository

import (
	"context"
	"time"

	"StockLens/internal/domain/models"
)

// ObservationStore provides read-only access to raw daily observations.
// The engine never writes through this interface; collection and persistence
// live in a separate service.
type ObservationStore interface {
	// GetObservations returns every stored row for symbol within [from, to],
	// oldest first. An empty slice is not an error.
	GetObservations(ctx context.Context, symbol string, from, to time.Time) ([]models.RawObservation, error)

	// Symbols returns the known symbol universe.
	Symbols(ctx context.Context) ([]string, error)
}

// Metrics records engine instrumentation.
type Metrics interface {
	RecordLatency(op string, seconds float64)
	RecordError(op, kind string)
	RecordCacheHit(class string)
	RecordCacheMiss(class string)
}
