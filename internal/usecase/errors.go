package usecase

import (
	"errors"

	"StockLens/internal/domain/models"
)

// errorKind labels a computation error for metrics.
func errorKind(err error) string {
	var (
		malformed    *models.MalformedInputError
		insufficient *models.InsufficientDataError
		disjoint     *models.DisjointSeriesError
		history      *models.InsufficientHistoryError
		upstream     *models.UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &malformed):
		return "malformed_input"
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.As(err, &disjoint):
		return "disjoint_series"
	case errors.As(err, &history):
		return "insufficient_history"
	case errors.As(err, &upstream):
		return "upstream_unavailable"
	default:
		return "internal"
	}
}
