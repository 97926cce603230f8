package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockLens/internal/domain/models"
	domrepo "StockLens/internal/domain/repository"
	pkgch "StockLens/pkg/clickhouse"
	applogger "StockLens/pkg/logger"
)

const observationsTable = "stocklens.daily_observations"

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHObservationStore(ch *pkgch.Client) *CHObservationStore {
	return &CHObservationStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHObservationStore) GetObservations(ctx context.Context, symbol string, from, to time.Time) ([]models.RawObservation, error) {
	start := time.Now()
	const q = `
        SELECT symbol, date, open, high, low, close, volume
        FROM ` + observationsTable + `
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_observations query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get observations: %w", err)
	}
	defer rows.Close()

	out := make([]models.RawObservation, 0, 512)
	for rows.Next() {
		var o models.RawObservation
		if err := rows.Scan(&o.Symbol, &o.Date, &o.Open, &o.High, &o.Low, &o.Close, &o.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_observations scan error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_observations rows error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse get_observations ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHObservationStore) Symbols(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT symbol FROM ` + observationsTable + ` ORDER BY symbol ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse symbols query error", applogger.Error(err))
		}
		return nil, fmt.Errorf("get symbols: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0, 64)
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.ObservationStore = (*CHObservationStore)(nil)
