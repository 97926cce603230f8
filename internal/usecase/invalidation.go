package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
)

// InvalidationHandler consumes "observations updated" events and drops the
// cached artifacts the update makes stale.
type InvalidationHandler struct {
	topic  string
	engine *Engine
	l      *applogger.Logger
}

func NewInvalidationHandler(topic string, engine *Engine, l *applogger.Logger) *InvalidationHandler {
	return &InvalidationHandler{topic: topic, engine: engine, l: l}
}

func (h *InvalidationHandler) Topic() string { return h.topic }

// incoming message schema: {symbol}
func (h *InvalidationHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode invalidation event: %w", err)
	}
	symbol := strings.ToUpper(strings.TrimSpace(m.Symbol))
	if symbol == "" {
		return fmt.Errorf("invalidation event missing symbol")
	}

	removed := h.engine.Refresh(ctx, symbol)
	if h.l != nil {
		h.l.Debug("invalidation event handled",
			applogger.String("symbol", symbol),
			applogger.Int("removed", removed))
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*InvalidationHandler)(nil)
