package api

import (
	"context"
	"errors"
	"strings"
	"time"

	models "StockLens/internal/domain/models"
	"StockLens/internal/service/ratelimit"
	"StockLens/internal/services/analytics"
	"StockLens/internal/usecase"
	xhttp "StockLens/pkg/http"
	xlogger "StockLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Expensive routes admit a small burst and refill slowly; the cheap ones get
// a wider bucket.
const (
	expensiveBurst  = 5
	expensiveRefill = 1.0 // tokens per second
	defaultBurst    = 30
	defaultRefill   = 10.0
)

// EngineEchoHandler exposes the analytics engine over Echo.
type EngineEchoHandler struct {
	logger  *xlogger.Logger
	engine  *usecase.Engine
	limiter *ratelimit.Limiter
	health  func(context.Context) error
}

func NewEngineEchoHandler(logger *xlogger.Logger, engine *usecase.Engine, limiter *ratelimit.Limiter) *EngineEchoHandler {
	return &EngineEchoHandler{logger: logger, engine: engine, limiter: limiter}
}

// SetHealthCheck wires a storage liveness probe into /healthz.
func (h *EngineEchoHandler) SetHealthCheck(fn func(context.Context) error) { h.health = fn }

func (h *EngineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/symbols", h.Symbols)
	g.GET("/series", h.Series)
	g.GET("/summary", h.Summary)
	g.GET("/compare", h.Compare)
	g.GET("/insights", h.Insights)
	g.GET("/predict", h.Predict)
	g.POST("/refresh", h.Refresh)
	e.GET("/healthz", h.Healthz)
}

func (h *EngineEchoHandler) Symbols(c echo.Context) error {
	if !h.allow(c, "symbols", defaultBurst, defaultRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("symbols rate limit exceeded"))
	}

	res, err := h.engine.ListSymbols(c.Request().Context())
	if err != nil {
		h.logger.Error("symbols usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Series(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "series", defaultBurst, defaultRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("series rate limit exceeded"))
	}
	from, to, aerr := resolveRange(req.From, req.To, req.Days)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	res, err := h.engine.DerivedSeries(c.Request().Context(), normalizeSymbol(req.Symbol), from, to)
	if err != nil {
		h.logger.Error("series usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "summary", defaultBurst, defaultRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("summary rate limit exceeded"))
	}

	res, err := h.engine.Summary(c.Request().Context(), normalizeSymbol(req.Symbol))
	if err != nil {
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Compare(c echo.Context) error {
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "compare", expensiveBurst, expensiveRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("compare rate limit exceeded"))
	}
	to := analytics.CanonicalDate(time.Now())
	from := to.AddDate(0, 0, -req.Days)

	res, err := h.engine.Compare(c.Request().Context(), normalizeSymbol(req.Symbol1), normalizeSymbol(req.Symbol2), from, to)
	if err != nil {
		h.logger.Error("compare usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Insights(c echo.Context) error {
	req := &models.InsightsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "insights", defaultBurst, defaultRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("insights rate limit exceeded"))
	}

	res, err := h.engine.Insights(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("insights usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.allow(c, "predict", expensiveBurst, expensiveRefill) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("predict rate limit exceeded"))
	}

	res, err := h.engine.Predict(c.Request().Context(), normalizeSymbol(req.Symbol))
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Refresh(c echo.Context) error {
	req := &models.RefreshRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	removed := h.engine.Refresh(c.Request().Context(), normalizeSymbol(req.Symbol))
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbol":  normalizeSymbol(req.Symbol),
		"removed": removed,
	})
}

func (h *EngineEchoHandler) Healthz(c echo.Context) error {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			return xhttp.AppErrorResponse(c, xhttp.UnavailableError("storage unreachable").WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *EngineEchoHandler) allow(c echo.Context, route string, burst, refill float64) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow(route+":"+c.RealIP(), burst, refill)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// resolveRange prefers an explicit from/to pair over the trailing-days form.
func resolveRange(fromStr, toStr string, days int) (time.Time, time.Time, *xhttp.AppError) {
	to := analytics.CanonicalDate(time.Now())
	if toStr != "" {
		t, ok := xhttp.ParseDate(toStr)
		if !ok {
			return time.Time{}, time.Time{}, xhttp.BadRequestErrorf("invalid to date: %q", toStr)
		}
		to = analytics.CanonicalDate(t)
	}
	from := to.AddDate(0, 0, -days)
	if fromStr != "" {
		t, ok := xhttp.ParseDate(fromStr)
		if !ok {
			return time.Time{}, time.Time{}, xhttp.BadRequestErrorf("invalid from date: %q", fromStr)
		}
		from = analytics.CanonicalDate(t)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, xhttp.BadRequestError("from must not be after to")
	}
	return from, to, nil
}

// mapEngineError translates typed engine errors into transport errors.
func mapEngineError(err error) error {
	var (
		malformed    *models.MalformedInputError
		insufficient *models.InsufficientDataError
		disjoint     *models.DisjointSeriesError
		history      *models.InsufficientHistoryError
		upstream     *models.UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &malformed):
		return xhttp.UnprocessableError("ERR_MALFORMED_INPUT", malformed.Error()).WithError(err)
	case errors.As(err, &insufficient):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_DATA", insufficient.Error()).WithError(err)
	case errors.As(err, &disjoint):
		return xhttp.UnprocessableError("ERR_DISJOINT_SERIES", disjoint.Error()).WithError(err)
	case errors.As(err, &history):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", history.Error()).WithError(err)
	case errors.As(err, &upstream):
		return xhttp.UnavailableError("observation store unavailable").WithError(err)
	default:
		return err
	}
}
