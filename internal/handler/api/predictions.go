package api

import (
	"errors"
	"net/http"
	"time"

	models "Coinsight/internal/domain/models"
	"Coinsight/internal/service/ratelimit"
	"Coinsight/internal/usecase"
	xhttp "Coinsight/pkg/http"
	xlogger "Coinsight/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Per-client throttle for the /api group; a cache miss costs a store
// read plus a forward pass.
const (
	rateCapacity  = 20
	rateRefillSec = 10
)

// PredictionsHandler implements Echo-based HTTP handlers for the
// prediction, ensemble, temporal and risk endpoints.
type PredictionsHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.Predictor
	limiter   *ratelimit.Limiter
}

func NewPredictionsHandler(logger *xlogger.Logger, predictor *usecase.Predictor) *PredictionsHandler {
	return &PredictionsHandler{
		logger:    logger,
		predictor: predictor,
		limiter:   ratelimit.New(),
	}
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.Use(h.throttle)
	g.POST("/predict", h.Predict)
	g.POST("/predict/ensemble", h.PredictEnsemble)
	g.GET("/predict/temporal/:symbol", h.Temporal)
	g.POST("/risk-score", h.RiskScore)
	g.GET("/models/:symbol", h.ModelInfo)
	g.DELETE("/models/:symbol/cache", h.InvalidateModel)
}

func (h *PredictionsHandler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	}
	if err := h.predictor.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		status["status"] = "degraded"
		status["store"] = err.Error()
	}
	return xhttp.SuccessResponse(c, status)
}

func (h *PredictionsHandler) Predict(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predictor.Predict(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsHandler) PredictEnsemble(c echo.Context) error {
	req := &models.EnsemblePredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predictor.PredictEnsemble(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("ensemble usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsHandler) Temporal(c echo.Context) error {
	symbol := c.Param("symbol")
	res, err := h.predictor.Temporal(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("temporal usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsHandler) RiskScore(c echo.Context) error {
	req := &models.RiskScoreRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.predictor.RiskScore(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("risk usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsHandler) ModelInfo(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.predictor.ModelInfo(c.Param("symbol")))
}

func (h *PredictionsHandler) InvalidateModel(c echo.Context) error {
	symbol := c.Param("symbol")
	if err := h.predictor.Invalidate(c.Request().Context(), symbol); err != nil {
		h.logger.Error("invalidate error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, domainError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"symbol": symbol, "status": "invalidated"})
}

func (h *PredictionsHandler) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP(), rateCapacity, rateRefillSec) {
			return c.JSON(http.StatusTooManyRequests, xhttp.APIResponse{
				Status:  http.StatusTooManyRequests,
				Message: "Too Many Requests",
			})
		}
		return next(c)
	}
}

// domainError maps domain error types onto HTTP application errors.
func domainError(err error) error {
	var (
		insufficient *models.InsufficientDataError
		unavailable  *models.ModelUnavailableError
		timeframe    *models.InvalidTimeframeError
		symbol       *models.UnsupportedSymbolError
		method       *models.UnknownMethodError
	)
	switch {
	case errors.As(err, &insufficient):
		return xhttp.BadRequestError(insufficient.Error()).WithError(err)
	case errors.As(err, &timeframe):
		return xhttp.BadRequestError(timeframe.Error()).WithError(err)
	case errors.As(err, &symbol):
		return xhttp.BadRequestError(symbol.Error()).WithError(err)
	case errors.As(err, &method):
		return xhttp.BadRequestError(method.Error()).WithError(err)
	case errors.As(err, &unavailable):
		return xhttp.NotFoundError(unavailable.Error()).WithError(err)
	default:
		return err
	}
}
