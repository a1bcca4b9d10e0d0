package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"
)

// PredictionsEchoHandler exposes the forecasting pipeline over HTTP.
type PredictionsEchoHandler struct {
	logger    *xlogger.Logger
	trainer   domsvc.Trainer
	predictor domsvc.Predictor
	news      domsvc.NewsProvider
	source    domrepo.MarketDataSource
	watchlist []string
}

func NewPredictionsEchoHandler(
	logger *xlogger.Logger,
	trainer domsvc.Trainer,
	predictor domsvc.Predictor,
	news domsvc.NewsProvider,
	source domrepo.MarketDataSource,
	watchlist []string,
) *PredictionsEchoHandler {
	return &PredictionsEchoHandler{
		logger:    logger,
		trainer:   trainer,
		predictor: predictor,
		news:      news,
		source:    source,
		watchlist: watchlist,
	}
}

func (h *PredictionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predict", h.Predict)
	g.GET("/price", h.Price)
	g.GET("/analysis", h.Analysis)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/news", h.News)
	g.GET("/news/summary", h.NewsSummary)
	g.POST("/train", h.Train)
}

func (h *PredictionsEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := domrepo.NormalizeSymbol(req.Symbol)

	res, err := h.predictor.Predict(c.Request().Context(), symbol, req.Hours)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) Price(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := domrepo.NormalizeSymbol(req.Symbol)

	res, err := h.source.GetTicker24h(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("ticker fetch error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) Analysis(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := domrepo.NormalizeSymbol(req.Symbol)

	res, err := h.predictor.Analyze(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("analysis usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) Sentiment(c echo.Context) error {
	res, err := h.predictor.MarketSentiment(c.Request().Context(), h.watchlist)
	if err != nil {
		h.logger.Error("sentiment usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.news.LatestNews(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("news fetch error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) NewsSummary(c echo.Context) error {
	res, err := h.news.MarketSummary(c.Request().Context())
	if err != nil {
		h.logger.Error("news summary error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictionsEchoHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := domrepo.NormalizeSymbol(req.Symbol)

	res, err := h.trainer.Train(c.Request().Context(), symbol, req.Force)
	if err != nil {
		h.logger.Error("train usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// pipelineError maps domain sentinels onto HTTP statuses.
func (h *PredictionsEchoHandler) pipelineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrDataUnavailable),
		errors.Is(err, models.ErrInsufficientData):
		return xhttp.NotFoundResponse(c, err.Error())
	case errors.Is(err, models.ErrModelUnavailable),
		errors.Is(err, models.ErrFeatureMismatch):
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_MODEL_UNAVAILABLE", "", err.Error(), http.StatusServiceUnavailable))
	default:
		return xhttp.InternalServerErrorResponse(c)
	}
}
