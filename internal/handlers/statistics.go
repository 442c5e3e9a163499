package handlers

import (
	"context"
	"net/http"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"go.uber.org/zap"
)

// StatisticsHandler serves the dashboard aggregations
type StatisticsHandler struct {
	svc    *services.StatisticsService
	logger *zap.SugaredLogger
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(svc *services.StatisticsService, logger *zap.SugaredLogger) *StatisticsHandler {
	return &StatisticsHandler{svc: svc, logger: logger}
}

// Overview handles GET /statistics/overview
func (h *StatisticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	serveStatistic(w, r, h.logger, h.svc.Overview)
}

// Types handles GET /statistics/types
func (h *StatisticsHandler) Types(w http.ResponseWriter, r *http.Request) {
	serveStatistic(w, r, h.logger, h.svc.Types)
}

// MonthlyTrends handles GET /statistics/monthly-trends
func (h *StatisticsHandler) MonthlyTrends(w http.ResponseWriter, r *http.Request) {
	serveStatistic(w, r, h.logger, h.svc.MonthlyTrends)
}

// Areas handles GET /statistics/areas
func (h *StatisticsHandler) Areas(w http.ResponseWriter, r *http.Request) {
	serveStatistic(w, r, h.logger, h.svc.Areas)
}

func serveStatistic[T any](w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger,
	fn func(context.Context, models.TimeRange) (T, error)) {
	result, err := fn(r.Context(), models.TimeRange(r.URL.Query().Get("timeRange")))
	if err != nil {
		respondServiceError(w, logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
