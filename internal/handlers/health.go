package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"go.uber.org/zap"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

var startTime = time.Now()

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints
type HealthHandler struct {
	db     Pinger
	merkle *services.MerkleService
	logger *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler. merkle may be nil.
func NewHealthHandler(db Pinger, merkle *services.MerkleService, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{db: db, merkle: merkle, logger: logger}
}

// Check handles GET /health (liveness)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /health/ready (readiness)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	dbStatus := "connected"
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warnw("Readiness check failed", "error", err)
		dbStatus = "disconnected"
		respondJSON(w, http.StatusServiceUnavailable, models.HealthStatus{
			Status:   "not ready",
			Version:  Version,
			Database: dbStatus,
		})
		return
	}

	status := models.HealthStatus{
		Status:   "ready",
		Version:  Version,
		Uptime:   time.Since(startTime).String(),
		Database: dbStatus,
	}
	if h.merkle != nil {
		status.MerkleRoot = h.merkle.GetRoot()
	}
	respondJSON(w, http.StatusOK, status)
}
