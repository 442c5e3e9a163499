package handlers

import (
	"net/http"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
	"github.com/aawaaz/complaint-desk/internal/services"
	"go.uber.org/zap"
)

// FeedbackHandler handles satisfaction survey endpoints
type FeedbackHandler struct {
	svc    *services.FeedbackService
	logger *zap.SugaredLogger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(svc *services.FeedbackService, logger *zap.SugaredLogger) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, logger: logger}
}

// List handles GET /system/complaintFeedback/list
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := query.FeedbackFromValues(r.URL.Query())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Submit handles POST /system/complaintFeedback/add
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackSubmission
	if !decodeBody(w, r, &req) {
		return
	}

	fb, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, fb)
}

// DeleteBatch handles DELETE /system/complaintFeedback/batch?ids=
func (h *FeedbackHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteBatch(r.Context(), idsParam(r.URL.Query()))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
