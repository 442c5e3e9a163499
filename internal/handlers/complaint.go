// Package handlers contains HTTP request handlers for the complaint desk API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/middleware"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/query"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ComplaintHandler handles complaint and resolve-history endpoints
type ComplaintHandler struct {
	complaintSvc *services.ComplaintService
	historySvc   *services.HistoryService
	logger       *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(cs *services.ComplaintService, hs *services.HistoryService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: cs, historySvc: hs, logger: logger}
}

// List handles GET /system/complaint/list and GET /complaints
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := query.FromValues(r.URL.Query())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	page, err := h.complaintSvc.List(r.Context(), q)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// Create handles POST /system/complaint/add and POST /complaints
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateComplaintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	complaint, err := h.complaintSvc.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, complaint)
}

// Get handles GET /system/complaint/get?id= and GET /complaints/{id}
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	complaint, err := h.complaintSvc.Get(r.Context(), pathOrQueryID(r))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Update handles PUT /system/complaint/edit (id in body) and PUT /complaints/{id}
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateComplaintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := pathOrQueryID(r)
	if id == "" {
		id = req.ID
	}

	complaint, err := h.complaintSvc.Update(r.Context(), id, req, middleware.Operator(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Delete handles DELETE /complaints/{id}
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.complaintSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, models.DeleteResult{Deleted: 1})
}

// DeleteBatch handles DELETE /system/complaint/delete?ids=
func (h *ComplaintHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	res, err := h.complaintSvc.DeleteBatch(r.Context(), idsParam(r.URL.Query()))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Records handles GET /system/complaint/records?ticketNo=
func (h *ComplaintHandler) Records(w http.ResponseWriter, r *http.Request) {
	entries, err := h.historySvc.List(r.Context(), r.URL.Query().Get("ticketNo"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}

// AddRecord handles POST /system/complaint/records/add
func (h *ComplaintHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	entry, err := h.historySvc.Add(r.Context(), req, middleware.Operator(r.Context()))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"data": entry})
}

// pathOrQueryID reads {id} from the route, falling back to ?id=
func pathOrQueryID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}

// idsParam accepts ids=a,b, repeated ids and ids[]
func idsParam(v url.Values) []string {
	var ids []string
	for _, key := range []string{"ids", "ids[]"} {
		for _, raw := range v[key] {
			ids = append(ids, strings.Split(raw, ",")...)
		}
	}
	return ids
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{
			Error: "invalid request body",
			Code:  apperrors.CodeValidation,
			Field: "body",
		})
		return false
	}
	return true
}

// errorBody carries enough of each kind for clients to rebuild it
type errorBody struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Field    string `json:"field,omitempty"`
	Resource string `json:"resource,omitempty"`
	ID       string `json:"id,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message, Code: apperrors.CodeInternal})
}

// respondServiceError maps an error kind onto its status and wire code.
// Anything unrecognised is logged and reported as a 500 without detail.
func respondServiceError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	var (
		ve *apperrors.ValidationError
		nf *apperrors.NotFoundError
		it *apperrors.InvalidTransitionError
	)
	body := errorBody{Code: apperrors.Code(err)}
	var status int
	switch body.Code {
	case apperrors.CodeValidation:
		errors.As(err, &ve)
		status, body.Error, body.Field = http.StatusBadRequest, ve.Message, ve.Field
	case apperrors.CodeNotFound:
		errors.As(err, &nf)
		status, body.Error, body.Resource, body.ID = http.StatusNotFound, nf.Error(), nf.Resource, nf.ID
	case apperrors.CodeInvalidTransition:
		errors.As(err, &it)
		status, body.Error, body.From, body.To = http.StatusConflict, it.Error(), it.From, it.To
	default:
		logger.Errorw("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, status, body)
}
