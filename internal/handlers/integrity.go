package handlers

import (
	"net/http"
	"strconv"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IntegrityHandler handles Merkle tree verification endpoints
type IntegrityHandler struct {
	svc    *services.MerkleService
	logger *zap.SugaredLogger
}

// NewIntegrityHandler creates a new integrity handler
func NewIntegrityHandler(svc *services.MerkleService, logger *zap.SugaredLogger) *IntegrityHandler {
	return &IntegrityHandler{svc: svc, logger: logger}
}

// GetRoot handles GET /integrity/root
func (h *IntegrityHandler) GetRoot(w http.ResponseWriter, r *http.Request) {
	root := h.svc.GetRoot()
	w.Header().Set("X-Merkle-Root", root)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"root":       root,
		"leaf_count": h.svc.GetLeafCount(),
		"timestamp":  h.svc.GetLastBuildTime(),
	})
}

// GetProof handles GET /integrity/proof/{index}
func (h *IntegrityHandler) GetProof(w http.ResponseWriter, r *http.Request) {
	indexStr := chi.URLParam(r, "index")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		respondServiceError(w, h.logger, apperrors.NewValidationError("index", "must be an integer"))
		return
	}

	proof, err := h.svc.GetProof(index)
	if err != nil {
		respondServiceError(w, h.logger, apperrors.NewNotFoundError("proof", indexStr))
		return
	}

	respondJSON(w, http.StatusOK, proof)
}

// Verify handles POST /integrity/verify
func (h *IntegrityHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LeafHash == "" {
		respondServiceError(w, h.logger, apperrors.Required("leaf_hash"))
		return
	}
	if req.Root == "" {
		req.Root = h.svc.GetRoot()
	}

	respondJSON(w, http.StatusOK, models.VerifyResult{
		Valid: services.VerifyProof(req.LeafHash, req.Proof, req.Root),
	})
}
