package handlers

import (
	"net/http"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"github.com/aawaaz/complaint-desk/internal/dictionary"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DictionaryHandler exposes the current dictionary codes for form pickers
type DictionaryHandler struct {
	registry *dictionary.Registry
	logger   *zap.SugaredLogger
}

// NewDictionaryHandler creates a new dictionary handler
func NewDictionaryHandler(registry *dictionary.Registry, logger *zap.SugaredLogger) *DictionaryHandler {
	return &DictionaryHandler{registry: registry, logger: logger}
}

// List handles GET /system/dict/{kind}
func (h *DictionaryHandler) List(w http.ResponseWriter, r *http.Request) {
	kind := dictionary.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		respondServiceError(w, h.logger, apperrors.NewNotFoundError("dictionary", string(kind)))
		return
	}
	respondJSON(w, http.StatusOK, h.registry.Entries(kind))
}
