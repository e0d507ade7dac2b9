package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/engine"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/history"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// CompareHandler handles comparison API endpoints. It holds two engine
// instances: the narrative one calls the model, the numeric one never does,
// so the request flag picks between them without reconfiguring anything.
type CompareHandler struct {
	numeric   *engine.Comparator
	narrative *engine.Comparator
	store     contracts.RunStore
	logger    *logger.Logger
}

// NewCompareHandler creates a new compare handler. narrative may be nil when
// no model credentials are configured; store may be nil when run history is
// disabled.
func NewCompareHandler(numeric, narrative *engine.Comparator, store contracts.RunStore, log *logger.Logger) *CompareHandler {
	return &CompareHandler{
		numeric:   numeric,
		narrative: narrative,
		store:     store,
		logger:    log,
	}
}

// CompareRequest represents a comparison request
type CompareRequest struct {
	Records   []contracts.QuotationRecord `json:"records"`
	Narrative bool                        `json:"narrative"`
}

// Compare scores a batch of quotation records
// POST /api/v1/compare
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, "No records to compare")
		return
	}

	if q := r.URL.Query().Get("narrative"); q != "" {
		req.Narrative = q == "true"
	}

	comparator := h.numeric
	if req.Narrative && h.narrative != nil {
		comparator = h.narrative
	}

	result, err := comparator.Compare(ctx, req.Records)
	if err != nil {
		var currencyErr *contracts.UnknownCurrencyError
		if errors.As(err, &currencyErr) {
			respondError(w, http.StatusUnprocessableEntity, currencyErr.Error())
			return
		}
		h.logger.WithError(err).Error("Comparison failed")
		respondError(w, http.StatusInternalServerError, "Comparison failed")
		return
	}

	if h.store != nil {
		if err := h.store.Save(ctx, history.NewRun(result)); err != nil {
			h.logger.WithError(err).WithField("run_id", result.RunID).Warn("Failed to persist run")
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
