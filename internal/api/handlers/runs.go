package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/contracts"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/internal/history"
	"github.com/Carthaginiankid/LLM-Structure-data-extraction/pkg/logger"
)

// RunsHandler handles run history API endpoints
type RunsHandler struct {
	store  contracts.RunStore
	logger *logger.Logger
}

// NewRunsHandler creates a new runs handler. store may be nil when run
// history is disabled; the endpoints then answer 503.
func NewRunsHandler(store contracts.RunStore, log *logger.Logger) *RunsHandler {
	return &RunsHandler{
		store:  store,
		logger: log,
	}
}

// ListResponse represents a run listing
type ListResponse struct {
	Runs  []*contracts.ComparisonRun `json:"runs"`
	Count int                        `json:"count"`
}

// List returns recent runs, newest first
// GET /api/v1/runs?limit=20
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Run history not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit (expected a positive integer)")
			return
		}
		limit = n
	}

	runs, err := h.store.List(ctx, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, ListResponse{
		Runs:  runs,
		Count: len(runs),
	})
}

// Get returns one run with its full result payload
// GET /api/v1/runs/{id}
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Run history not configured")
		return
	}

	id := mux.Vars(r)["id"]

	run, err := h.store.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("run_id", id).Error("Failed to get run")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
