package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fortuna/moneta/internal/runs"
	"github.com/fortuna/moneta/internal/store"
)

// RunManager queues and reports valuation runs.
type RunManager interface {
	Enqueue(ctx context.Context, season string, trigger store.RunTrigger) (*store.ValuationRun, error)
	Get(ctx context.Context, runID string) (*store.ValuationRun, error)
	GetStatus(ctx context.Context) (*runs.StatusSummary, error)
}

// RunHandler proxies API calls to the run service.
type RunHandler struct {
	service RunManager
	season  string
}

// NewRunHandler wires the REST layer to the run service. season is used
// when a request does not name one.
func NewRunHandler(service RunManager, season string) *RunHandler {
	return &RunHandler{service: service, season: season}
}

type apiRunRequest struct {
	Season string `json:"season"`
}

// HandleRunRequest handles POST /api/v1/runs
func (h *RunHandler) HandleRunRequest(w http.ResponseWriter, r *http.Request) {
	var req apiRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Season == "" {
		req.Season = h.season
	}

	run, err := h.service.Enqueue(r.Context(), req.Season, store.RunTriggerManual)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runs.ErrInvalidSeason) {
			status = http.StatusBadRequest
		}
		respondError(w, status, "Failed to queue valuation run", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"run": runPayload(run),
	})
}

// HandleRunStatus handles GET /api/v1/runs
func (h *RunHandler) HandleRunStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch status", err)
		return
	}

	respondJSON(w, http.StatusOK, buildStatusPayload(summary))
}

// HandleGetRun handles GET /api/v1/runs/{runID}
func (h *RunHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.Get(r.Context(), mux.Vars(r)["runID"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch run", err)
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "Run not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"run": runPayload(run)})
}

func buildStatusPayload(summary *runs.StatusSummary) map[string]interface{} {
	response := map[string]interface{}{
		"status":  "idle",
		"message": "No active runs",
	}

	if summary.ActiveRun != nil {
		response["status"] = summary.ActiveRun.Status
		if summary.ActiveRun.StatusMessage.Valid {
			response["message"] = summary.ActiveRun.StatusMessage.String
		}
		response["active_run"] = runPayload(summary.ActiveRun)
	}

	history := make([]map[string]interface{}, 0, len(summary.History))
	for _, run := range summary.History {
		history = append(history, runPayload(run))
	}

	response["history"] = history
	return response
}

func runPayload(run *store.ValuationRun) map[string]interface{} {
	if run == nil {
		return nil
	}

	payload := map[string]interface{}{
		"run_id":     run.RunID,
		"season":     run.Season,
		"trigger":    run.Trigger,
		"status":     run.Status,
		"created_at": run.CreatedAt,
		"updated_at": run.UpdatedAt,
		"counts": store.RunCounts{
			InputRows:           run.InputRows,
			JoinedRows:          run.JoinedRows,
			ValuedRows:          run.ValuedRows,
			UnresolvedOpponents: run.UnresolvedOpponents,
			PlayersValued:       run.PlayersValued,
			UnmatchedSalary:     run.UnmatchedSalary,
		},
	}

	if run.StatusMessage.Valid {
		payload["status_message"] = run.StatusMessage.String
	}
	if run.LastError.Valid {
		payload["last_error"] = run.LastError.String
	}
	if run.StartedAt.Valid {
		payload["started_at"] = run.StartedAt.Time
	}
	if run.CompletedAt.Valid {
		payload["completed_at"] = run.CompletedAt.Time
	}

	return payload
}
