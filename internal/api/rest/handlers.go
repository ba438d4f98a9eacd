package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/service"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/teams"
	"github.com/fortuna/moneta/internal/valuation"
)

// ValuationReader serves the latest valuation snapshot.
type ValuationReader interface {
	PlayerValues(ctx context.Context, playerID int64) (*service.PlayerValueReport, error)
	GameValues(ctx context.Context, gameID string) ([]valuation.PlayerGameValue, error)
	Features(ctx context.Context, filter store.FeatureFilter) ([]efficiency.PlayerFeature, error)
}

// TeamSource lists the league's teams. GetByAbbreviation returns nil, nil
// for an unknown team.
type TeamSource interface {
	GetAll(ctx context.Context) ([]*store.Team, error)
	GetByAbbreviation(ctx context.Context, abbr string) (*store.Team, error)
}

// SchedulerStatus reports the daily scheduler's state.
type SchedulerStatus interface {
	GetStatus() map[string]interface{}
}

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	valuations ValuationReader
	teams      TeamSource
	health     HealthChecker
	scheduler  SchedulerStatus
}

// NewHandler creates a new handler. teamSource, health and scheduler may be nil.
func NewHandler(valuations ValuationReader, teamSource TeamSource, health HealthChecker, scheduler SchedulerStatus) *Handler {
	return &Handler{
		valuations: valuations,
		teams:      teamSource,
		health:     health,
		scheduler:  scheduler,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "moneta",
		"version": "1.0.0",
	}

	if h.health != nil {
		if err := h.health.HealthCheck(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			response["status"] = "unhealthy"
			response["details"] = err.Error()
		}
	}

	respondJSON(w, status, response)
}

// GetPlayerValues returns a player's per-game values with a summary
func (h *Handler) GetPlayerValues(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.ParseInt(mux.Vars(r)["playerID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	report, err := h.valuations.PlayerValues(r.Context(), playerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player values", err)
		return
	}
	if report == nil {
		respondError(w, http.StatusNotFound, "No values for player", nil)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetGameValues returns every player's value in one game
func (h *Handler) GetGameValues(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]

	values, err := h.valuations.GameValues(r.Context(), gameID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch game values", err)
		return
	}
	if len(values) == 0 {
		respondError(w, http.StatusNotFound, "No values for game", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"game_id": gameID,
		"values":  values,
	})
}

// GetFeatures returns the player efficiency table, optionally filtered by
// team and position
func (h *Handler) GetFeatures(w http.ResponseWriter, r *http.Request) {
	filter := store.FeatureFilter{
		Position: strings.TrimSpace(r.URL.Query().Get("position")),
	}
	if team := strings.TrimSpace(r.URL.Query().Get("team")); team != "" {
		filter.Team = teams.NormalizeAbbreviation(team)
	}

	h.writeFeatures(w, r, filter)
}

// GetTeamFeatures returns one team's efficiency table
func (h *Handler) GetTeamFeatures(w http.ResponseWriter, r *http.Request) {
	abbr := mux.Vars(r)["abbr"]
	if h.teams == nil {
		team, ok := teams.ByAbbreviation(abbr)
		if !ok {
			respondError(w, http.StatusNotFound, "Unknown team", nil)
			return
		}
		h.writeFeatures(w, r, store.FeatureFilter{Team: team.Abbreviation})
		return
	}

	team, err := h.teams.GetByAbbreviation(r.Context(), abbr)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch team", err)
		return
	}
	if team == nil {
		respondError(w, http.StatusNotFound, "Unknown team", nil)
		return
	}

	h.writeFeatures(w, r, store.FeatureFilter{Team: team.Abbreviation})
}

func (h *Handler) writeFeatures(w http.ResponseWriter, r *http.Request, filter store.FeatureFilter) {
	features, err := h.valuations.Features(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch features", err)
		return
	}
	if features == nil {
		features = []efficiency.PlayerFeature{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"features": features,
		"count":    len(features),
	})
}

// GetTeams returns all league teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	if h.teams == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams.All()})
		return
	}

	list, err := h.teams.GetAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": list})
}

// GetSchedulerStatus reports the daily scheduler's configuration and last run
func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "Scheduler not running", nil)
		return
	}

	respondJSON(w, http.StatusOK, h.scheduler.GetStatus())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
