package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	apperrors "shortlist-monitor/internal/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type APIHandler struct {
	ctx        context.Context
	controller Controller
	state      *State

	// mu keeps the state's session in step with the controller's
	mu sync.Mutex
}

// Controller starts and stops watching a job.
type Controller interface {
	Activate(ctx context.Context, jobID string) (uuid.UUID, error)
	Deactivate()
}

type watchResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	JobID     string    `json:"job_id"`
}

// NewAPIHandler ties sessions started over HTTP to ctx rather than to the
// request that started them.
func NewAPIHandler(ctx context.Context, controller Controller, state *State) *APIHandler {
	return &APIHandler{
		ctx:        ctx,
		controller: controller,
		state:      state,
	}
}

func (h *APIHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {

	defer r.Body.Close()

	jobID := r.PathValue("jobId")

	h.mu.Lock()
	defer h.mu.Unlock()

	sessionID, err := h.controller.Activate(h.ctx, jobID)

	if errors.Is(err, apperrors.ErrInvalidJobID) {
		http.Error(w, "Invalid job id.", http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Error().Err(err).Str("component", "api").Str("job_id", jobID).Msg("Failed to start watching job")
		http.Error(w, "An error occurred while starting to watch the job.", http.StatusInternalServerError)
		return
	}

	jobID = strings.TrimSpace(jobID)
	h.state.Begin(sessionID, jobID)

	log.Info().
		Str("component", "api").
		Str("job_id", jobID).
		Str("session_id", sessionID.String()).
		Msg("Watching job")

	writeJSON(w, http.StatusAccepted, watchResponse{SessionID: sessionID, JobID: jobID})
}

func (h *APIHandler) HandleStop(w http.ResponseWriter, r *http.Request) {

	defer r.Body.Close()

	h.mu.Lock()
	h.controller.Deactivate()
	h.state.Clear()
	h.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {

	defer r.Body.Close()

	view, ok := h.state.View()

	if !ok {
		http.Error(w, "No job is being watched.", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func writeJSON(w http.ResponseWriter, code int, v any) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Str("component", "api").Msg("Failed to encode response")
	}
}
