package api

import (
	"sync"
	"time"

	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/poller"

	"github.com/google/uuid"
)

// View is what GET /jobs/current returns for the active session.
type View struct {
	SessionID   uuid.UUID          `json:"session_id"`
	JobID       string             `json:"job_id"`
	Update      *poller.Update     `json:"update,omitempty"`
	Results     []models.Candidate `json:"results,omitempty"`
	LastFailure *FailureView       `json:"last_failure,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type FailureView struct {
	Stage poller.Stage `json:"stage"`
	Kind  string       `json:"kind"`
	Error string       `json:"error"`
}

// State keeps the latest published events of the current session. It is
// registered with the coordinator as a listener.
type State struct {
	mu   sync.RWMutex
	view *View
	now  func() time.Time
}

func NewState() *State {
	return &State{now: time.Now}
}

// Begin switches to sessionID. Events of that session that arrived before
// Begin are kept.
func (s *State) Begin(sessionID uuid.UUID, jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionLocked(sessionID, jobID)
}

func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = nil
}

// View returns a copy of the current view, or false when nothing is watched.
func (s *State) View() (View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view == nil {
		return View{}, false
	}

	return *s.view, true
}

func (s *State) OnUpdate(u poller.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.sessionLocked(u.SessionID, u.JobID)
	v.Update = &u
	v.LastFailure = nil
	v.UpdatedAt = s.now()
}

func (s *State) OnResults(r poller.Results) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.sessionLocked(r.SessionID, r.JobID)
	v.Results = r.Candidates
	v.UpdatedAt = s.now()
}

func (s *State) OnFailure(f poller.Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.sessionLocked(f.SessionID, f.JobID)
	v.LastFailure = &FailureView{
		Stage: f.Stage,
		Kind:  string(f.Kind),
		Error: f.Err.Error(),
	}
	v.UpdatedAt = s.now()
}

func (s *State) sessionLocked(sessionID uuid.UUID, jobID string) *View {

	if s.view == nil || s.view.SessionID != sessionID {
		s.view = &View{SessionID: sessionID, JobID: jobID, UpdatedAt: s.now()}
	}

	return s.view
}
