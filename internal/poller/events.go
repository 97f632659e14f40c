package poller

import (
	"context"

	apperrors "shortlist-monitor/internal/errors"
	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/timeline"

	"github.com/google/uuid"
)

// Source fetches job reports from wherever the backend exposes them.
type Source interface {
	GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error)
	GetResults(ctx context.Context, jobID string) ([]models.Candidate, error)
}

// Update is published for every accepted status report.
type Update struct {
	SessionID uuid.UUID        `json:"session_id"`
	JobID     string           `json:"job_id"`
	Snapshot  models.JobStatus `json:"snapshot"`
	Timeline  []timeline.Step  `json:"timeline"`
}

// Results is published at most once per session.
type Results struct {
	SessionID  uuid.UUID          `json:"session_id"`
	JobID      string             `json:"job_id"`
	Candidates []models.Candidate `json:"candidates"`
}

type Stage string

const (
	StageStatus  Stage = "status"
	StageResults Stage = "results"
)

// Failure reports a failed fetch. It never ends the session.
type Failure struct {
	SessionID uuid.UUID      `json:"session_id"`
	JobID     string         `json:"job_id"`
	Stage     Stage          `json:"stage"`
	Kind      apperrors.Kind `json:"kind"`
	Err       error          `json:"-"`
}

func (f Failure) Error() string {
	return string(f.Stage) + " fetch for job " + f.JobID + " failed: " + f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Listener receives everything the coordinator publishes. Calls are made
// while the coordinator holds its session lock, so a listener must not call
// Activate or Deactivate from inside a callback.
type Listener interface {
	OnUpdate(Update)
	OnResults(Results)
	OnFailure(Failure)
}

// Listeners fans out to every listener in order.
type Listeners []Listener

func (ls Listeners) OnUpdate(u Update) {
	for _, l := range ls {
		l.OnUpdate(u)
	}
}

func (ls Listeners) OnResults(r Results) {
	for _, l := range ls {
		l.OnResults(r)
	}
}

func (ls Listeners) OnFailure(f Failure) {
	for _, l := range ls {
		l.OnFailure(f)
	}
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Update  func(Update)
	Results func(Results)
	Failure func(Failure)
}

func (l ListenerFuncs) OnUpdate(u Update) {
	if l.Update != nil {
		l.Update(u)
	}
}

func (l ListenerFuncs) OnResults(r Results) {
	if l.Results != nil {
		l.Results(r)
	}
}

func (l ListenerFuncs) OnFailure(f Failure) {
	if l.Failure != nil {
		l.Failure(f)
	}
}
