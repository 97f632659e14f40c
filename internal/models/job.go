package models

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "shortlist-monitor/internal/errors"
)

type Status string

// statuses reported by the shortlisting backend, in the order a job moves through them
const (
	StatusPending    Status = "pending"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusPhase1     Status = "phase1"
	StatusPhase2     Status = "phase2"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// JobStatus is a point in time report of a job and its progress counters.
type JobStatus struct {
	JobID string `json:"job_id"`

	JobTitle string `json:"job_title,omitempty"`

	Status Status `json:"status"`

	CreatedAt time.Time `json:"created_at"`

	TotalResumes int `json:"total_resumes"`

	ResumesInReview int `json:"resumes_in_review"`

	Phase1Completed int `json:"phase1_completed"`

	Phase2Completed int `json:"phase2_completed"`

	ShortlistedCount int `json:"shortlisted_count"`
}

type Candidate struct {
	Name string `json:"name"`

	Confidence float64 `json:"confidence"`

	Email *string `json:"email,omitempty"`

	CVPath string `json:"cv_path"`

	Skills []string `json:"skills"`

	Experience *int `json:"experience,omitempty"`

	CoverLetter string `json:"cover_letter"`
}

// JobSummary is one entry of the job list endpoint.
type JobSummary struct {
	JobID string `json:"job_id"`

	JobTitle string `json:"job_title,omitempty"`

	Status Status `json:"status"`

	TotalResumes int `json:"total_resumes"`

	ShortlistedCount int `json:"shortlisted_count"`

	CreatedAt time.Time `json:"created_at"`
}

// JobListResponse is the body of the job list endpoint.
type JobListResponse struct {
	Jobs []JobSummary `json:"jobs"`
}

// ShortlistResponse is the body of the shortlisted candidates endpoint.
type ShortlistResponse struct {
	JobID string `json:"job_id,omitempty"`

	Shortlisted []Candidate `json:"shortlisted"`
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUploaded, StatusProcessing, StatusPhase1, StatusPhase2, StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

// Rank orders statuses by how far a job has advanced.
// uploaded and processing share a rank, error has none (-1).
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusUploaded, StatusProcessing:
		return 1
	case StatusPhase1:
		return 2
	case StatusPhase2:
		return 3
	case StatusCompleted:
		return 4
	default:
		return -1
	}
}

func ParseStatus(s string) (Status, error) {
	status := Status(s)

	if !status.Valid() {
		return "", fmt.Errorf("unknown job status %q: %w", s, apperrors.ErrMalformedSnapshot)
	}

	return status, nil
}

// Terminal reports whether the snapshot is the one the shortlist should be fetched for.
func (j JobStatus) Terminal() bool {
	return j.Status == StatusCompleted && j.ShortlistedCount > 0
}

// timestampLayouts are tried in order. The backend writes naive ISO 8601
// timestamps (no zone), which are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp reads a created_at value. ok is false for anything no
// layout accepts.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

func timestampOrZero(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}

	t, _ := ParseTimestamp(*s)
	return t
}

// DecodeJobStatus parses a status report. Missing counters default to zero,
// a missing or unknown status is malformed. An unreadable created_at is
// left zero.
func DecodeJobStatus(data []byte) (*JobStatus, error) {

	var raw struct {
		JobStatus
		Status    *string `json:"status"`
		CreatedAt *string `json:"created_at"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode job status: %v: %w", err, apperrors.ErrMalformedSnapshot)
	}

	if raw.Status == nil {
		return nil, fmt.Errorf("job status report has no status field: %w", apperrors.ErrMalformedSnapshot)
	}

	status, err := ParseStatus(*raw.Status)

	if err != nil {
		return nil, err
	}

	snapshot := raw.JobStatus
	snapshot.Status = status
	snapshot.CreatedAt = timestampOrZero(raw.CreatedAt)

	return &snapshot, nil
}

// DecodeShortlist parses the shortlisted candidates body.
func DecodeShortlist(data []byte) ([]Candidate, error) {

	var resp ShortlistResponse

	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode shortlist: %v: %w", err, apperrors.ErrMalformedSnapshot)
	}

	if resp.Shortlisted == nil {
		return []Candidate{}, nil
	}

	return resp.Shortlisted, nil
}

// DecodeJobList parses the job list body. The list is informational, so
// statuses are kept as reported even when unknown.
func DecodeJobList(data []byte) ([]JobSummary, error) {

	var resp struct {
		Jobs []struct {
			JobSummary
			CreatedAt *string `json:"created_at"`
		} `json:"jobs"`
	}

	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode job list: %v: %w", err, apperrors.ErrMalformedSnapshot)
	}

	jobs := make([]JobSummary, 0, len(resp.Jobs))

	for _, raw := range resp.Jobs {
		job := raw.JobSummary
		job.CreatedAt = timestampOrZero(raw.CreatedAt)
		jobs = append(jobs, job)
	}

	return jobs, nil
}
