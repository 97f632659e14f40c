// Package timeline projects a job status report onto the ordered list of
// steps shown to whoever is watching the job.
package timeline

import (
	"fmt"
	"math"
	"time"

	"shortlist-monitor/internal/models"
)

type PhaseStatus string

const (
	Completed  PhaseStatus = "completed"
	InProgress PhaseStatus = "in-progress"
)

const (
	StepJobCreated      = "Job Created"
	StepResumesUploaded = "Resumes Uploaded"
	StepPhase1          = "Phase 1: Keyword Matching"
	StepPhase2          = "Phase 2: AI Review"
	StepShortlisted     = "Shortlisting Complete"
)

// Step is one entry of the timeline. Progress is only set while the step
// is in progress.
type Step struct {
	Name     string      `json:"name"`
	Status   PhaseStatus `json:"status"`
	Detail   string      `json:"detail,omitempty"`
	Time     *time.Time  `json:"time,omitempty"`
	Progress *float64    `json:"progress,omitempty"`
}

// Derive builds the timeline for a snapshot. Steps are appended in order and
// only when their precondition holds, so a more advanced snapshot never
// yields fewer steps. The result shares no memory with previous calls.
func Derive(job models.JobStatus) []Step {

	steps := make([]Step, 0, 5)

	created := Step{Name: StepJobCreated, Status: Completed}
	if !job.CreatedAt.IsZero() {
		t := job.CreatedAt
		created.Time = &t
	}
	steps = append(steps, created)

	if job.TotalResumes > 0 {
		steps = append(steps, Step{
			Name:   StepResumesUploaded,
			Status: Completed,
			Detail: fmt.Sprintf("%d resumes parsed and extracted", job.TotalResumes),
		})
	}

	switch job.Status {
	case models.StatusPhase1, models.StatusPhase2, models.StatusCompleted:
		steps = append(steps, phase1Step(job))
	}

	switch job.Status {
	case models.StatusPhase2, models.StatusCompleted:
		steps = append(steps, phase2Step(job))
	}

	if job.Status == models.StatusCompleted {
		steps = append(steps, Step{
			Name:   StepShortlisted,
			Status: Completed,
			Detail: fmt.Sprintf("%d candidates shortlisted", job.ShortlistedCount),
		})
	}

	return steps
}

// phase 1 counts as finished once any candidate has passed it; the backend
// reports no dedicated flag
func phase1Step(job models.JobStatus) Step {

	step := Step{
		Name:   StepPhase1,
		Detail: fmt.Sprintf("%d candidates passed", job.Phase1Completed),
	}

	if job.Phase1Completed > 0 {
		step.Status = Completed
		return step
	}

	step.Status = InProgress
	step.Progress = percent(job.Phase1Completed, job.TotalResumes)

	return step
}

func phase2Step(job models.JobStatus) Step {

	if job.Status == models.StatusCompleted {
		return Step{
			Name:   StepPhase2,
			Status: Completed,
			Detail: fmt.Sprintf("%d candidates reviewed", job.Phase2Completed),
		}
	}

	return Step{
		Name:     StepPhase2,
		Status:   InProgress,
		Detail:   "AI analyzing resumes...",
		Progress: percent(job.Phase2Completed, job.Phase1Completed),
	}
}

// percent returns done/total as a percentage clamped to [0, 100]; a
// non-positive total yields 0.
func percent(done, total int) *float64 {

	p := 0.0

	if total > 0 {
		p = float64(done) / float64(total) * 100
	}

	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}

	return &p
}
