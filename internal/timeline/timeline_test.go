package timeline

import (
	"math"
	"testing"
	"time"

	"shortlist-monitor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func names(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Name)
	}
	return out
}

func TestDerive_PendingJob(t *testing.T) {

	steps := Derive(models.JobStatus{Status: models.StatusPending, CreatedAt: createdAt})

	require.Len(t, steps, 1)
	assert.Equal(t, StepJobCreated, steps[0].Name)
	assert.Equal(t, Completed, steps[0].Status)
	require.NotNil(t, steps[0].Time)
	assert.True(t, steps[0].Time.Equal(createdAt))
	assert.Nil(t, steps[0].Progress)
}

func TestDerive_ZeroCreatedAtHasNoTime(t *testing.T) {

	steps := Derive(models.JobStatus{Status: models.StatusPending})

	require.Len(t, steps, 1)
	assert.Nil(t, steps[0].Time)
}

func TestDerive_Phase1JustStarted(t *testing.T) {

	steps := Derive(models.JobStatus{
		Status:          models.StatusPhase1,
		TotalResumes:    20,
		Phase1Completed: 0,
	})

	require.Len(t, steps, 3)
	assert.Equal(t, []string{StepJobCreated, StepResumesUploaded, StepPhase1}, names(steps))
	assert.Equal(t, "20 resumes parsed and extracted", steps[1].Detail)

	phase1 := steps[2]
	assert.Equal(t, InProgress, phase1.Status)
	require.NotNil(t, phase1.Progress)
	assert.Equal(t, 0.0, *phase1.Progress)
}

func TestDerive_Phase2InProgress(t *testing.T) {

	steps := Derive(models.JobStatus{
		Status:          models.StatusPhase2,
		TotalResumes:    20,
		Phase1Completed: 8,
		Phase2Completed: 2,
	})

	require.Len(t, steps, 4)

	phase1 := steps[2]
	assert.Equal(t, Completed, phase1.Status)
	assert.Nil(t, phase1.Progress)
	assert.Equal(t, "8 candidates passed", phase1.Detail)

	phase2 := steps[3]
	assert.Equal(t, StepPhase2, phase2.Name)
	assert.Equal(t, InProgress, phase2.Status)
	assert.Equal(t, "AI analyzing resumes...", phase2.Detail)
	require.NotNil(t, phase2.Progress)
	assert.InDelta(t, 25.0, *phase2.Progress, 1e-9)
}

func TestDerive_Completed(t *testing.T) {

	steps := Derive(models.JobStatus{
		Status:           models.StatusCompleted,
		TotalResumes:     20,
		Phase1Completed:  10,
		Phase2Completed:  5,
		ShortlistedCount: 5,
		CreatedAt:        createdAt,
	})

	require.Len(t, steps, 5)
	assert.Equal(t, []string{StepJobCreated, StepResumesUploaded, StepPhase1, StepPhase2, StepShortlisted}, names(steps))

	for _, step := range steps {
		assert.Equal(t, Completed, step.Status, step.Name)
		assert.Nil(t, step.Progress, step.Name)
	}

	assert.Equal(t, "5 candidates reviewed", steps[3].Detail)
	assert.Equal(t, "5 candidates shortlisted", steps[4].Detail)
}

func TestDerive_ErrorStatusAddsNoSteps(t *testing.T) {

	steps := Derive(models.JobStatus{
		Status:          models.StatusError,
		TotalResumes:    4,
		Phase1Completed: 2,
	})

	assert.Equal(t, []string{StepJobCreated, StepResumesUploaded}, names(steps))
}

func TestDerive_CompletedWithoutResumes(t *testing.T) {

	steps := Derive(models.JobStatus{Status: models.StatusCompleted})

	assert.Equal(t, []string{StepJobCreated, StepPhase1, StepPhase2, StepShortlisted}, names(steps))

	for _, step := range steps {
		if step.Progress != nil {
			assert.False(t, math.IsNaN(*step.Progress) || math.IsInf(*step.Progress, 0), step.Name)
			assert.Equal(t, 0.0, *step.Progress, step.Name)
		}
	}
}

func TestDerive_NoInvalidPercentagesWithoutResumes(t *testing.T) {

	statuses := []models.Status{
		models.StatusPending, models.StatusUploaded, models.StatusProcessing,
		models.StatusPhase1, models.StatusPhase2, models.StatusCompleted, models.StatusError,
	}

	for _, status := range statuses {
		for _, p1 := range []int{0, 3} {
			steps := Derive(models.JobStatus{Status: status, Phase1Completed: p1, Phase2Completed: 7})

			for _, step := range steps {
				if step.Progress == nil {
					continue
				}
				p := *step.Progress
				assert.False(t, math.IsNaN(p) || math.IsInf(p, 0), "%s/%s", status, step.Name)
				assert.GreaterOrEqual(t, p, 0.0)
				assert.LessOrEqual(t, p, 100.0)
			}
		}
	}
}

func TestDerive_ViolatedCountersAreClamped(t *testing.T) {

	steps := Derive(models.JobStatus{
		Status:          models.StatusPhase2,
		TotalResumes:    -3,
		Phase1Completed: 2,
		Phase2Completed: 9,
	})

	require.Len(t, steps, 3)
	require.NotNil(t, steps[2].Progress)
	assert.Equal(t, 100.0, *steps[2].Progress)

	steps = Derive(models.JobStatus{Status: models.StatusPhase1, TotalResumes: 5, Phase1Completed: -2})
	require.NotNil(t, steps[2].Progress)
	assert.Equal(t, 0.0, *steps[2].Progress)
}

func TestDerive_IsPure(t *testing.T) {

	job := models.JobStatus{
		Status:          models.StatusPhase2,
		TotalResumes:    12,
		Phase1Completed: 6,
		Phase2Completed: 3,
		CreatedAt:       createdAt,
	}

	first := Derive(job)
	second := Derive(job)

	assert.Equal(t, first, second)

	// mutating one result must not leak into the next
	*first[3].Progress = 99
	first[0].Name = "changed"
	assert.Equal(t, second, Derive(job))
}

func TestDerive_StepCountIsMonotonic(t *testing.T) {

	// a job advancing through its statuses with non decreasing counters
	progression := []models.JobStatus{
		{Status: models.StatusPending},
		{Status: models.StatusUploaded, TotalResumes: 20},
		{Status: models.StatusProcessing, TotalResumes: 20},
		{Status: models.StatusPhase1, TotalResumes: 20},
		{Status: models.StatusPhase1, TotalResumes: 20, Phase1Completed: 4},
		{Status: models.StatusPhase2, TotalResumes: 20, Phase1Completed: 10},
		{Status: models.StatusPhase2, TotalResumes: 20, Phase1Completed: 10, Phase2Completed: 6},
		{Status: models.StatusCompleted, TotalResumes: 20, Phase1Completed: 10, Phase2Completed: 10, ShortlistedCount: 5},
	}

	for i := range progression {
		for j := i; j < len(progression); j++ {
			a, b := progression[i], progression[j]
			require.LessOrEqual(t, a.Status.Rank(), b.Status.Rank())
			assert.GreaterOrEqual(t, len(Derive(b)), len(Derive(a)), "%s -> %s", a.Status, b.Status)
		}
	}
}

func TestDerive_SkippedIntermediateSnapshots(t *testing.T) {

	steps := Derive(models.JobStatus{
		Status:           models.StatusCompleted,
		TotalResumes:     3,
		Phase1Completed:  1,
		Phase2Completed:  1,
		ShortlistedCount: 1,
	})

	assert.Len(t, steps, 5)
}
