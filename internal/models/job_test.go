package models

import (
	"errors"
	"testing"
	"time"

	apperrors "shortlist-monitor/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJobStatus_Success(t *testing.T) {

	body := []byte(`{
		"job_id": "8c1f",
		"job_title": "Backend Engineer",
		"total_resumes": 20,
		"resumes_in_review": 20,
		"phase1_completed": 10,
		"phase2_completed": 5,
		"shortlisted_count": 5,
		"status": "completed",
		"created_at": "2025-01-02T15:04:05Z"
	}`)

	snapshot, err := DecodeJobStatus(body)
	require.NoError(t, err)

	assert.Equal(t, "8c1f", snapshot.JobID)
	assert.Equal(t, StatusCompleted, snapshot.Status)
	assert.Equal(t, 20, snapshot.TotalResumes)
	assert.Equal(t, 10, snapshot.Phase1Completed)
	assert.Equal(t, 5, snapshot.Phase2Completed)
	assert.Equal(t, 5, snapshot.ShortlistedCount)
	assert.True(t, snapshot.CreatedAt.Equal(time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)))
	assert.True(t, snapshot.Terminal())
}

func TestDecodeJobStatus_MissingCountersDefaultToZero(t *testing.T) {

	snapshot, err := DecodeJobStatus([]byte(`{"job_id": "a", "status": "phase1"}`))
	require.NoError(t, err)

	assert.Equal(t, StatusPhase1, snapshot.Status)
	assert.Zero(t, snapshot.TotalResumes)
	assert.Zero(t, snapshot.Phase1Completed)
	assert.Zero(t, snapshot.ShortlistedCount)
}

func TestDecodeJobStatus_Malformed(t *testing.T) {

	testCases := []struct {
		name string
		body string
	}{
		{name: "missing status", body: `{"job_id": "a", "total_resumes": 3}`},
		{name: "null status", body: `{"job_id": "a", "status": null}`},
		{name: "unknown status", body: `{"job_id": "a", "status": "archived"}`},
		{name: "not json", body: `<html>bad gateway</html>`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeJobStatus([]byte(tc.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrMalformedSnapshot))
		})
	}
}

func TestDecodeShortlist(t *testing.T) {

	candidates, err := DecodeShortlist([]byte(`{
		"job_id": "a",
		"shortlisted": [
			{"name": "Ada", "confidence": 0.93, "cv_path": "cv/ada.pdf", "skills": ["go", "sql"], "cover_letter": "..."},
			{"name": "Linus", "confidence": 0.81, "cv_path": "cv/linus.pdf", "skills": ["c"], "experience": 7, "cover_letter": "..."}
		]
	}`))
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Ada", candidates[0].Name)
	assert.Nil(t, candidates[0].Experience)
	require.NotNil(t, candidates[1].Experience)
	assert.Equal(t, 7, *candidates[1].Experience)

	empty, err := DecodeShortlist([]byte(`{"job_id": "a"}`))
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestStatusRank(t *testing.T) {

	order := []Status{StatusPending, StatusUploaded, StatusPhase1, StatusPhase2, StatusCompleted}

	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1].Rank(), order[i].Rank(), "%s should rank below %s", order[i-1], order[i])
	}

	assert.Equal(t, StatusUploaded.Rank(), StatusProcessing.Rank())
	assert.Equal(t, -1, StatusError.Rank())
}

func TestTerminal(t *testing.T) {
	assert.False(t, JobStatus{Status: StatusCompleted}.Terminal())
	assert.False(t, JobStatus{Status: StatusPhase2, ShortlistedCount: 3}.Terminal())
	assert.True(t, JobStatus{Status: StatusCompleted, ShortlistedCount: 1}.Terminal())
}

func TestDecodeJobStatus_BackendTimestamps(t *testing.T) {

	testCases := []struct {
		name      string
		createdAt string
		want      time.Time
	}{
		{name: "naive isoformat with micros", createdAt: `"2025-01-02T15:04:05.123456"`, want: time.Date(2025, 1, 2, 15, 4, 5, 123456000, time.UTC)},
		{name: "naive isoformat", createdAt: `"2025-01-02T15:04:05"`, want: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)},
		{name: "space separated", createdAt: `"2025-01-02 15:04:05.5"`, want: time.Date(2025, 1, 2, 15, 4, 5, 500000000, time.UTC)},
		{name: "offset", createdAt: `"2025-01-02T17:04:05+02:00"`, want: time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)},
		{name: "unreadable", createdAt: `"yesterday"`},
		{name: "null", createdAt: `null`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			body := []byte(`{"job_id":"8c1f","job_title":"Backend Engineer","status":"phase1","total_resumes":12,` +
				`"resumes_in_review":12,"phase1_completed":0,"phase2_completed":0,"shortlisted_count":0,` +
				`"created_at":` + tc.createdAt + `}`)

			snapshot, err := DecodeJobStatus(body)
			require.NoError(t, err)

			assert.Equal(t, StatusPhase1, snapshot.Status)
			assert.Equal(t, 12, snapshot.TotalResumes)
			assert.True(t, snapshot.CreatedAt.Equal(tc.want), "got %v", snapshot.CreatedAt)
		})
	}
}

func TestDecodeJobList(t *testing.T) {

	jobs, err := DecodeJobList([]byte(`{"jobs":[
		{"job_id":"a","job_title":"Backend Engineer","status":"completed","total_resumes":20,"shortlisted_count":5,"created_at":"2025-01-02T15:04:05.123456"},
		{"job_id":"b","job_title":"Designer","status":"phase1","total_resumes":4,"shortlisted_count":0,"created_at":"not a date"}
	]}`))
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].JobID)
	assert.Equal(t, StatusCompleted, jobs[0].Status)
	assert.Equal(t, 5, jobs[0].ShortlistedCount)
	assert.Equal(t, 2025, jobs[0].CreatedAt.Year())
	assert.Equal(t, "Designer", jobs[1].JobTitle)
	assert.True(t, jobs[1].CreatedAt.IsZero())
}

func TestDecodeJobList_EmptyAndMalformed(t *testing.T) {

	jobs, err := DecodeJobList([]byte(`{"jobs":[]}`))
	require.NoError(t, err)
	assert.Empty(t, jobs)

	_, err = DecodeJobList([]byte(`{"jobs":`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedSnapshot))
}
