package postgresdb_test

import (
	"context"
	"errors"
	"os"
	"testing"

	apperrors "shortlist-monitor/internal/errors"
	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/postgresdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id                uuid PRIMARY KEY,
	job_title         text,
	status            text,
	created_at        timestamptz DEFAULT NOW(),
	total_resumes     integer,
	resumes_in_review integer,
	phase1_completed  integer,
	phase2_completed  integer,
	shortlisted_count integer
);

CREATE TABLE IF NOT EXISTS shortlisted_candidates (
	job_id       uuid REFERENCES jobs(id) ON DELETE CASCADE,
	rank         integer,
	name         text NOT NULL,
	confidence   double precision,
	email        text,
	cv_path      text,
	skills       text[],
	experience   integer,
	cover_letter text
);
`

func setUpTestDB(t *testing.T) *postgresdb.Store {

	t.Helper()

	connString := os.Getenv("DB_TEST_URL")

	if connString == "" {
		t.Skip("DB_TEST_URL not set, skipping integration test")
	}

	ctx := context.Background()

	db, err := postgresdb.New(ctx, connString)

	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	t.Cleanup(db.Close)

	return db
}

func seed(t *testing.T, db *postgresdb.Store, statements ...string) {
	t.Helper()

	ctx := context.Background()

	conn, err := db.Pool.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	require.NoError(t, err)

	// store sessions default to read-only
	_, err = tx.Exec(ctx, "SET TRANSACTION READ WRITE")
	require.NoError(t, err)

	for _, stmt := range append([]string{schema}, statements...) {
		_, err := tx.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	require.NoError(t, tx.Commit(ctx))
}

func TestGetStatus_Success(t *testing.T) {

	db := setUpTestDB(t)
	jobID := uuid.New().String()

	seed(t, db,
		`INSERT INTO jobs (id, job_title, status, total_resumes, phase1_completed)
		 VALUES ('`+jobID+`', 'Backend Engineer', 'phase1', 20, NULL)`,
	)

	snapshot, err := db.GetStatus(context.Background(), jobID)
	require.NoError(t, err)

	assert.Equal(t, jobID, snapshot.JobID)
	assert.Equal(t, "Backend Engineer", snapshot.JobTitle)
	assert.Equal(t, models.StatusPhase1, snapshot.Status)
	assert.Equal(t, 20, snapshot.TotalResumes)
	assert.Zero(t, snapshot.Phase1Completed)
	assert.False(t, snapshot.CreatedAt.IsZero())
}

func TestGetStatus_NotFound(t *testing.T) {

	db := setUpTestDB(t)
	seed(t, db)

	_, err := db.GetStatus(context.Background(), uuid.New().String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestGetStatus_NullStatusIsMalformed(t *testing.T) {

	db := setUpTestDB(t)
	jobID := uuid.New().String()

	seed(t, db, `INSERT INTO jobs (id, status) VALUES ('`+jobID+`', NULL)`)

	_, err := db.GetStatus(context.Background(), jobID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedSnapshot))
}

func TestGetResults_RankOrder(t *testing.T) {

	db := setUpTestDB(t)
	jobID := uuid.New().String()

	seed(t, db,
		`INSERT INTO jobs (id, status, shortlisted_count) VALUES ('`+jobID+`', 'completed', 2)`,
		`INSERT INTO shortlisted_candidates (job_id, rank, name, confidence, skills, experience)
		 VALUES ('`+jobID+`', 2, 'Grace', 0.82, ARRAY['cobol'], 30),
		        ('`+jobID+`', 1, 'Ada', 0.95, ARRAY['go','sql'], NULL)`,
	)

	candidates, err := db.GetResults(context.Background(), jobID)
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Ada", candidates[0].Name)
	assert.Equal(t, []string{"go", "sql"}, candidates[0].Skills)
	assert.Nil(t, candidates[0].Experience)
	assert.Equal(t, "Grace", candidates[1].Name)
	require.NotNil(t, candidates[1].Experience)
	assert.Equal(t, 30, *candidates[1].Experience)
}

func TestListJobs_IncludesSeededJob(t *testing.T) {

	db := setUpTestDB(t)
	jobID := uuid.New().String()

	seed(t, db,
		`INSERT INTO jobs (id, job_title, status, total_resumes, shortlisted_count)
		 VALUES ('`+jobID+`', 'Site Reliability Engineer', 'phase2', 9, NULL)`,
	)

	jobs, err := db.ListJobs(context.Background())
	require.NoError(t, err)

	var found *models.JobSummary
	for i := range jobs {
		if jobs[i].JobID == jobID {
			found = &jobs[i]
		}
	}

	require.NotNil(t, found)
	assert.Equal(t, "Site Reliability Engineer", found.JobTitle)
	assert.Equal(t, models.StatusPhase2, found.Status)
	assert.Equal(t, 9, found.TotalResumes)
	assert.Zero(t, found.ShortlistedCount)
}
