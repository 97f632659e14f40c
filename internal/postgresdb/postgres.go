package postgresdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "shortlist-monitor/internal/errors"
	"shortlist-monitor/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Store reads job reports straight from the tables the shortlisting
// backend writes. It never writes.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Store, error) {
	if connString == "" {
		return nil, fmt.Errorf("ERROR: database connection string is required")
	}

	config, err := pgxpool.ParseConfig(connString)

	if err != nil {
		return nil, fmt.Errorf("ERROR: unable to parse connection string: %w", err)
	}

	// status polling only ever reads
	config.ConnConfig.RuntimeParams["default_transaction_read_only"] = "on"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("ERROR: unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ERROR: unable to ping database: %w", err)
	}

	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {

	var snapshot models.JobStatus

	// NULL counters read as zero, a NULL status is a malformed report
	var statusString *string
	var jobTitle *string
	var createdAt *time.Time

	sql := `
        SELECT id::text, job_title, status, created_at,
               COALESCE(total_resumes, 0), COALESCE(resumes_in_review, 0),
               COALESCE(phase1_completed, 0), COALESCE(phase2_completed, 0),
               COALESCE(shortlisted_count, 0)
        FROM jobs
        WHERE id::text = $1
        `

	err := s.Pool.QueryRow(
		ctx,
		sql,
		jobID,
	).Scan(
		&snapshot.JobID,
		&jobTitle,
		&statusString,
		&createdAt,
		&snapshot.TotalResumes,
		&snapshot.ResumesInReview,
		&snapshot.Phase1Completed,
		&snapshot.Phase2Completed,
		&snapshot.ShortlistedCount,
	)

	if err != nil {
		return nil, classify(jobID, err)
	}

	if statusString == nil {
		return nil, fmt.Errorf("job %s has no status: %w", jobID, apperrors.ErrMalformedSnapshot)
	}

	status, err := models.ParseStatus(*statusString)

	if err != nil {
		return nil, fmt.Errorf("ERROR: database contains invalid job status string: %w", err)
	}
	snapshot.Status = status

	if jobTitle != nil {
		snapshot.JobTitle = *jobTitle
	}
	if createdAt != nil {
		snapshot.CreatedAt = *createdAt
	}

	return &snapshot, nil
}

// GetResults returns the shortlist in rank order.
func (s *Store) GetResults(ctx context.Context, jobID string) ([]models.Candidate, error) {

	sql := `
        SELECT name, COALESCE(confidence, 0), email, COALESCE(cv_path, ''),
               COALESCE(skills, '{}'), experience, COALESCE(cover_letter, '')
        FROM shortlisted_candidates
        WHERE job_id::text = $1
        ORDER BY rank ASC, confidence DESC
        `

	rows, err := s.Pool.Query(ctx, sql, jobID)

	if err != nil {
		return nil, classify(jobID, err)
	}

	candidates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Candidate, error) {
		var c models.Candidate

		err := row.Scan(
			&c.Name,
			&c.Confidence,
			&c.Email,
			&c.CVPath,
			&c.Skills,
			&c.Experience,
			&c.CoverLetter,
		)

		return c, err
	})

	if err != nil {
		return nil, classify(jobID, err)
	}

	log.Debug().
		Str("component", "postgresdb").
		Str("job_id", jobID).
		Int("candidates", len(candidates)).
		Msg("Loaded shortlist")

	return candidates, nil
}

// ListJobs returns every job, newest first. Unknown statuses are kept as
// stored.
func (s *Store) ListJobs(ctx context.Context) ([]models.JobSummary, error) {

	sql := `
        SELECT id::text, COALESCE(job_title, ''), COALESCE(status, ''),
               COALESCE(total_resumes, 0), COALESCE(shortlisted_count, 0), created_at
        FROM jobs
        ORDER BY created_at DESC NULLS LAST
        `

	rows, err := s.Pool.Query(ctx, sql)

	if err != nil {
		return nil, fmt.Errorf("ERROR: failed to list jobs: %v: %w", err, apperrors.ErrTransport)
	}

	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.JobSummary, error) {
		var job models.JobSummary
		var status string
		var createdAt *time.Time

		err := row.Scan(
			&job.JobID,
			&job.JobTitle,
			&status,
			&job.TotalResumes,
			&job.ShortlistedCount,
			&createdAt,
		)

		job.Status = models.Status(status)
		if createdAt != nil {
			job.CreatedAt = *createdAt
		}

		return job, err
	})

	if err != nil {
		return nil, fmt.Errorf("ERROR: failed to list jobs: %v: %w", err, apperrors.ErrTransport)
	}

	return jobs, nil
}

func classify(jobID string, err error) error {

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("job %s: %w", jobID, apperrors.ErrNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("ERROR: query for job %s timed out: %v: %w", jobID, err, apperrors.ErrTransport)
	default:
		return fmt.Errorf("ERROR: failed to query job %s: %v: %w", jobID, err, apperrors.ErrTransport)
	}
}
