// Package objectstore reads job reports that the backend exports to a bucket
// as <prefix><jobId>/status.json and <prefix><jobId>/shortlisted.json.
package objectstore

import (
	"context"
	"fmt"
	"path"

	"shortlist-monitor/internal/models"
)

const (
	StatusObject      = "status.json"
	ShortlistedObject = "shortlisted.json"
)

type FileStorer interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

type Source struct {
	store  FileStorer
	bucket string
	prefix string
}

func New(store FileStorer, bucket, prefix string) (*Source, error) {

	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}

	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	return &Source{store: store, bucket: bucket, prefix: prefix}, nil
}

// Key returns the object key for one of a job's report files.
func (s *Source) Key(jobID, object string) string {
	return s.prefix + path.Join(jobID, object)
}

func (s *Source) GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {

	body, err := s.store.Download(ctx, s.bucket, s.Key(jobID, StatusObject))

	if err != nil {
		return nil, fmt.Errorf("failed to read status for job %s: %w", jobID, err)
	}

	snapshot, err := models.DecodeJobStatus(body)

	if err != nil {
		return nil, err
	}

	if snapshot.JobID == "" {
		snapshot.JobID = jobID
	}

	return snapshot, nil
}

func (s *Source) GetResults(ctx context.Context, jobID string) ([]models.Candidate, error) {

	body, err := s.store.Download(ctx, s.bucket, s.Key(jobID, ShortlistedObject))

	if err != nil {
		return nil, fmt.Errorf("failed to read shortlist for job %s: %w", jobID, err)
	}

	return models.DecodeShortlist(body)
}
