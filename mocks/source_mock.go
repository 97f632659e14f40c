package mocks

import (
	"context"

	"shortlist-monitor/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetStatus(ctx context.Context, jobID string) (*models.JobStatus, error) {
	args := m.Called(ctx, jobID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.JobStatus), args.Error(1)
}

func (m *MockSource) GetResults(ctx context.Context, jobID string) ([]models.Candidate, error) {
	args := m.Called(ctx, jobID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Candidate), args.Error(1)
}
