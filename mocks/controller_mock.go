package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockController struct {
	mock.Mock
}

func (m *MockController) Activate(ctx context.Context, jobID string) (uuid.UUID, error) {
	args := m.Called(ctx, jobID)

	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockController) Deactivate() {
	m.Called()
}
