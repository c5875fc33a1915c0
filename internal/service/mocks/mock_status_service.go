package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signdesk/internal/model"
	"signdesk/internal/service"
)

type MockStatusService struct {
	mock.Mock
}

func (m *MockStatusService) CompletionStatus(ctx context.Context, documentID, requesterID, requesterEmail string) (*service.StatusPayload, error) {
	args := m.Called(ctx, documentID, requesterID, requesterEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatusPayload), args.Error(1)
}

func (m *MockStatusService) FinalizationStatus(ctx context.Context, documentID string) (*model.FinalizationStatus, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FinalizationStatus), args.Error(1)
}
