package mocks

import (
	"context"
	"time"

	"signdesk/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockInvitationRepository struct {
	mock.Mock
}

func (m *MockInvitationRepository) CreateBatch(ctx context.Context, invs []model.Invitation) ([]model.Invitation, error) {
	args := m.Called(ctx, invs)
	if f, ok := args.Get(0).(func(context.Context, []model.Invitation) []model.Invitation); ok {
		return f(ctx, invs), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) FindByID(ctx context.Context, id string) (*model.Invitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) ListByDocument(ctx context.Context, documentID string) ([]model.Invitation, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *MockInvitationRepository) MarkSigned(ctx context.Context, id, signerName string, signedAt time.Time) error {
	args := m.Called(ctx, id, signerName, signedAt)
	return args.Error(0)
}
