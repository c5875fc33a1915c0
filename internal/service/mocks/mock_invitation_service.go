package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"signdesk/internal/model"
	"signdesk/internal/service"
)

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Invite(ctx context.Context, documentID, ownerID string, recipients []service.Recipient) ([]model.Invitation, error) {
	args := m.Called(ctx, documentID, ownerID, recipients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func (m *MockInvitationService) Sign(ctx context.Context, invitationID, signerName, expires, signature string) (*model.Invitation, error) {
	args := m.Called(ctx, invitationID, signerName, expires, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}
