package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailSender) SendInvitationEmail(to, recipientName, senderName, documentTitle, signURL string, expiresAt time.Time) error {
	args := m.Called(to, recipientName, senderName, documentTitle, signURL, expiresAt)
	return args.Error(0)
}

func (m *MockEmailSender) SendCompletedEmail(to, recipientName, documentTitle string) error {
	args := m.Called(to, recipientName, documentTitle)
	return args.Error(0)
}
