package repository

import (
	"context"
	"time"

	"signdesk/internal/model"
)

// InvitationRepository defines data access for signature invitations.
type InvitationRepository interface {
	// CreateBatch inserts all invitations in one transaction and returns the stored rows.
	CreateBatch(ctx context.Context, invs []model.Invitation) ([]model.Invitation, error)

	// FindByID returns an invitation by its ID.
	FindByID(ctx context.Context, id string) (*model.Invitation, error)

	// ListByDocument returns every invitation for the document in storage order.
	ListByDocument(ctx context.Context, documentID string) ([]model.Invitation, error)

	// MarkSigned transitions a pending invitation to completed, recording
	// the signer name and signed timestamp. Returns sql.ErrNoRows when the
	// invitation is missing or no longer pending.
	MarkSigned(ctx context.Context, id, signerName string, signedAt time.Time) error
}
