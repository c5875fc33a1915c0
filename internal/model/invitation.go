package model

import "time"

// InvitationStatus enumerates the states of a signature request.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationCompleted InvitationStatus = "completed"
	InvitationDeclined  InvitationStatus = "declined"
	InvitationExpired   InvitationStatus = "expired"
)

// Invitation is a recipient's request-to-sign record tied to one document.
// SignerName may differ from RecipientName when the signer corrects it at
// signing time. SignedAt is set only once the invitation completes.
type Invitation struct {
	ID             string           `json:"id"`
	DocumentID     string           `json:"document_id"`
	RecipientName  string           `json:"recipient_name"`
	RecipientEmail string           `json:"recipient_email"`
	Status         InvitationStatus `json:"status"`
	SignerName     *string          `json:"signer_name"`
	SignedAt       *time.Time       `json:"signed_at"`
	CreatedAt      time.Time        `json:"created_at"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// IsSignature reports whether this invitation counts as a collected
// signature: completed status alone is not enough, the signed timestamp
// must also be present.
func (i Invitation) IsSignature() bool {
	return i.Status == InvitationCompleted && i.SignedAt != nil
}
