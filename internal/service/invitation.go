package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"signdesk/internal/model"
	"signdesk/internal/repository"
	"signdesk/internal/signing"
	"signdesk/internal/storage"
)

var (
	ErrNoRecipients      = errors.New("at least one recipient is required")
	ErrAlreadyCompleted  = errors.New("document is already completed")
	ErrInvalidSignLink   = errors.New("sign link is invalid")
	ErrSignLinkExpired   = errors.New("sign link has expired")
	ErrInvitationExpired = errors.New("invitation has expired")
	ErrAlreadySigned     = errors.New("invitation is already signed")
)

// Recipient is one requested signer.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EmailSender is the outbound email surface the invitation flow needs.
// Delivery is best-effort: a failed send never rolls back created rows.
type EmailSender interface {
	IsConfigured() bool
	SendInvitationEmail(to, recipientName, senderName, documentTitle, signURL string, expiresAt time.Time) error
	SendCompletedEmail(to, recipientName, documentTitle string) error
}

// InvitationService defines the use cases around signature invitations.
type InvitationService interface {
	// Invite creates pending invitations for the recipients, moves a draft
	// document to pending, and emails each recipient a signed link.
	Invite(ctx context.Context, documentID, ownerID string, recipients []Recipient) ([]model.Invitation, error)

	// Sign completes an invitation through its emailed link. When the last
	// invitation completes, the document is finalized: the source object is
	// copied to a completed artifact and the document marked completed.
	Sign(ctx context.Context, invitationID, signerName, expires, signature string) (*model.Invitation, error)
}

type invitationService struct {
	invRepo   repository.InvitationRepository
	docRepo   repository.DocumentRepository
	userRepo  repository.UserRepository
	store     storage.Storage
	signer    *signing.Signer
	email     EmailSender
	baseURL   string
	inviteTTL time.Duration
}

// NewInvitationService constructs a new InvitationService.
func NewInvitationService(
	invRepo repository.InvitationRepository,
	docRepo repository.DocumentRepository,
	userRepo repository.UserRepository,
	store storage.Storage,
	signer *signing.Signer,
	email EmailSender,
	baseURL string,
	inviteTTL time.Duration,
) InvitationService {
	return &invitationService{
		invRepo:   invRepo,
		docRepo:   docRepo,
		userRepo:  userRepo,
		store:     store,
		signer:    signer,
		email:     email,
		baseURL:   baseURL,
		inviteTTL: inviteTTL,
	}
}

func (s *invitationService) Invite(ctx context.Context, documentID, ownerID string, recipients []Recipient) ([]model.Invitation, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	for _, rcpt := range recipients {
		if strings.TrimSpace(rcpt.Email) == "" || strings.TrimSpace(rcpt.Name) == "" {
			return nil, ErrNoRecipients
		}
	}

	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Only the creator can invite; anyone else learns nothing.
	if doc.CreatorID != ownerID {
		return nil, ErrNotFound
	}
	if doc.Status == model.DocumentCompleted {
		return nil, ErrAlreadyCompleted
	}

	now := time.Now().UTC()
	invs := make([]model.Invitation, 0, len(recipients))
	for _, rcpt := range recipients {
		invs = append(invs, model.Invitation{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			RecipientName:  strings.TrimSpace(rcpt.Name),
			RecipientEmail: strings.ToLower(strings.TrimSpace(rcpt.Email)),
			Status:         model.InvitationPending,
			CreatedAt:      now,
			ExpiresAt:      now.Add(s.inviteTTL),
		})
	}

	stored, err := s.invRepo.CreateBatch(ctx, invs)
	if err != nil {
		return nil, fmt.Errorf("create invitations: %w", err)
	}

	if doc.Status == model.DocumentDraft {
		if err := s.docRepo.SetStatus(ctx, doc.ID, model.DocumentPending); err != nil {
			return nil, fmt.Errorf("set document pending: %w", err)
		}
	}

	s.sendInviteEmails(ctx, doc, stored)

	return stored, nil
}

// sendInviteEmails delivers the sign links. Failures are logged, not returned.
func (s *invitationService) sendInviteEmails(ctx context.Context, doc *model.Document, invs []model.Invitation) {
	if s.email == nil || !s.email.IsConfigured() {
		return
	}

	senderName := "A Signdesk user"
	if creator, err := s.userRepo.FindByID(ctx, doc.CreatorID); err == nil {
		senderName = creator.Name
	}

	for _, inv := range invs {
		signURL := s.signer.SignURL(s.baseURL, inv.ID, inv.ExpiresAt)
		if err := s.email.SendInvitationEmail(inv.RecipientEmail, inv.RecipientName, senderName, doc.Title, signURL, inv.ExpiresAt); err != nil {
			log.Printf("invitation email to %s failed: %v", inv.RecipientEmail, err)
		}
	}
}

func (s *invitationService) Sign(ctx context.Context, invitationID, signerName, expires, signature string) (*model.Invitation, error) {
	if invitationID == "" {
		return nil, ErrIDRequired
	}
	if !s.signer.Validate(invitationID, expires, signature) {
		return nil, ErrInvalidSignLink
	}

	inv, err := s.invRepo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	switch inv.Status {
	case model.InvitationCompleted:
		// The link may be retried after a finalization failure left the
		// document stranded; reconcile before rejecting.
		if err := s.finalizeIfComplete(ctx, inv.DocumentID); err != nil {
			log.Printf("finalize document %s failed: %v", inv.DocumentID, err)
		}
		return nil, ErrAlreadySigned
	case model.InvitationExpired, model.InvitationDeclined:
		return nil, ErrInvitationExpired
	}
	if time.Now().After(inv.ExpiresAt) {
		return nil, ErrInvitationExpired
	}

	name := strings.TrimSpace(signerName)
	if name == "" {
		name = inv.RecipientName
	}

	signedAt := time.Now().UTC()
	if err := s.invRepo.MarkSigned(ctx, inv.ID, name, signedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent signer got there first.
			return nil, ErrAlreadySigned
		}
		return nil, fmt.Errorf("mark signed: %w", err)
	}
	inv.Status = model.InvitationCompleted
	inv.SignerName = &name
	inv.SignedAt = &signedAt

	// The signature is committed at this point. A failed finalization is
	// never surfaced to the signer; the next touch of a sign link for this
	// document re-attempts it.
	if err := s.finalizeIfComplete(ctx, inv.DocumentID); err != nil {
		log.Printf("finalize document %s failed: %v", inv.DocumentID, err)
	}

	return inv, nil
}

// finalizeIfComplete produces the completed artifact once every
// invitation carries a signature. Safe to call repeatedly: an already
// completed document is left untouched.
func (s *invitationService) finalizeIfComplete(ctx context.Context, documentID string) error {
	invs, err := s.invRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("list invitations: %w", err)
	}
	for _, inv := range invs {
		if !inv.IsSignature() {
			return nil
		}
	}

	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc.Status == model.DocumentCompleted {
		return nil
	}

	completedKey := filepath.ToSlash(filepath.Join("completed", doc.Filename))
	if _, err := s.store.Copy(ctx, doc.StoragePath, completedKey); err != nil {
		return fmt.Errorf("copy completed artifact: %w", err)
	}

	finalizedAt := time.Now().UTC()
	if err := s.docRepo.Finalize(ctx, doc.ID, completedKey, finalizedAt); err != nil {
		return fmt.Errorf("finalize document: %w", err)
	}

	s.sendCompletedEmails(ctx, doc, invs)
	return nil
}

// sendCompletedEmails notifies the creator and every signer. Best-effort.
func (s *invitationService) sendCompletedEmails(ctx context.Context, doc *model.Document, invs []model.Invitation) {
	if s.email == nil || !s.email.IsConfigured() {
		return
	}

	if creator, err := s.userRepo.FindByID(ctx, doc.CreatorID); err == nil {
		if err := s.email.SendCompletedEmail(creator.Email, creator.Name, doc.Title); err != nil {
			log.Printf("completion email to %s failed: %v", creator.Email, err)
		}
	}
	for _, inv := range invs {
		if err := s.email.SendCompletedEmail(inv.RecipientEmail, inv.RecipientName, doc.Title); err != nil {
			log.Printf("completion email to %s failed: %v", inv.RecipientEmail, err)
		}
	}
}
