package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"signdesk/internal/model"
	"signdesk/internal/repository"
	"signdesk/internal/storage"
)

// StatusService exposes the completion and finalization state of a document.
type StatusService interface {
	// CompletionStatus resolves the document through the requester-scoped
	// access filter, recomputes finalization state from the invitation rows,
	// and shapes the response payload. A missing document and a document the
	// requester cannot see produce the same ErrNotFound.
	CompletionStatus(ctx context.Context, documentID, requesterID, requesterEmail string) (*StatusPayload, error)

	// FinalizationStatus recomputes signature counts and readiness for a
	// document. It fails with ErrNotFound for a missing document instead of
	// returning zeroed counts.
	FinalizationStatus(ctx context.Context, documentID string) (*model.FinalizationStatus, error)
}

type statusService struct {
	docRepo    repository.DocumentRepository
	invRepo    repository.InvitationRepository
	store      storage.Storage
	presignTTL time.Duration
}

// NewStatusService constructs a new StatusService.
func NewStatusService(docRepo repository.DocumentRepository, invRepo repository.InvitationRepository, store storage.Storage, presignTTL time.Duration) StatusService {
	return &statusService{
		docRepo:    docRepo,
		invRepo:    invRepo,
		store:      store,
		presignTTL: presignTTL,
	}
}

func (s *statusService) CompletionStatus(ctx context.Context, documentID, requesterID, requesterEmail string) (*StatusPayload, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}

	doc, err := s.docRepo.FindByIDForRequester(ctx, documentID, requesterID, requesterEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load document: %w", err)
	}

	invs, err := s.invRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	fin := aggregate(doc, invs)
	s.attachCompletedURL(ctx, doc, &fin)

	payload := ShapeStatus(doc, invs, fin)
	return &payload, nil
}

func (s *statusService) FinalizationStatus(ctx context.Context, documentID string) (*model.FinalizationStatus, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}

	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load document: %w", err)
	}

	invs, err := s.invRepo.ListByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	fin := aggregate(doc, invs)
	s.attachCompletedURL(ctx, doc, &fin)
	return &fin, nil
}

// aggregate recomputes finalization state from the invitation rows. Counts
// are never cached; every call reflects the rows as they are now.
func aggregate(doc *model.Document, invs []model.Invitation) model.FinalizationStatus {
	completed := 0
	for _, inv := range invs {
		if inv.IsSignature() {
			completed++
		}
	}

	total := len(invs)
	return model.FinalizationStatus{
		TotalSignatures:     total,
		CompletedSignatures: completed,
		IsReady:             total > 0 && completed == total,
		IsFinalized:         doc.FinalizedAt != nil && doc.CompletedPath != nil,
		FinalizedAt:         doc.FinalizedAt,
	}
}

// attachCompletedURL fills in a presigned download URL for the completed
// artifact. A presign failure leaves the URL null rather than failing the
// whole status read.
func (s *statusService) attachCompletedURL(ctx context.Context, doc *model.Document, fin *model.FinalizationStatus) {
	if !fin.IsFinalized || doc.CompletedPath == nil {
		return
	}
	url, err := s.store.PresignGet(ctx, *doc.CompletedPath, s.presignTTL)
	if err != nil {
		return
	}
	fin.CompletedDocumentURL = &url
}

// StatusPayload is the completion-status response body. Optional timestamp
// and URL fields serialize as explicit null, never as an omitted key.
type StatusPayload struct {
	Document     DocumentSummary     `json:"document"`
	Signatures   []SignatureEntry    `json:"signatures"`
	Invitations  []InvitationEntry   `json:"invitations"`
	Metrics      StatusMetrics       `json:"metrics"`
	Finalization FinalizationPayload `json:"finalizationStatus"`
}

type DocumentSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	CreatorID string `json:"creatorId"`
	CreatedAt string `json:"createdAt"`
}

type SignatureEntry struct {
	InvitationID string  `json:"invitationId"`
	SignerName   *string `json:"signerName"`
	SignedAt     string  `json:"signedAt"`
}

type InvitationEntry struct {
	ID             string  `json:"id"`
	RecipientName  string  `json:"recipientName"`
	RecipientEmail string  `json:"recipientEmail"`
	Status         string  `json:"status"`
	SignedAt       *string `json:"signedAt"`
	ExpiresAt      string  `json:"expiresAt"`
}

type StatusMetrics struct {
	TotalSignatures     int `json:"totalSignatures"`
	CompletedSignatures int `json:"completedSignatures"`
	ProgressPercentage  int `json:"progressPercentage"`
}

type FinalizationPayload struct {
	TotalSignatures      int     `json:"totalSignatures"`
	CompletedSignatures  int     `json:"completedSignatures"`
	IsReady              bool    `json:"isReady"`
	IsFinalized          bool    `json:"isFinalized"`
	FinalizedAt          *string `json:"finalizedAt"`
	CompletedDocumentURL *string `json:"completedDocumentUrl"`
}

// ShapeStatus is a pure transformation of the loaded document, its
// invitations, and the recomputed finalization state into the response body.
// It performs no I/O.
func ShapeStatus(doc *model.Document, invs []model.Invitation, fin model.FinalizationStatus) StatusPayload {
	signed := make([]model.Invitation, 0, len(invs))
	for _, inv := range invs {
		if inv.IsSignature() {
			signed = append(signed, inv)
		}
	}
	sort.Slice(signed, func(i, j int) bool {
		return signed[i].SignedAt.Before(*signed[j].SignedAt)
	})

	signatures := make([]SignatureEntry, 0, len(signed))
	for _, inv := range signed {
		signatures = append(signatures, SignatureEntry{
			InvitationID: inv.ID,
			SignerName:   inv.SignerName,
			SignedAt:     formatTime(*inv.SignedAt),
		})
	}

	entries := make([]InvitationEntry, 0, len(invs))
	for _, inv := range invs {
		entries = append(entries, InvitationEntry{
			ID:             inv.ID,
			RecipientName:  inv.RecipientName,
			RecipientEmail: inv.RecipientEmail,
			Status:         string(inv.Status),
			SignedAt:       formatTimePtr(inv.SignedAt),
			ExpiresAt:      formatTime(inv.ExpiresAt),
		})
	}

	return StatusPayload{
		Document: DocumentSummary{
			ID:        doc.ID,
			Title:     doc.Title,
			Status:    string(doc.Status),
			CreatorID: doc.CreatorID,
			CreatedAt: formatTime(doc.CreatedAt),
		},
		Signatures:  signatures,
		Invitations: entries,
		Metrics: StatusMetrics{
			TotalSignatures:     fin.TotalSignatures,
			CompletedSignatures: fin.CompletedSignatures,
			ProgressPercentage:  progressPercentage(fin.CompletedSignatures, fin.TotalSignatures),
		},
		Finalization: FinalizationPayload{
			TotalSignatures:      fin.TotalSignatures,
			CompletedSignatures:  fin.CompletedSignatures,
			IsReady:              fin.IsReady,
			IsFinalized:          fin.IsFinalized,
			FinalizedAt:          formatTimePtr(fin.FinalizedAt),
			CompletedDocumentURL: fin.CompletedDocumentURL,
		},
	}
}

func progressPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
