package repository

import (
	"context"
	"time"

	"signdesk/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here — strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record.
	// Returns the stored document (may include values set by the DB).
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID regardless of who asks.
	// Reserved for internal flows (signing callbacks, finalization).
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByIDForRequester returns the document only when the requester is
	// its creator or the recipient email of one of its invitations. A miss
	// and a forbidden access both come back as sql.ErrNoRows; callers
	// cannot tell them apart.
	FindByIDForRequester(ctx context.Context, id, requesterID, requesterEmail string) (*model.Document, error)

	// ListByCreator returns a paginated list of the creator's documents and a total count.
	ListByCreator(ctx context.Context, creatorID string, pq PageQuery) (*PageResult[model.Document], error)

	// SetStatus updates the document lifecycle status.
	SetStatus(ctx context.Context, id string, status model.DocumentStatus) error

	// Finalize marks the document completed and records the finalized
	// artifact location and timestamp.
	Finalize(ctx context.Context, id, completedPath string, finalizedAt time.Time) error

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
