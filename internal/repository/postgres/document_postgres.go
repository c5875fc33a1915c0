package postgres

import (
	"context"
	"database/sql"
	"time"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, status, creator_id, filename, storage_path, size, content_type, completed_path, finalized_at, created_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&d.Status,
		&d.CreatorID,
		&d.Filename,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.CompletedPath,
		&d.FinalizedAt,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, title, status, creator_id, filename, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Status,
		doc.CreatorID,
		doc.Filename,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByIDForRequester fetches a document only when the requester owns it
// or is invited to sign it. The access filter lives in the query so an
// unauthorized requester and a missing row produce the same sql.ErrNoRows.
func (r *DocumentPostgres) FindByIDForRequester(ctx context.Context, id, requesterID, requesterEmail string) (*model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents d
		WHERE d.id = $1
		  AND (d.creator_id = $2 OR EXISTS (
			SELECT 1 FROM invitations i
			WHERE i.document_id = d.id AND i.recipient_email = $3
		  ))
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id, requesterID, requesterEmail))
}

// ListByCreator returns the creator's documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListByCreator(ctx context.Context, creatorID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE creator_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, creatorID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE creator_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, creatorID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// SetStatus updates the lifecycle status of a document.
func (r *DocumentPostgres) SetStatus(ctx context.Context, id string, status model.DocumentStatus) error {
	const q = `UPDATE documents SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Finalize marks a document completed and records the artifact location.
func (r *DocumentPostgres) Finalize(ctx context.Context, id, completedPath string, finalizedAt time.Time) error {
	const q = `
		UPDATE documents
		SET status = $2, completed_path = $3, finalized_at = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, model.DocumentCompleted, completedPath, finalizedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID. It does not return an error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	// Ignore rows affected to keep behavior simple per contract.
	_, _ = res.RowsAffected()
	return nil
}
