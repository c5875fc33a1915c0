package postgres

import (
	"context"
	"database/sql"
	"time"

	"signdesk/internal/model"
	"signdesk/internal/repository"
)

// InvitationPostgres is a PostgreSQL implementation of repository.InvitationRepository.
type InvitationPostgres struct {
	db *sql.DB
}

// NewInvitationPostgres creates a new InvitationPostgres repository.
func NewInvitationPostgres(db *sql.DB) *InvitationPostgres {
	return &InvitationPostgres{db: db}
}

var _ repository.InvitationRepository = (*InvitationPostgres)(nil)

const invitationColumns = `id, document_id, recipient_name, recipient_email, status, signer_name, signed_at, created_at, expires_at`

func scanInvitation(row interface{ Scan(...any) error }) (*model.Invitation, error) {
	var inv model.Invitation
	if err := row.Scan(
		&inv.ID,
		&inv.DocumentID,
		&inv.RecipientName,
		&inv.RecipientEmail,
		&inv.Status,
		&inv.SignerName,
		&inv.SignedAt,
		&inv.CreatedAt,
		&inv.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateBatch inserts all invitations inside one transaction so a partial
// batch never becomes visible.
func (r *InvitationPostgres) CreateBatch(ctx context.Context, invs []model.Invitation) ([]model.Invitation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO invitations (id, document_id, recipient_name, recipient_email, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + invitationColumns

	stored := make([]model.Invitation, 0, len(invs))
	for _, inv := range invs {
		row := tx.QueryRowContext(ctx, q,
			inv.ID,
			inv.DocumentID,
			inv.RecipientName,
			inv.RecipientEmail,
			inv.Status,
			inv.CreatedAt,
			inv.ExpiresAt,
		)
		out, err := scanInvitation(row)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *out)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// FindByID fetches a single invitation by its ID.
func (r *InvitationPostgres) FindByID(ctx context.Context, id string) (*model.Invitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE id = $1
	`
	return scanInvitation(r.db.QueryRowContext(ctx, q, id))
}

// ListByDocument returns all invitations of a document. Ordering is by
// creation time for stable listings; signature ordering is derived later
// from signed timestamps, independent of storage order.
func (r *InvitationPostgres) ListByDocument(ctx context.Context, documentID string) ([]model.Invitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE document_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkSigned completes a pending invitation. The status guard is part of
// the statement so a concurrent double-sign loses the race cleanly.
func (r *InvitationPostgres) MarkSigned(ctx context.Context, id, signerName string, signedAt time.Time) error {
	const q = `
		UPDATE invitations
		SET status = $2, signer_name = $3, signed_at = $4
		WHERE id = $1 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, q, id, model.InvitationCompleted, signerName, signedAt, model.InvitationPending)
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
