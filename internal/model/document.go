package model

import "time"

// DocumentStatus enumerates the lifecycle states of a document.
type DocumentStatus string

const (
	// DocumentDraft is the state after upload, before any invitations exist.
	DocumentDraft DocumentStatus = "draft"
	// DocumentPending means invitations have been sent and signatures are outstanding.
	DocumentPending DocumentStatus = "pending"
	// DocumentCompleted means every invitation has been signed and the
	// finalized artifact has been produced.
	DocumentCompleted DocumentStatus = "completed"
)

// Document represents an uploaded file awaiting signatures.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Document struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Status        DocumentStatus `json:"status"`
	CreatorID     string         `json:"creator_id"`
	Filename      string         `json:"filename"`
	StoragePath   string         `json:"storage_path"`
	Size          int64          `json:"size"`
	ContentType   string         `json:"content_type"`
	CompletedPath *string        `json:"completed_path"`
	FinalizedAt   *time.Time     `json:"finalized_at"`
	CreatedAt     time.Time      `json:"created_at"`
}
