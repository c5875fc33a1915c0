package model

import "time"

// FinalizationStatus is the derived signing progress for one document.
// It is recomputed from the invitation rows on every call and never
// persisted. CompletedDocumentURL points at the finalized artifact once
// one exists.
type FinalizationStatus struct {
	TotalSignatures      int        `json:"total_signatures"`
	CompletedSignatures  int        `json:"completed_signatures"`
	IsReady              bool       `json:"is_ready"`
	IsFinalized          bool       `json:"is_finalized"`
	FinalizedAt          *time.Time `json:"finalized_at"`
	CompletedDocumentURL *string    `json:"completed_document_url"`
}
