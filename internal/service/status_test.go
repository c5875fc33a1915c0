package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signdesk/internal/model"
	repoMocks "signdesk/internal/repository/mocks"
	storeMocks "signdesk/internal/storage/mocks"
)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func signedInvitation(id string, signedAt time.Time) model.Invitation {
	return model.Invitation{
		ID:             id,
		DocumentID:     "doc-1",
		RecipientName:  "Recipient " + id,
		RecipientEmail: id + "@example.com",
		Status:         model.InvitationCompleted,
		SignerName:     strPtr("Signer " + id),
		SignedAt:       timePtr(signedAt),
		ExpiresAt:      signedAt.Add(24 * time.Hour),
	}
}

func pendingInvitation(id string) model.Invitation {
	return model.Invitation{
		ID:             id,
		DocumentID:     "doc-1",
		RecipientName:  "Recipient " + id,
		RecipientEmail: id + "@example.com",
		Status:         model.InvitationPending,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
}

func testDocument() *model.Document {
	return &model.Document{
		ID:          "doc-1",
		Title:       "Lease Agreement",
		Status:      model.DocumentPending,
		CreatorID:   "user-1",
		Filename:    "abc.pdf",
		StoragePath: "documents/abc.pdf",
		CreatedAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestShapeStatus_NoInvitations(t *testing.T) {
	doc := testDocument()
	fin := aggregate(doc, nil)

	payload := ShapeStatus(doc, nil, fin)

	assert.Equal(t, 0, payload.Metrics.TotalSignatures)
	assert.Equal(t, 0, payload.Metrics.CompletedSignatures)
	assert.Equal(t, 0, payload.Metrics.ProgressPercentage)
	assert.False(t, payload.Finalization.IsReady)
	assert.Empty(t, payload.Signatures)
	assert.Empty(t, payload.Invitations)
}

func TestShapeStatus_SignaturesSortedForAnyOrder(t *testing.T) {
	t1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)

	a := signedInvitation("a", t1)
	b := signedInvitation("b", t2)
	c := signedInvitation("c", t3)

	orders := [][]model.Invitation{
		{a, b, c}, {a, c, b}, {b, a, c},
		{b, c, a}, {c, a, b}, {c, b, a},
	}

	doc := testDocument()
	for _, invs := range orders {
		payload := ShapeStatus(doc, invs, aggregate(doc, invs))

		require.Len(t, payload.Signatures, 3)
		assert.Equal(t, "a", payload.Signatures[0].InvitationID)
		assert.Equal(t, "b", payload.Signatures[1].InvitationID)
		assert.Equal(t, "c", payload.Signatures[2].InvitationID)
	}
}

func TestShapeStatus_CompletedWithoutSignedAtExcluded(t *testing.T) {
	broken := model.Invitation{
		ID:             "broken",
		DocumentID:     "doc-1",
		RecipientName:  "Broken",
		RecipientEmail: "broken@example.com",
		Status:         model.InvitationCompleted,
		SignedAt:       nil,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
	good := signedInvitation("good", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	invs := []model.Invitation{broken, good}

	doc := testDocument()
	fin := aggregate(doc, invs)
	payload := ShapeStatus(doc, invs, fin)

	require.Len(t, payload.Signatures, 1)
	assert.Equal(t, "good", payload.Signatures[0].InvitationID)
	// The broken row still shows up in the invitation list.
	assert.Len(t, payload.Invitations, 2)
	// And it does not count as a completed signature.
	assert.Equal(t, 2, fin.TotalSignatures)
	assert.Equal(t, 1, fin.CompletedSignatures)
}

func TestShapeStatus_MetricsBounds(t *testing.T) {
	t1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		invs         []model.Invitation
		wantProgress int
	}{
		{"none", nil, 0},
		{"one of three", []model.Invitation{signedInvitation("a", t1), pendingInvitation("b"), pendingInvitation("c")}, 33},
		{"two of three", []model.Invitation{signedInvitation("a", t1), signedInvitation("b", t1.Add(time.Hour)), pendingInvitation("c")}, 67},
		{"all signed", []model.Invitation{signedInvitation("a", t1), signedInvitation("b", t1.Add(time.Hour))}, 100},
	}

	doc := testDocument()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fin := aggregate(doc, tc.invs)
			payload := ShapeStatus(doc, tc.invs, fin)

			assert.Equal(t, tc.wantProgress, payload.Metrics.ProgressPercentage)
			assert.LessOrEqual(t, fin.CompletedSignatures, fin.TotalSignatures)
			assert.GreaterOrEqual(t, payload.Metrics.ProgressPercentage, 0)
			assert.LessOrEqual(t, payload.Metrics.ProgressPercentage, 100)
		})
	}
}

func TestShapeStatus_TimestampsRoundTrip(t *testing.T) {
	t1 := time.Date(2025, 6, 2, 9, 30, 45, 0, time.UTC)
	invs := []model.Invitation{signedInvitation("a", t1)}
	doc := testDocument()

	payload := ShapeStatus(doc, invs, aggregate(doc, invs))

	for _, raw := range []string{
		payload.Document.CreatedAt,
		payload.Signatures[0].SignedAt,
		payload.Invitations[0].ExpiresAt,
		*payload.Invitations[0].SignedAt,
	} {
		parsed, err := time.Parse(time.RFC3339, raw)
		require.NoError(t, err)
		assert.False(t, parsed.IsZero())
	}
	assert.Equal(t, t1, mustParse(t, payload.Signatures[0].SignedAt))
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed.UTC()
}

func TestShapeStatus_NullsAreEmittedNotOmitted(t *testing.T) {
	doc := testDocument()
	invs := []model.Invitation{pendingInvitation("p")}
	payload := ShapeStatus(doc, invs, aggregate(doc, invs))

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"finalizedAt":null`)
	assert.Contains(t, string(raw), `"completedDocumentUrl":null`)
	assert.Contains(t, string(raw), `"signedAt":null`)
}

func TestShapeStatus_SpecificExample(t *testing.T) {
	// Three invitations signed out of order plus one pending: the
	// signatures list comes back in chronological order.
	t1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	invs := []model.Invitation{
		signedInvitation("late", t2),
		signedInvitation("early", t1),
		pendingInvitation("waiting"),
	}

	doc := testDocument()
	fin := aggregate(doc, invs)
	payload := ShapeStatus(doc, invs, fin)

	require.Len(t, payload.Signatures, 2)
	assert.Equal(t, "early", payload.Signatures[0].InvitationID)
	assert.Equal(t, "late", payload.Signatures[1].InvitationID)
	assert.Equal(t, 3, payload.Metrics.TotalSignatures)
	assert.Equal(t, 2, payload.Metrics.CompletedSignatures)
	assert.Equal(t, 67, payload.Metrics.ProgressPercentage)
	assert.False(t, payload.Finalization.IsReady)
}

func TestAggregate_ReadyAndFinalized(t *testing.T) {
	t1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	finalizedAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	doc := testDocument()
	doc.Status = model.DocumentCompleted
	doc.CompletedPath = strPtr("completed/abc.pdf")
	doc.FinalizedAt = &finalizedAt

	invs := []model.Invitation{signedInvitation("a", t1)}
	fin := aggregate(doc, invs)

	assert.True(t, fin.IsReady)
	assert.True(t, fin.IsFinalized)
	require.NotNil(t, fin.FinalizedAt)
	assert.Equal(t, finalizedAt, *fin.FinalizedAt)
}

func TestStatusService_CompletionStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mDoc *repoMocks.MockDocumentRepository, mInv *repoMocks.MockInvitationRepository, mStore *storeMocks.MockStorage)
		wantErr    error
		check      func(t *testing.T, payload *StatusPayload)
	}{
		{
			name: "happy path",
			setupMocks: func(mDoc *repoMocks.MockDocumentRepository, mInv *repoMocks.MockInvitationRepository, mStore *storeMocks.MockStorage) {
				mDoc.On("FindByIDForRequester", ctx, "doc-1", "user-1", "user@example.com").
					Return(testDocument(), nil)
				mInv.On("ListByDocument", ctx, "doc-1").
					Return([]model.Invitation{pendingInvitation("p")}, nil)
			},
			check: func(t *testing.T, payload *StatusPayload) {
				assert.Equal(t, "doc-1", payload.Document.ID)
				assert.Equal(t, 1, payload.Metrics.TotalSignatures)
				assert.Equal(t, 0, payload.Metrics.ProgressPercentage)
			},
		},
		{
			name: "missing and forbidden are the same not found",
			setupMocks: func(mDoc *repoMocks.MockDocumentRepository, mInv *repoMocks.MockInvitationRepository, mStore *storeMocks.MockStorage) {
				mDoc.On("FindByIDForRequester", ctx, "doc-1", "user-1", "user@example.com").
					Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "repository error",
			setupMocks: func(mDoc *repoMocks.MockDocumentRepository, mInv *repoMocks.MockInvitationRepository, mStore *storeMocks.MockStorage) {
				mDoc.On("FindByIDForRequester", ctx, "doc-1", "user-1", "user@example.com").
					Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
		{
			name: "finalized document carries a presigned url",
			setupMocks: func(mDoc *repoMocks.MockDocumentRepository, mInv *repoMocks.MockInvitationRepository, mStore *storeMocks.MockStorage) {
				finalizedAt := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
				doc := testDocument()
				doc.Status = model.DocumentCompleted
				doc.CompletedPath = strPtr("completed/abc.pdf")
				doc.FinalizedAt = &finalizedAt

				mDoc.On("FindByIDForRequester", ctx, "doc-1", "user-1", "user@example.com").
					Return(doc, nil)
				mInv.On("ListByDocument", ctx, "doc-1").
					Return([]model.Invitation{signedInvitation("a", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))}, nil)
				mStore.On("PresignGet", ctx, "completed/abc.pdf", 15*time.Minute).
					Return("https://minio.local/completed/abc.pdf?sig=x", nil)
			},
			check: func(t *testing.T, payload *StatusPayload) {
				assert.True(t, payload.Finalization.IsFinalized)
				require.NotNil(t, payload.Finalization.CompletedDocumentURL)
				assert.Contains(t, *payload.Finalization.CompletedDocumentURL, "completed/abc.pdf")
				require.NotNil(t, payload.Finalization.FinalizedAt)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDoc := new(repoMocks.MockDocumentRepository)
			mInv := new(repoMocks.MockInvitationRepository)
			mStore := new(storeMocks.MockStorage)
			svc := NewStatusService(mDoc, mInv, mStore, 15*time.Minute)

			tt.setupMocks(mDoc, mInv, mStore)

			payload, err := svc.CompletionStatus(ctx, "doc-1", "user-1", "user@example.com")

			if tt.wantErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, ErrNotFound)
				}
			} else {
				require.NoError(t, err)
				tt.check(t, payload)
			}
			mDoc.AssertExpectations(t)
			mInv.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}

func TestStatusService_FinalizationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("missing document fails fast", func(t *testing.T) {
		mDoc := new(repoMocks.MockDocumentRepository)
		mInv := new(repoMocks.MockInvitationRepository)
		svc := NewStatusService(mDoc, mInv, nil, 15*time.Minute)

		mDoc.On("FindByID", ctx, "gone").Return(nil, sql.ErrNoRows)

		fin, err := svc.FinalizationStatus(ctx, "gone")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, fin)
		mDoc.AssertExpectations(t)
	})

	t.Run("recomputes from current rows", func(t *testing.T) {
		mDoc := new(repoMocks.MockDocumentRepository)
		mInv := new(repoMocks.MockInvitationRepository)
		svc := NewStatusService(mDoc, mInv, nil, 15*time.Minute)

		t1 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		mDoc.On("FindByID", ctx, "doc-1").Return(testDocument(), nil)
		mInv.On("ListByDocument", ctx, "doc-1").
			Return([]model.Invitation{signedInvitation("a", t1), signedInvitation("b", t1.Add(time.Hour))}, nil)

		fin, err := svc.FinalizationStatus(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, 2, fin.TotalSignatures)
		assert.Equal(t, 2, fin.CompletedSignatures)
		assert.True(t, fin.IsReady)
		assert.False(t, fin.IsFinalized)
		mDoc.AssertExpectations(t)
		mInv.AssertExpectations(t)
	})
}
