package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage"
	"github.com/ventlinehq/ventline-backend/internal/storage/memstore"
)

func newTestModeration(moderatorIDs ...string) (*ModerationService, *memstore.Store) {
	store := memstore.New()
	return NewModerationService(store, moderatorIDs), store
}

func seedPendingVent(t *testing.T, store *memstore.Store, authorID string) *models.Vent {
	t.Helper()
	vent, err := store.CreateVent(context.Background(), &models.Vent{
		AuthorID:      authorID,
		Text:          "waiting for review",
		Identity:      models.IdentityHidden,
		AllowComments: true,
		ApprovalState: models.ApprovalPending,
	})
	require.NoError(t, err)
	return vent
}

func TestReviewByNonModeratorNeverMutates(t *testing.T) {
	mod, store := newTestModeration("mod-1")
	ctx := context.Background()
	vent := seedPendingVent(t, store, "u1")

	err := mod.Review(ctx, vent.ID.Hex(), "intruder", DecisionApprove)
	require.ErrorIs(t, err, ErrNotAuthorized)

	got, err := store.VentByID(ctx, vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, models.ApprovalPending, got.ApprovalState)
}

func TestReviewApprove(t *testing.T) {
	mod, store := newTestModeration("mod-1")
	ctx := context.Background()
	vent := seedPendingVent(t, store, "u1")

	require.NoError(t, mod.Review(ctx, vent.ID.Hex(), "mod-1", DecisionApprove))

	got, err := store.VentByID(ctx, vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, models.ApprovalApproved, got.ApprovalState)
}

func TestReviewIsOneShot(t *testing.T) {
	mod, store := newTestModeration("mod-1", "mod-2")
	ctx := context.Background()
	vent := seedPendingVent(t, store, "u1")

	require.NoError(t, mod.Review(ctx, vent.ID.Hex(), "mod-1", DecisionReject))

	// A second review fails and cannot flip the first decision, even from
	// another moderator.
	err := mod.Review(ctx, vent.ID.Hex(), "mod-2", DecisionApprove)
	require.ErrorIs(t, err, storage.ErrAlreadyReviewed)

	got, err := store.VentByID(ctx, vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, models.ApprovalRejected, got.ApprovalState)
}

func TestReviewUnknownVent(t *testing.T) {
	mod, _ := newTestModeration("mod-1")
	err := mod.Review(context.Background(), "652f1f77bcf86cd799439011", "mod-1", DecisionApprove)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReviewInvalidDecision(t *testing.T) {
	mod, store := newTestModeration("mod-1")
	ctx := context.Background()
	vent := seedPendingVent(t, store, "u1")

	err := mod.Review(ctx, vent.ID.Hex(), "mod-1", Decision("maybe"))
	require.ErrorIs(t, err, ErrInvalidDecision)

	got, err := store.VentByID(ctx, vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, models.ApprovalPending, got.ApprovalState)
}

func TestApprovalOpensCommenting(t *testing.T) {
	mod, store := newTestModeration("mod-1")
	ctx := context.Background()
	vent := seedPendingVent(t, store, "u1")

	// Pending vents reject comments.
	_, err := store.CreateComment(ctx, &models.Comment{
		VentID:   vent.ID,
		AuthorID: "u2",
		Text:     "too early",
		Identity: models.IdentityHidden,
	})
	require.ErrorIs(t, err, storage.ErrNotApproved)

	require.NoError(t, mod.Review(ctx, vent.ID.Hex(), "mod-1", DecisionApprove))

	_, err = store.CreateComment(ctx, &models.Comment{
		VentID:   vent.ID,
		AuthorID: "u2",
		Text:     "right on time",
		Identity: models.IdentityHidden,
	})
	require.NoError(t, err)
}

func TestPendingQueueRequiresModerator(t *testing.T) {
	mod, store := newTestModeration("mod-1")
	ctx := context.Background()
	seedPendingVent(t, store, "u1")
	seedPendingVent(t, store, "u2")

	_, err := mod.Pending(ctx, "intruder", 10)
	require.ErrorIs(t, err, ErrNotAuthorized)

	vents, err := mod.Pending(ctx, "mod-1", 10)
	require.NoError(t, err)
	require.Len(t, vents, 2)
}
