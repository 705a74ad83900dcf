package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage/memstore"
)

func TestProfileCountsEveryApprovalState(t *testing.T) {
	store := memstore.New()
	profiles := NewProfileService(store)
	ctx := context.Background()

	// Three vents across all approval states for u1
	states := []models.ApprovalState{models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected}
	var approved *models.Vent
	for _, state := range states {
		vent, err := store.CreateVent(ctx, &models.Vent{
			AuthorID:      "u1",
			Text:          "vent " + string(state),
			Identity:      models.IdentityHidden,
			AllowComments: true,
			ApprovalState: models.ApprovalPending,
		})
		require.NoError(t, err)
		if state != models.ApprovalPending {
			require.NoError(t, store.SetApprovalState(ctx, vent.ID.Hex(), state))
		}
		if state == models.ApprovalApproved {
			approved = vent
		}
	}

	// Two comments by u1 on the approved vent
	for _, body := range []string{"first", "second"} {
		_, err := store.CreateComment(ctx, &models.Comment{
			VentID:   approved.ID,
			AuthorID: "u1",
			Text:     body,
			Identity: models.IdentityHidden,
		})
		require.NoError(t, err)
	}

	summary, err := profiles.Summary(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(3), summary.VentCount)
	require.Equal(t, int64(2), summary.CommentCount)

	// Reputation metrics are fixed defaults until a scoring component exists
	require.Equal(t, 0, summary.ImpactPoints)
	require.Equal(t, 0.0, summary.CommunityAcceptance)
}

func TestProfileOfUnknownUserIsZero(t *testing.T) {
	store := memstore.New()
	profiles := NewProfileService(store)

	summary, err := profiles.Summary(context.Background(), "nobody")
	require.NoError(t, err)
	require.Equal(t, int64(0), summary.VentCount)
	require.Equal(t, int64(0), summary.CommentCount)
}

func TestFeedShowsOnlyApprovedVents(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()

	for i, state := range []models.ApprovalState{models.ApprovalApproved, models.ApprovalPending, models.ApprovalRejected} {
		vent, err := store.CreateVent(ctx, &models.Vent{
			AuthorID:      "u1",
			Text:          "vent",
			Identity:      models.IdentityHidden,
			AllowComments: true,
			ApprovalState: models.ApprovalPending,
		})
		require.NoError(t, err)
		if state != models.ApprovalPending {
			require.NoError(t, store.SetApprovalState(ctx, vent.ID.Hex(), state))
		}
		_ = i
	}

	vents, total, err := store.ApprovedVents(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, vents, 1)
	require.Equal(t, models.ApprovalApproved, vents[0].ApprovalState)
}
