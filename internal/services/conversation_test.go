package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage"
	"github.com/ventlinehq/ventline-backend/internal/storage/memstore"
)

// mapSessions is an in-process session arena for tests.
type mapSessions struct {
	states map[string]models.ConversationState
}

func newMapSessions() *mapSessions {
	return &mapSessions{states: make(map[string]models.ConversationState)}
}

func (m *mapSessions) Get(_ context.Context, userID string) (models.ConversationState, error) {
	if state, ok := m.states[userID]; ok {
		return state, nil
	}
	return models.IdleState(userID), nil
}

func (m *mapSessions) Save(_ context.Context, state models.ConversationState) error {
	m.states[state.UserID] = state
	return nil
}

func (m *mapSessions) Clear(_ context.Context, userID string) error {
	delete(m.states, userID)
	return nil
}

func newTestConversation() (*ConversationService, *memstore.Store, *mapSessions) {
	store := memstore.New()
	sessions := newMapSessions()
	return NewConversationService(store, sessions), store, sessions
}

func button(userID string, action Action) Event {
	return Event{Type: EventButton, UserID: userID, Action: action}
}

func text(userID, body string) Event {
	return Event{Type: EventText, UserID: userID, Text: body}
}

// seedApprovedVent creates an approved vent to comment on.
func seedApprovedVent(t *testing.T, store *memstore.Store, authorID string, allowComments bool) *models.Vent {
	t.Helper()
	vent, err := store.CreateVent(context.Background(), &models.Vent{
		AuthorID:      authorID,
		Text:          "approved vent",
		Identity:      models.IdentityHidden,
		AllowComments: allowComments,
		ApprovalState: models.ApprovalPending,
	})
	require.NoError(t, err)
	require.NoError(t, store.SetApprovalState(context.Background(), vent.ID.Hex(), models.ApprovalApproved))
	vent.ApprovalState = models.ApprovalApproved
	return vent
}

func TestGuidedVentFlowCommitsPendingVent(t *testing.T) {
	conv, store, sessions := newTestConversation()
	ctx := context.Background()

	effect, err := conv.HandleEvent(ctx, button("u1", ActionStartVent))
	require.NoError(t, err)
	require.Equal(t, EffectPrompt, effect.Type)

	effect, err = conv.HandleEvent(ctx, text("u1", "long day at work"))
	require.NoError(t, err)
	require.Equal(t, EffectPrompt, effect.Type)
	require.Contains(t, effect.Actions, ActionShowIdentity)

	effect, err = conv.HandleEvent(ctx, button("u1", ActionShowIdentity))
	require.NoError(t, err)
	require.Equal(t, EffectPrompt, effect.Type)

	allowEvent := button("u1", ActionAllowComments)
	allowEvent.Tags = []string{"work", "stress"}
	effect, err = conv.HandleEvent(ctx, allowEvent)
	require.NoError(t, err)
	require.Equal(t, EffectCommittedVent, effect.Type)
	require.NotNil(t, effect.Vent)

	require.Equal(t, 1, store.Size())
	vent, err := store.VentByID(ctx, effect.Vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "u1", vent.AuthorID)
	require.Equal(t, "long day at work", vent.Text)
	require.Equal(t, "u1", vent.Identity) // chose to show
	require.True(t, vent.AllowComments)
	require.Equal(t, []string{"work", "stress"}, vent.Tags)
	require.Equal(t, models.ApprovalPending, vent.ApprovalState)

	// Session evicted once idle
	_, ok := sessions.states["u1"]
	require.False(t, ok)
}

func TestGuidedVentFlowHiddenAndDisallowed(t *testing.T) {
	conv, store, _ := newTestConversation()
	ctx := context.Background()

	_, err := conv.HandleEvent(ctx, button("u2", ActionStartVent))
	require.NoError(t, err)
	_, err = conv.HandleEvent(ctx, text("u2", "keep this one quiet"))
	require.NoError(t, err)
	_, err = conv.HandleEvent(ctx, button("u2", ActionHideIdentity))
	require.NoError(t, err)
	effect, err := conv.HandleEvent(ctx, button("u2", ActionDisallowComments))
	require.NoError(t, err)
	require.Equal(t, EffectCommittedVent, effect.Type)

	vent, err := store.VentByID(ctx, effect.Vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, models.IdentityHidden, vent.Identity)
	require.False(t, vent.AllowComments)
	require.Empty(t, vent.Tags)
}

func TestEmptyVentTextNeverCreatesRecord(t *testing.T) {
	conv, store, sessions := newTestConversation()
	ctx := context.Background()

	_, err := conv.HandleEvent(ctx, button("u1", ActionStartVent))
	require.NoError(t, err)

	for _, body := range []string{"", "   ", "\n\t "} {
		effect, err := conv.HandleEvent(ctx, text("u1", body))
		require.NoError(t, err)
		require.Equal(t, EffectRejected, effect.Type)
	}

	require.Equal(t, 0, store.Size())
	state := sessions.states["u1"]
	require.Equal(t, models.ModeAwaitingVentText, state.Mode)
}

func TestStrayIdleTextTakesFastPath(t *testing.T) {
	conv, store, _ := newTestConversation()
	ctx := context.Background()

	effect, err := conv.HandleEvent(ctx, text("u9", "I had a rough day 😞"))
	require.NoError(t, err)
	require.Equal(t, EffectCommittedVent, effect.Type)
	require.NotNil(t, effect.Vent)

	vent, err := store.VentByID(ctx, effect.Vent.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, "I had a rough day 😞", vent.Text)
	require.Equal(t, models.IdentityHidden, vent.Identity)
	require.True(t, vent.AllowComments)
	require.Empty(t, vent.Tags)
	require.Equal(t, models.ApprovalPending, vent.ApprovalState)
}

func TestCancelFromAnyStateWritesNothing(t *testing.T) {
	conv, store, sessions := newTestConversation()
	ctx := context.Background()
	parent := seedApprovedVent(t, store, "author", true)
	sizeBefore := store.Size()

	// Walk into every non-idle mode and cancel out of it.
	steps := [][]Event{
		{button("u1", ActionStartVent)},
		{button("u1", ActionStartVent), text("u1", "draft")},
		{button("u1", ActionStartVent), text("u1", "draft"), button("u1", ActionHideIdentity)},
		{{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: parent.ID.Hex()}},
		{{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: parent.ID.Hex()}, text("u1", "draft reply")},
	}

	for _, walk := range steps {
		for _, event := range walk {
			_, err := conv.HandleEvent(ctx, event)
			require.NoError(t, err)
		}
		effect, err := conv.HandleEvent(ctx, button("u1", ActionCancel))
		require.NoError(t, err)
		require.Equal(t, EffectCancelled, effect.Type)

		require.Equal(t, sizeBefore, store.Size())
		_, ok := sessions.states["u1"]
		require.False(t, ok)
	}
}

func TestUnrecognizedEventIsNoop(t *testing.T) {
	conv, store, sessions := newTestConversation()
	ctx := context.Background()

	_, err := conv.HandleEvent(ctx, button("u1", ActionStartVent))
	require.NoError(t, err)
	_, err = conv.HandleEvent(ctx, text("u1", "my vent"))
	require.NoError(t, err)

	// Identity step: a policy button makes no sense here.
	effect, err := conv.HandleEvent(ctx, button("u1", ActionAllowComments))
	require.NoError(t, err)
	require.Equal(t, EffectNotice, effect.Type)

	state := sessions.states["u1"]
	require.Equal(t, models.ModeAwaitingVentIdentity, state.Mode)
	require.Equal(t, "my vent", state.DraftText)
	require.Equal(t, 0, store.Size())
}

func TestCommentFlowOnApprovedVent(t *testing.T) {
	conv, store, _ := newTestConversation()
	ctx := context.Background()
	parent := seedApprovedVent(t, store, "author", true)

	start := Event{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: parent.ID.Hex()}
	effect, err := conv.HandleEvent(ctx, start)
	require.NoError(t, err)
	require.Equal(t, EffectPrompt, effect.Type)

	_, err = conv.HandleEvent(ctx, text("u1", "hang in there"))
	require.NoError(t, err)

	effect, err = conv.HandleEvent(ctx, button("u1", ActionShowIdentity))
	require.NoError(t, err)
	require.Equal(t, EffectCommittedComment, effect.Type)
	require.NotNil(t, effect.Comment)

	comments, err := store.CommentsByVent(ctx, parent.ID.Hex())
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "hang in there", comments[0].Text)
	require.Equal(t, "u1", comments[0].Identity) // shown, independent of parent's hidden
	require.Equal(t, "u1", comments[0].AuthorID)
}

func TestCommentFinishDefaultsToHiddenIdentity(t *testing.T) {
	conv, store, _ := newTestConversation()
	ctx := context.Background()
	parent := seedApprovedVent(t, store, "author", true)

	_, err := conv.HandleEvent(ctx, Event{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: parent.ID.Hex()})
	require.NoError(t, err)
	_, err = conv.HandleEvent(ctx, text("u1", "me too"))
	require.NoError(t, err)

	effect, err := conv.HandleEvent(ctx, button("u1", ActionFinish))
	require.NoError(t, err)
	require.Equal(t, EffectCommittedComment, effect.Type)
	require.Equal(t, models.IdentityHidden, effect.Comment.Identity)
}

func TestCommentBlockedWhenCommentsDisabled(t *testing.T) {
	conv, store, sessions := newTestConversation()
	ctx := context.Background()
	parent := seedApprovedVent(t, store, "author", false)
	sizeBefore := store.Size()

	effect, err := conv.HandleEvent(ctx, Event{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: parent.ID.Hex()})
	require.NoError(t, err)
	require.Equal(t, EffectRejected, effect.Type)

	require.Equal(t, sizeBefore, store.Size())
	_, ok := sessions.states["u1"]
	require.False(t, ok)
}

func TestCommentBlockedOnPendingVent(t *testing.T) {
	conv, store, _ := newTestConversation()
	ctx := context.Background()

	pending, err := store.CreateVent(ctx, &models.Vent{
		AuthorID:      "author",
		Text:          "still pending",
		Identity:      models.IdentityHidden,
		AllowComments: true,
		ApprovalState: models.ApprovalPending,
	})
	require.NoError(t, err)
	sizeBefore := store.Size()

	effect, err := conv.HandleEvent(ctx, Event{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: pending.ID.Hex()})
	require.NoError(t, err)
	require.Equal(t, EffectRejected, effect.Type)
	require.Equal(t, sizeBefore, store.Size())
}

func TestCommentBlockedOnMissingVent(t *testing.T) {
	conv, store, _ := newTestConversation()
	ctx := context.Background()

	effect, err := conv.HandleEvent(ctx, Event{Type: EventButton, UserID: "u1", Action: ActionStartComment, VentID: "652f1f77bcf86cd799439011"})
	require.NoError(t, err)
	require.Equal(t, EffectRejected, effect.Type)
	require.Equal(t, 0, store.Size())
}

func TestUsersDoNotInterfere(t *testing.T) {
	conv, store, sessions := newTestConversation()
	ctx := context.Background()

	_, err := conv.HandleEvent(ctx, button("u1", ActionStartVent))
	require.NoError(t, err)

	// u2's stray text commits immediately and must not disturb u1's draft.
	effect, err := conv.HandleEvent(ctx, text("u2", "different user"))
	require.NoError(t, err)
	require.Equal(t, EffectCommittedVent, effect.Type)

	state := sessions.states["u1"]
	require.Equal(t, models.ModeAwaitingVentText, state.Mode)

	// u1's text lands in their own draft, not in a new vent.
	_, err = conv.HandleEvent(ctx, text("u1", "my own words"))
	require.NoError(t, err)
	require.Equal(t, 1, store.Size())

	count, err := store.CountVentsByAuthor(ctx, "u2")
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestAdvanceIsPureOfStorage(t *testing.T) {
	// Advance on its own never needs a store: the commit is carried in the
	// outcome for the caller to execute.
	state := models.IdleState("u1")
	out := Advance(state, text("u1", "straight to pending"))
	require.NotNil(t, out.CommitVent)
	require.Equal(t, models.ApprovalPending, out.CommitVent.ApprovalState)
	require.Equal(t, models.ModeIdle, out.State.Mode)
}

func TestStoreFailureLeavesStateUntouched(t *testing.T) {
	store := memstore.New()
	sessions := newMapSessions()
	conv := NewConversationService(failingStore{store}, sessions)
	ctx := context.Background()

	_, err := conv.HandleEvent(ctx, button("u1", ActionStartVent))
	require.NoError(t, err)
	_, err = conv.HandleEvent(ctx, text("u1", "about to fail"))
	require.NoError(t, err)
	_, err = conv.HandleEvent(ctx, button("u1", ActionHideIdentity))
	require.NoError(t, err)

	before := sessions.states["u1"]
	effect, err := conv.HandleEvent(ctx, button("u1", ActionAllowComments))
	require.Error(t, err)
	require.Equal(t, EffectRejected, effect.Type)

	// Same step is retryable: the draft survives the failed write.
	require.Equal(t, before, sessions.states["u1"])
	require.Equal(t, 0, store.Size())
}

// failingStore rejects every write with ErrUnavailable.
type failingStore struct {
	*memstore.Store
}

func (f failingStore) CreateVent(context.Context, *models.Vent) (*models.Vent, error) {
	return nil, storage.ErrUnavailable
}

func (f failingStore) CreateComment(context.Context, *models.Comment) (*models.Comment, error) {
	return nil, storage.ErrUnavailable
}
