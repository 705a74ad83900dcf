package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

// Action tags carried by button presses from the chat frontend. The values
// double as the wire format, so they must stay stable.
type Action string

const (
	ActionStartVent        Action = "start_vent"
	ActionStartComment     Action = "start_comment"
	ActionShowIdentity     Action = "show_identity"
	ActionHideIdentity     Action = "hide_identity"
	ActionAllowComments    Action = "allow_comments"
	ActionDisallowComments Action = "disallow_comments"
	ActionFinish           Action = "finish"
	ActionCancel           Action = "cancel"
	ActionMyProfile        Action = "my_profile"
)

// EventType distinguishes free text from button presses.
type EventType string

const (
	EventText   EventType = "text"
	EventButton EventType = "button"
)

// Event is one inbound chat interaction: a free-text message or a button press.
type Event struct {
	Type   EventType
	UserID string
	Text   string   // free text (EventText only)
	Action Action   // button action (EventButton only)
	VentID string   // start_comment: the target vent
	Tags   []string // allow_comments: optional labels for the vent
}

// EffectType classifies what the frontend should render next.
type EffectType string

const (
	EffectPrompt           EffectType = "prompt"
	EffectNotice           EffectType = "notice"
	EffectCommittedVent    EffectType = "committed_vent"
	EffectCommittedComment EffectType = "committed_comment"
	EffectCancelled        EffectType = "cancelled"
	EffectRejected         EffectType = "rejected"
)

// Effect is the outbound result of advancing the flow: a prompt with the
// buttons now available, a notice, a commit confirmation, or a rejection that
// re-prompts the same step.
type Effect struct {
	Type    EffectType
	Text    string
	Actions []Action
	Vent    *models.Vent
	Comment *models.Comment
}

// User-facing reply texts.
const (
	msgAskVentText       = "Please send your vent text (text + emojis allowed):"
	msgAskVentIdentity   = "Choose whether to show your identity on this vent:"
	msgAskVentPolicy     = "Should others be able to comment on this vent?"
	msgAskCommentText    = "Please send your comment text:"
	msgAskCommentIdent   = "Choose whether to show your identity on this comment:"
	msgVentSubmitted     = "Your vent has been sent for moderation 🔥"
	msgCommentAdded      = "Comment added to vent ✅"
	msgVentCancelled     = "Vent cancelled ✅"
	msgCommentCancelled  = "Comment cancelled ✅"
	msgNothingToCancel   = "Nothing to cancel."
	msgEmptyText         = "Your message is empty. Please send some text:"
	msgUnexpectedInput   = "I wasn't expecting that here. Use the buttons, or Cancel to start over."
	msgVentNotFound      = "That vent doesn't exist."
	msgVentNotApproved   = "That vent hasn't been approved yet."
	msgCommentsDisabled  = "The author turned off comments on that vent."
	msgSubmissionTrouble = "Something went wrong saving your submission. Please try again."
)

// Outcome is the pure result of Advance: the next conversation state, the
// effect to render, and (when a flow completed) the draft record to persist.
// Advance never touches storage; the caller executes the commit.
type Outcome struct {
	State         models.ConversationState
	Effect        Effect
	CommitVent    *models.Vent
	CommitComment *models.Comment
}

// Advance drives the submission state machine one step. It is a pure function
// of (state, event): no storage, no clock beyond the state timestamp, so every
// transition is unit-testable in isolation.
//
// Unrecognized events for the current mode produce an informational reply and
// no transition. Cancel works from any mode and discards the draft.
func Advance(state models.ConversationState, event Event) Outcome {
	if event.Type == EventButton && event.Action == ActionCancel {
		return cancel(state)
	}

	switch state.Mode {
	case models.ModeIdle, "":
		return advanceIdle(state, event)
	case models.ModeAwaitingVentText:
		return advanceVentText(state, event)
	case models.ModeAwaitingVentIdentity:
		return advanceVentIdentity(state, event)
	case models.ModeAwaitingVentPolicy:
		return advanceVentPolicy(state, event)
	case models.ModeAwaitingCommentText:
		return advanceCommentText(state, event)
	case models.ModeAwaitingCommentIdentity:
		return advanceCommentIdentity(state, event)
	default:
		// Unknown persisted mode (e.g. stale draft from an older build):
		// reset rather than wedge the user.
		return cancel(state)
	}
}

func cancel(state models.ConversationState) Outcome {
	text := msgVentCancelled
	switch state.Mode {
	case models.ModeIdle, "":
		text = msgNothingToCancel
	case models.ModeAwaitingCommentText, models.ModeAwaitingCommentIdentity:
		text = msgCommentCancelled
	}
	return Outcome{
		State:  models.IdleState(state.UserID),
		Effect: Effect{Type: EffectCancelled, Text: text},
	}
}

func advanceIdle(state models.ConversationState, event Event) Outcome {
	switch {
	case event.Type == EventText:
		// Fast path: stray text with no session in progress becomes a pending
		// vent with defaults (identity hidden, comments allowed, no tags).
		text := strings.TrimSpace(event.Text)
		if text == "" {
			return Outcome{
				State:  state,
				Effect: Effect{Type: EffectRejected, Text: msgEmptyText},
			}
		}
		return Outcome{
			State:  models.IdleState(state.UserID),
			Effect: Effect{Type: EffectCommittedVent, Text: msgVentSubmitted},
			CommitVent: &models.Vent{
				AuthorID:      event.UserID,
				Text:          text,
				Identity:      models.IdentityHidden,
				AllowComments: true,
				Tags:          []string{},
				ApprovalState: models.ApprovalPending,
			},
		}

	case event.Action == ActionStartVent:
		next := state
		next.Mode = models.ModeAwaitingVentText
		return Outcome{
			State:  next,
			Effect: Effect{Type: EffectPrompt, Text: msgAskVentText, Actions: []Action{ActionCancel}},
		}

	case event.Action == ActionStartComment:
		// Eligibility of the target vent is validated by the caller before
		// this transition is reached.
		next := state
		next.Mode = models.ModeAwaitingCommentText
		next.DraftVentID = event.VentID
		return Outcome{
			State:  next,
			Effect: Effect{Type: EffectPrompt, Text: msgAskCommentText, Actions: []Action{ActionCancel}},
		}

	default:
		return noop(state)
	}
}

func advanceVentText(state models.ConversationState, event Event) Outcome {
	if event.Type != EventText {
		return noop(state)
	}
	text := strings.TrimSpace(event.Text)
	if text == "" {
		// Empty or whitespace text: stay put, re-prompt, write nothing.
		return Outcome{
			State:  state,
			Effect: Effect{Type: EffectRejected, Text: msgEmptyText, Actions: []Action{ActionCancel}},
		}
	}
	next := state
	next.Mode = models.ModeAwaitingVentIdentity
	next.DraftText = text
	return Outcome{
		State: next,
		Effect: Effect{
			Type:    EffectPrompt,
			Text:    msgAskVentIdentity,
			Actions: []Action{ActionShowIdentity, ActionHideIdentity, ActionCancel},
		},
	}
}

func advanceVentIdentity(state models.ConversationState, event Event) Outcome {
	choice, ok := identityChoice(event)
	if !ok {
		return noop(state)
	}
	identity, err := ResolveIdentity(choice, state.UserID)
	if err != nil {
		return noop(state)
	}
	next := state
	next.Mode = models.ModeAwaitingVentPolicy
	next.DraftIdentity = identity
	return Outcome{
		State: next,
		Effect: Effect{
			Type:    EffectPrompt,
			Text:    msgAskVentPolicy,
			Actions: []Action{ActionAllowComments, ActionDisallowComments, ActionCancel},
		},
	}
}

func advanceVentPolicy(state models.ConversationState, event Event) Outcome {
	if event.Type != EventButton {
		return noop(state)
	}
	var allow bool
	switch event.Action {
	case ActionAllowComments:
		allow = true
	case ActionDisallowComments:
		allow = false
	default:
		return noop(state)
	}
	tags := event.Tags
	if tags == nil {
		tags = []string{}
	}
	return Outcome{
		State:  models.IdleState(state.UserID),
		Effect: Effect{Type: EffectCommittedVent, Text: msgVentSubmitted},
		CommitVent: &models.Vent{
			AuthorID:      state.UserID,
			Text:          state.DraftText,
			Identity:      state.DraftIdentity,
			AllowComments: allow,
			Tags:          tags,
			ApprovalState: models.ApprovalPending,
		},
	}
}

func advanceCommentText(state models.ConversationState, event Event) Outcome {
	if event.Type != EventText {
		return noop(state)
	}
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return Outcome{
			State:  state,
			Effect: Effect{Type: EffectRejected, Text: msgEmptyText, Actions: []Action{ActionCancel}},
		}
	}
	next := state
	next.Mode = models.ModeAwaitingCommentIdentity
	next.DraftText = text
	return Outcome{
		State: next,
		Effect: Effect{
			Type:    EffectPrompt,
			Text:    msgAskCommentIdent,
			Actions: []Action{ActionShowIdentity, ActionHideIdentity, ActionFinish, ActionCancel},
		},
	}
}

func advanceCommentIdentity(state models.ConversationState, event Event) Outcome {
	identity := models.IdentityHidden
	if event.Type == EventButton && event.Action == ActionFinish {
		// Finish without an explicit choice keeps the default hidden identity.
	} else {
		choice, ok := identityChoice(event)
		if !ok {
			return noop(state)
		}
		resolved, err := ResolveIdentity(choice, state.UserID)
		if err != nil {
			return noop(state)
		}
		identity = resolved
	}

	ventID, err := primitive.ObjectIDFromHex(state.DraftVentID)
	if err != nil {
		// The draft's parent reference is corrupt; reset instead of committing
		// a dangling comment.
		return cancel(state)
	}
	return Outcome{
		State:  models.IdleState(state.UserID),
		Effect: Effect{Type: EffectCommittedComment, Text: msgCommentAdded},
		CommitComment: &models.Comment{
			VentID:   ventID,
			AuthorID: state.UserID,
			Text:     state.DraftText,
			Identity: identity,
		},
	}
}

func identityChoice(event Event) (IdentityChoice, bool) {
	if event.Type != EventButton {
		return "", false
	}
	switch event.Action {
	case ActionShowIdentity:
		return ChoiceShow, true
	case ActionHideIdentity:
		return ChoiceHide, true
	default:
		return "", false
	}
}

// noop leaves the state untouched and tells the user what to do instead.
func noop(state models.ConversationState) Outcome {
	return Outcome{
		State:  state,
		Effect: Effect{Type: EffectNotice, Text: msgUnexpectedInput},
	}
}

// Sessions is the per-user conversation-state arena. One entry per user,
// evicted on commit/cancel and expiring on its own after the session TTL.
type Sessions interface {
	Get(ctx context.Context, userID string) (models.ConversationState, error)
	Save(ctx context.Context, state models.ConversationState) error
	Clear(ctx context.Context, userID string) error
}

// ConversationService wires the pure state machine to the record store and the
// session arena. The transport must serialize events per user; events for
// different users are independent.
type ConversationService struct {
	store    storage.RecordStore
	sessions Sessions
}

func NewConversationService(store storage.RecordStore, sessions Sessions) *ConversationService {
	return &ConversationService{store: store, sessions: sessions}
}

// HandleEvent advances the user's flow one step and executes any commit the
// step produced. On a store failure the conversation state is left untouched
// so the user can retry the same step.
func (s *ConversationService) HandleEvent(ctx context.Context, event Event) (Effect, error) {
	state, err := s.sessions.Get(ctx, event.UserID)
	if err != nil {
		return Effect{}, err
	}

	// Starting a comment needs the parent vent checked up front: it must
	// exist, be approved, and allow comments. Rejection leaves the state as is.
	if state.Mode == models.ModeIdle && event.Type == EventButton && event.Action == ActionStartComment {
		if effect, ok, err := s.checkCommentTarget(ctx, event.VentID); err != nil {
			return Effect{Type: EffectRejected, Text: msgSubmissionTrouble}, err
		} else if !ok {
			return effect, nil
		}
	}

	out := Advance(state, event)

	switch {
	case out.CommitVent != nil:
		vent, err := s.store.CreateVent(ctx, out.CommitVent)
		if err != nil {
			return Effect{Type: EffectRejected, Text: msgSubmissionTrouble}, err
		}
		out.Effect.Vent = vent
	case out.CommitComment != nil:
		comment, err := s.store.CreateComment(ctx, out.CommitComment)
		if err != nil {
			return Effect{Type: EffectRejected, Text: msgSubmissionTrouble}, err
		}
		out.Effect.Comment = comment
	}

	// Persist the new state; idle states are evicted rather than stored so
	// the arena only ever holds in-progress drafts.
	if out.State.Mode == models.ModeIdle {
		if err := s.sessions.Clear(ctx, event.UserID); err != nil {
			return out.Effect, err
		}
	} else {
		if err := s.sessions.Save(ctx, out.State); err != nil {
			return out.Effect, err
		}
	}
	return out.Effect, nil
}

func (s *ConversationService) checkCommentTarget(ctx context.Context, ventID string) (Effect, bool, error) {
	vent, err := s.store.VentByID(ctx, ventID)
	if errors.Is(err, storage.ErrNotFound) {
		return Effect{Type: EffectRejected, Text: msgVentNotFound}, false, nil
	}
	if err != nil {
		return Effect{}, false, err
	}
	if !vent.IsApproved() {
		return Effect{Type: EffectRejected, Text: msgVentNotApproved}, false, nil
	}
	if !vent.AllowComments {
		return Effect{Type: EffectRejected, Text: msgCommentsDisabled}, false, nil
	}
	return Effect{}, true, nil
}
