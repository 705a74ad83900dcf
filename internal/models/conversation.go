package models

import "time"

// Mode marks where a user is in the authoring flow.
type Mode string

const (
	ModeIdle                    Mode = "idle"
	ModeAwaitingVentText        Mode = "awaiting_vent_text"
	ModeAwaitingVentIdentity    Mode = "awaiting_vent_identity"
	ModeAwaitingVentPolicy      Mode = "awaiting_vent_policy"
	ModeAwaitingCommentText     Mode = "awaiting_comment_text"
	ModeAwaitingCommentIdentity Mode = "awaiting_comment_identity"
)

// ConversationState is the transient per-user progress marker through the
// authoring flow. It is created lazily on first interaction, reset to idle on
// commit or cancel, and expires from Redis after the session TTL so abandoned
// drafts don't accumulate. Never shared between users.
type ConversationState struct {
	UserID    string    `json:"user_id"`
	Mode      Mode      `json:"mode"`
	UpdatedAt time.Time `json:"updated_at"`

	// Draft fields accumulated across steps; only the ones relevant to the
	// current mode are meaningful.
	DraftText     string   `json:"draft_text,omitempty"`
	DraftIdentity string   `json:"draft_identity,omitempty"`
	DraftVentID   string   `json:"draft_vent_id,omitempty"` // comment path: parent vent
	DraftTags     []string `json:"draft_tags,omitempty"`
}

// IdleState returns a fresh idle state for the user.
func IdleState(userID string) ConversationState {
	return ConversationState{UserID: userID, Mode: ModeIdle, UpdatedAt: time.Now().UTC()}
}
