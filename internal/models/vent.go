package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalState is the moderation lifecycle tag on a vent.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

// IdentityHidden is the stored identity value for anonymous submissions.
// When the user chooses to show their identity, the stored value is their
// own user identifier instead.
const IdentityHidden = "hidden"

type Vent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	// Owning user (chat platform identifier)
	AuthorID string `bson:"author_id" json:"author_id"`

	// Vent content
	Text string `bson:"text" json:"text"`

	// "hidden" or the author's identifier, chosen once at submission
	Identity string `bson:"identity" json:"identity"`

	// Whether others may comment on this vent (immutable after submission)
	AllowComments bool `bson:"allow_comments" json:"allow_comments"`

	// Optional short labels (may be empty)
	Tags []string `bson:"tags" json:"tags"`

	// Moderation state: pending until a moderator reviews it
	ApprovalState ApprovalState `bson:"approval_state" json:"approval_state"`
}

// IsApproved reports whether the vent is visible to the feed and to commenting.
func (v *Vent) IsApproved() bool {
	return v.ApprovalState == ApprovalApproved
}
