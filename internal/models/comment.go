package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a reply attached to an approved vent. Comments publish
// immediately; there is no approval gate on them.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	// Parent vent (must be approved with comments allowed at creation time)
	VentID primitive.ObjectID `bson:"vent_id" json:"vent_id"`

	// Owning user (chat platform identifier)
	AuthorID string `bson:"author_id" json:"author_id"`

	// Comment content
	Text string `bson:"text" json:"text"`

	// "hidden" or the author's identifier, chosen independently of the
	// parent vent's disclosure choice
	Identity string `bson:"identity" json:"identity"`
}
