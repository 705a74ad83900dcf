package storage

import (
	"context"
	"errors"

	"github.com/ventlinehq/ventline-backend/internal/models"
)

// Sentinel errors returned by record stores. Callers match with errors.Is.
var (
	// ErrNotFound - the vent (or comment) does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyReviewed - the vent's approval state is no longer pending.
	ErrAlreadyReviewed = errors.New("vent already reviewed")
	// ErrCommentsDisabled - the parent vent does not allow comments.
	ErrCommentsDisabled = errors.New("comments disabled on vent")
	// ErrNotApproved - the parent vent has not been approved yet.
	ErrNotApproved = errors.New("vent not approved")
	// ErrUnavailable - the underlying store failed; safe to retry the step.
	ErrUnavailable = errors.New("store unavailable")
)

// RecordStore is the durable home of vents and comments. Implementations must
// make every mutation single-record and all-or-nothing so a failed call never
// leaves a half-written record.
type RecordStore interface {
	// CreateVent persists a new vent and assigns its ID.
	CreateVent(ctx context.Context, vent *models.Vent) (*models.Vent, error)

	// VentByID returns the vent or ErrNotFound.
	VentByID(ctx context.Context, id string) (*models.Vent, error)

	// SetApprovalState transitions a pending vent to approved or rejected.
	// Returns ErrNotFound if the vent does not exist and ErrAlreadyReviewed
	// if its state is no longer pending. The update is conditional on the
	// pending state so concurrent reviews cannot both win.
	SetApprovalState(ctx context.Context, id string, state models.ApprovalState) error

	// ApprovedVents returns approved vents, newest first.
	ApprovedVents(ctx context.Context, limit, skip int) ([]models.Vent, int64, error)

	// PendingVents returns vents awaiting review, newest first.
	PendingVents(ctx context.Context, limit int) ([]models.Vent, error)

	// CreateComment persists a comment after checking the parent vent:
	// ErrNotFound if it doesn't exist, ErrNotApproved if it isn't approved,
	// ErrCommentsDisabled if it doesn't allow comments.
	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)

	// CommentsByVent returns the comments on a vent, oldest first.
	CommentsByVent(ctx context.Context, ventID string) ([]models.Comment, error)

	// CountVentsByAuthor counts all vents by the author, every approval state.
	CountVentsByAuthor(ctx context.Context, authorID string) (int64, error)

	// CountCommentsByAuthor counts all comments by the author.
	CountCommentsByAuthor(ctx context.Context, authorID string) (int64, error)
}
