package services

import (
	"context"
	"errors"
	"log"

	"github.com/ventlinehq/ventline-backend/internal/database"
	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

// Decision is a moderator's verdict on a pending vent.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var (
	// ErrNotAuthorized - the caller is not in the moderator set.
	ErrNotAuthorized = errors.New("not a moderator")
	// ErrInvalidDecision - decision outside {approve, reject}.
	ErrInvalidDecision = errors.New("invalid review decision")
)

// ModerationService owns the one-shot pending -> approved/rejected transition.
// Authorization is membership in a moderator ID set injected at construction,
// never read from ambient process state.
type ModerationService struct {
	store      storage.RecordStore
	moderators map[string]struct{}
}

func NewModerationService(store storage.RecordStore, moderatorIDs []string) *ModerationService {
	moderators := make(map[string]struct{}, len(moderatorIDs))
	for _, id := range moderatorIDs {
		moderators[id] = struct{}{}
	}
	return &ModerationService{store: store, moderators: moderators}
}

// IsModerator reports whether the user may review vents.
func (m *ModerationService) IsModerator(userID string) bool {
	_, ok := m.moderators[userID]
	return ok
}

// Review applies a moderator's decision to a pending vent. The transition
// happens exactly once: a second review returns storage.ErrAlreadyReviewed and
// the first decision stands. Nothing mutates on any error path.
func (m *ModerationService) Review(ctx context.Context, ventID, moderatorID string, decision Decision) error {
	if !m.IsModerator(moderatorID) {
		return ErrNotAuthorized
	}

	var state models.ApprovalState
	switch decision {
	case DecisionApprove:
		state = models.ApprovalApproved
	case DecisionReject:
		state = models.ApprovalRejected
	default:
		return ErrInvalidDecision
	}

	if err := m.store.SetApprovalState(ctx, ventID, state); err != nil {
		return err
	}

	// Audit trail in PostgreSQL for admin visibility. Best effort: a failed
	// audit write must not undo the review.
	if database.PostgresDB != nil {
		_, err := database.PostgresDB.ExecContext(ctx, `
			INSERT INTO review_audit (vent_id, moderator_id, decision) VALUES ($1, $2, $3)
		`, ventID, moderatorID, string(decision))
		if err != nil {
			log.Printf("failed to record review audit for vent %s: %v", ventID, err)
		}
	}
	return nil
}

// Pending returns the review queue, newest first. Moderators only.
func (m *ModerationService) Pending(ctx context.Context, moderatorID string, limit int) ([]models.Vent, error) {
	if !m.IsModerator(moderatorID) {
		return nil, ErrNotAuthorized
	}
	if limit <= 0 {
		limit = 50
	}
	return m.store.PendingVents(ctx, limit)
}
