package memstore

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

// Store is an in-memory record store. Used by tests and as a fallback when no
// MONGODB_URI is configured (local development without a database). Records do
// not survive a restart.
type Store struct {
	mu       sync.RWMutex
	vents    []models.Vent
	comments []models.Comment
}

func New() *Store {
	return &Store{}
}

// Size returns the total number of stored records. Tests use it to verify that
// cancelled flows write nothing.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vents) + len(s.comments)
}

func (s *Store) CreateVent(_ context.Context, vent *models.Vent) (*models.Vent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	vent.ID = primitive.NewObjectID()
	vent.CreatedAt = now
	vent.UpdatedAt = now
	if vent.Tags == nil {
		vent.Tags = []string{}
	}
	s.vents = append(s.vents, *vent)
	return vent, nil
}

func (s *Store) VentByID(_ context.Context, id string) (*models.Vent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.vents {
		if s.vents[i].ID.Hex() == id {
			vent := s.vents[i]
			return &vent, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) SetApprovalState(_ context.Context, id string, state models.ApprovalState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.vents {
		if s.vents[i].ID.Hex() == id {
			if s.vents[i].ApprovalState != models.ApprovalPending {
				return storage.ErrAlreadyReviewed
			}
			s.vents[i].ApprovalState = state
			s.vents[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) ApprovedVents(_ context.Context, limit, skip int) ([]models.Vent, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var approved []models.Vent
	// Newest first: the slice is append-ordered, so walk it backwards.
	for i := len(s.vents) - 1; i >= 0; i-- {
		if s.vents[i].IsApproved() {
			approved = append(approved, s.vents[i])
		}
	}
	total := int64(len(approved))
	if skip >= len(approved) {
		return []models.Vent{}, total, nil
	}
	approved = approved[skip:]
	if limit > 0 && limit < len(approved) {
		approved = approved[:limit]
	}
	return approved, total, nil
}

func (s *Store) PendingVents(_ context.Context, limit int) ([]models.Vent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []models.Vent
	for i := len(s.vents) - 1; i >= 0; i-- {
		if s.vents[i].ApprovalState == models.ApprovalPending {
			pending = append(pending, s.vents[i])
			if limit > 0 && len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *models.Vent
	for i := range s.vents {
		if s.vents[i].ID == comment.VentID {
			parent = &s.vents[i]
			break
		}
	}
	if parent == nil {
		return nil, storage.ErrNotFound
	}
	if !parent.IsApproved() {
		return nil, storage.ErrNotApproved
	}
	if !parent.AllowComments {
		return nil, storage.ErrCommentsDisabled
	}

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()
	s.comments = append(s.comments, *comment)
	return comment, nil
}

func (s *Store) CommentsByVent(_ context.Context, ventID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for i := range s.comments {
		if s.comments[i].VentID.Hex() == ventID {
			out = append(out, s.comments[i])
		}
	}
	return out, nil
}

func (s *Store) CountVentsByAuthor(_ context.Context, authorID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.vents {
		if s.vents[i].AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountCommentsByAuthor(_ context.Context, authorID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.comments {
		if s.comments[i].AuthorID == authorID {
			count++
		}
	}
	return count, nil
}
