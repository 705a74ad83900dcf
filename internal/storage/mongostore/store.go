package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ventlinehq/ventline-backend/internal/models"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

const (
	ventsCollection    = "vents"
	commentsCollection = "comments"
)

// Store is the MongoDB-backed record store. Vents and comments live in their
// own collections; every mutation touches a single document.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the indexes the queries below rely on. Called once at
// startup; safe to call repeatedly.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(ventsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
		{Keys: bson.D{{Key: "approval_state", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(commentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "vent_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	})
	return err
}

func (s *Store) CreateVent(ctx context.Context, vent *models.Vent) (*models.Vent, error) {
	now := time.Now().UTC()
	vent.ID = primitive.NewObjectID()
	vent.CreatedAt = now
	vent.UpdatedAt = now
	if vent.Tags == nil {
		vent.Tags = []string{}
	}

	if _, err := s.db.Collection(ventsCollection).InsertOne(ctx, vent); err != nil {
		return nil, fmt.Errorf("insert vent: %w", storage.ErrUnavailable)
	}
	return vent, nil
}

func (s *Store) VentByID(ctx context.Context, id string) (*models.Vent, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var vent models.Vent
	err = s.db.Collection(ventsCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&vent)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vent: %w", storage.ErrUnavailable)
	}
	return &vent, nil
}

func (s *Store) SetApprovalState(ctx context.Context, id string, state models.ApprovalState) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return storage.ErrNotFound
	}

	// Conditional on the pending state so the transition happens at most once
	// even under concurrent reviews.
	result, err := s.db.Collection(ventsCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, "approval_state": models.ApprovalPending},
		bson.M{"$set": bson.M{"approval_state": state, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update vent: %w", storage.ErrUnavailable)
	}
	if result.MatchedCount == 0 {
		// Either the vent doesn't exist or it was already reviewed.
		count, err := s.db.Collection(ventsCollection).CountDocuments(ctx, bson.M{"_id": objectID})
		if err != nil {
			return fmt.Errorf("check vent: %w", storage.ErrUnavailable)
		}
		if count == 0 {
			return storage.ErrNotFound
		}
		return storage.ErrAlreadyReviewed
	}
	return nil
}

func (s *Store) ApprovedVents(ctx context.Context, limit, skip int) ([]models.Vent, int64, error) {
	filter := bson.M{"approval_state": models.ApprovalApproved}

	total, err := s.db.Collection(ventsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count vents: %w", storage.ErrUnavailable)
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": -1}) // Newest first
	findOptions.SetLimit(int64(limit))
	findOptions.SetSkip(int64(skip))

	cursor, err := s.db.Collection(ventsCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find vents: %w", storage.ErrUnavailable)
	}
	defer cursor.Close(ctx)

	var vents []models.Vent
	if err = cursor.All(ctx, &vents); err != nil {
		return nil, 0, fmt.Errorf("decode vents: %w", storage.ErrUnavailable)
	}
	return vents, total, nil
}

func (s *Store) PendingVents(ctx context.Context, limit int) ([]models.Vent, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": -1})
	findOptions.SetLimit(int64(limit))

	cursor, err := s.db.Collection(ventsCollection).Find(ctx, bson.M{"approval_state": models.ApprovalPending}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find pending vents: %w", storage.ErrUnavailable)
	}
	defer cursor.Close(ctx)

	var vents []models.Vent
	if err = cursor.All(ctx, &vents); err != nil {
		return nil, fmt.Errorf("decode pending vents: %w", storage.ErrUnavailable)
	}
	return vents, nil
}

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	// Validate the parent vent first. The allow_comments flag is immutable, so
	// checking it before the insert cannot race with a flag change.
	var parent models.Vent
	err := s.db.Collection(ventsCollection).FindOne(ctx, bson.M{"_id": comment.VentID}).Decode(&parent)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find parent vent: %w", storage.ErrUnavailable)
	}
	if !parent.IsApproved() {
		return nil, storage.ErrNotApproved
	}
	if !parent.AllowComments {
		return nil, storage.ErrCommentsDisabled
	}

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	if _, err := s.db.Collection(commentsCollection).InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", storage.ErrUnavailable)
	}
	return comment, nil
}

func (s *Store) CommentsByVent(ctx context.Context, ventID string) ([]models.Comment, error) {
	objectID, err := primitive.ObjectIDFromHex(ventID)
	if err != nil {
		return nil, storage.ErrNotFound
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": 1}) // Oldest first

	cursor, err := s.db.Collection(commentsCollection).Find(ctx, bson.M{"vent_id": objectID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", storage.ErrUnavailable)
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", storage.ErrUnavailable)
	}
	return comments, nil
}

func (s *Store) CountVentsByAuthor(ctx context.Context, authorID string) (int64, error) {
	count, err := s.db.Collection(ventsCollection).CountDocuments(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, fmt.Errorf("count vents: %w", storage.ErrUnavailable)
	}
	return count, nil
}

func (s *Store) CountCommentsByAuthor(ctx context.Context, authorID string) (int64, error) {
	count, err := s.db.Collection(commentsCollection).CountDocuments(ctx, bson.M{"author_id": authorID})
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", storage.ErrUnavailable)
	}
	return count, nil
}
