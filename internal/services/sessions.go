package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ventlinehq/ventline-backend/internal/database"
	"github.com/ventlinehq/ventline-backend/internal/models"
)

const (
	// DefaultSessionTTL bounds how long an abandoned draft survives.
	DefaultSessionTTL = 30 * time.Minute
	// SessionKeyPrefix is the Redis key prefix for conversation state
	SessionKeyPrefix = "convstate:"
)

// RedisSessions keeps per-user conversation state in Redis as JSON with a TTL.
// A user with no key is idle; commit and cancel delete the key, and the TTL
// evicts drafts the user walked away from.
type RedisSessions struct {
	TTL time.Duration
}

func NewRedisSessions(ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessions{TTL: ttl}
}

// Get returns the user's conversation state, or a fresh idle state when no
// draft is in progress.
func (s *RedisSessions) Get(ctx context.Context, userID string) (models.ConversationState, error) {
	key := SessionKeyPrefix + userID

	raw, err := database.RedisClient.Get(ctx, key).Result()
	if err != nil {
		// Treat a missing key (or a flaky read) as idle; the worst case is the
		// user restarting their draft.
		return models.IdleState(userID), nil
	}

	var state models.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Corrupt entry: drop it rather than wedge the user.
		database.RedisClient.Del(ctx, key)
		return models.IdleState(userID), nil
	}
	return state, nil
}

// Save stores the state and resets the TTL so active sessions stay alive.
func (s *RedisSessions) Save(ctx context.Context, state models.ConversationState) error {
	state.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, SessionKeyPrefix+state.UserID, raw, s.TTL).Err()
}

// Clear evicts the user's entry; reaching idle never leaves a record behind.
func (s *RedisSessions) Clear(ctx context.Context, userID string) error {
	return database.RedisClient.Del(ctx, SessionKeyPrefix+userID).Err()
}
