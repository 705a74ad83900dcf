package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ventlinehq/ventline-backend/internal/database"
	"github.com/ventlinehq/ventline-backend/internal/storage"
)

const (
	// ProfileCacheKeyPrefix is the Redis key prefix for cached summaries
	ProfileCacheKeyPrefix = "cache:profile:"
	// ProfileCacheTTL is short: counts drift quickly while users post
	ProfileCacheTTL = 60 * time.Second
)

// ProfileSummary is a read-only rollup of a user's activity. Vent and comment
// counts include every approval state; only feeds and commenting are limited
// to approved vents. ImpactPoints and CommunityAcceptance are fixed defaults
// until a scoring component exists.
type ProfileSummary struct {
	UserID              string  `json:"user_id"`
	VentCount           int64   `json:"vents"`
	CommentCount        int64   `json:"comments"`
	ImpactPoints        int     `json:"impact_points"`
	CommunityAcceptance float64 `json:"community_acceptance"`
}

// ProfileService computes profile summaries from the record store, with a
// short-lived Redis cache in front.
type ProfileService struct {
	store storage.RecordStore
}

func NewProfileService(store storage.RecordStore) *ProfileService {
	return &ProfileService{store: store}
}

// Summary returns the user's profile rollup. Cache failures are ignored; the
// store is the source of truth.
func (p *ProfileService) Summary(ctx context.Context, userID string) (*ProfileSummary, error) {
	cacheKey := ProfileCacheKeyPrefix + userID

	if database.RedisClient != nil {
		if raw, err := database.RedisClient.Get(ctx, cacheKey).Result(); err == nil {
			var cached ProfileSummary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	ventCount, err := p.store.CountVentsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	commentCount, err := p.store.CountCommentsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &ProfileSummary{
		UserID:       userID,
		VentCount:    ventCount,
		CommentCount: commentCount,
		// Placeholder reputation metrics, matching the original product copy
		ImpactPoints:        0,
		CommunityAcceptance: 0.0,
	}

	if database.RedisClient != nil {
		if raw, err := json.Marshal(summary); err == nil {
			database.RedisClient.Set(ctx, cacheKey, raw, ProfileCacheTTL)
		}
	}
	return summary, nil
}
