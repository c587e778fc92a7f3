package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/course-scheduler-api/internal/models"
)

const conflictStatsKey = "conflicts:stats"

// CacheRepository stores derived conflict aggregates in Redis so analytics
// consumers do not hit Postgres on every poll.
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository creates a new cache repository.
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{client: client}
}

// GetConflictStats returns the cached stats, or nil on a miss.
func (r *CacheRepository) GetConflictStats(ctx context.Context) (*models.ConflictStats, error) {
	if r == nil || r.client == nil {
		return nil, nil
	}
	raw, err := r.client.Get(ctx, conflictStatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats models.ConflictStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetConflictStats caches the stats with a TTL.
func (r *CacheRepository) SetConflictStats(ctx context.Context, stats *models.ConflictStats, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, conflictStatsKey, raw, ttl).Err()
}

// InvalidateConflictStats drops the cached stats after a mutation.
func (r *CacheRepository) InvalidateConflictStats(ctx context.Context) error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Del(ctx, conflictStatsKey).Err()
}
