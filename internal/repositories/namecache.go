package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abzsd/CareAgents/internal/logger"
)

// NameCacheRepository caches display names used for appointment
// enrichment (patient names, doctor names and specializations) in Redis.
type NameCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewNameCacheRepository creates a cache repository with the given TTL.
func NewNameCacheRepository(client *redis.Client, expiration time.Duration) *NameCacheRepository {
	return &NameCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// GetName fetches a cached display value for an entity id.
func (r *NameCacheRepository) GetName(ctx context.Context, kind, id string) (string, error) {
	key := fmt.Sprintf("display_name:%s:%s", kind, id)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow("name cache miss",
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return "", fmt.Errorf("display name not cached for %s %s", kind, id)
		}
		return "", err
	}

	logger.Log.Infow("name cache hit",
		"key", key,
		"result", val,
	)
	return val, nil
}

// SetName caches a display value for an entity id with the configured TTL.
func (r *NameCacheRepository) SetName(ctx context.Context, kind, id, value string) error {
	key := fmt.Sprintf("display_name:%s:%s", kind, id)

	err := r.client.Set(ctx, key, value, r.exp).Err()

	logger.Log.Infow("name cache set",
		"key", key,
		"value", value,
		"error", err,
	)
	return err
}
