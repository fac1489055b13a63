package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vlk/settlecore/internal/domain"
)

// ResultCache implements usecase.ResultCache using Redis. Final
// processing results are keyed by message id so a replayed instruction
// is answered without touching the database.
type ResultCache struct {
	client *redis.Client
	prefix string
}

// NewResultCache creates a new ResultCache.
func NewResultCache(client *redis.Client) *ResultCache {
	return &ResultCache{
		client: client,
		prefix: "result:",
	}
}

// Get returns the cached result for a message id, or (nil, nil) when
// the key is absent.
func (c *ResultCache) Get(ctx context.Context, messageID string) (*domain.ProcessingResult, error) {
	data, err := c.client.Get(ctx, c.prefix+messageID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, err
	}

	var result domain.ProcessingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Set caches a final processing result.
func (c *ResultCache) Set(ctx context.Context, messageID string, result *domain.ProcessingResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+messageID, data, ttl).Err()
}
