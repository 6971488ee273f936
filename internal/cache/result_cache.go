package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"plantmatch/internal/model"
)

// resultTTL is how long a completed result is kept for returning
// visitors before it expires on its own.
const resultTTL = 7 * 24 * time.Hour

// ResultCache stores the last completed result per visitor so a
// returning visitor skips straight to their match.
type ResultCache interface {
	Load(ctx context.Context, visitorID string) (*model.SavedResult, error)
	Save(ctx context.Context, visitorID string, result *model.SavedResult) error
	Clear(ctx context.Context, visitorID string) error
	MarkCTAClicked(ctx context.Context, visitorID string) error
}

type resultCache struct {
	client *redis.Client
}

// NewResultCache creates a new saved-result cache
func NewResultCache(client *redis.Client) ResultCache {
	return &resultCache{
		client: client,
	}
}

func (c *resultCache) key(visitorID string) string {
	return fmt.Sprintf("quiz:visitor:%s:result", visitorID)
}

// Load returns the visitor's saved result, or nil when none exists or
// the CTA was already clicked.
func (c *resultCache) Load(ctx context.Context, visitorID string) (*model.SavedResult, error) {
	data, err := c.client.Get(ctx, c.key(visitorID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var saved model.SavedResult
	if err := json.Unmarshal([]byte(data), &saved); err != nil {
		return nil, err
	}
	if saved.CTAClicked {
		return nil, nil
	}
	return &saved, nil
}

func (c *resultCache) Save(ctx context.Context, visitorID string, result *model.SavedResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(visitorID), data, resultTTL).Err()
}

func (c *resultCache) Clear(ctx context.Context, visitorID string) error {
	return c.client.Del(ctx, c.key(visitorID)).Err()
}

// MarkCTAClicked retires the saved result: once the visitor has acted
// on their match there is nothing left to restore.
func (c *resultCache) MarkCTAClicked(ctx context.Context, visitorID string) error {
	return c.client.Del(ctx, c.key(visitorID)).Err()
}
