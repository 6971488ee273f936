package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"plantmatch/internal/model"
)

const (
	completionsKey   = "quiz:analytics:completions"
	tagCountsKey     = "quiz:analytics:tags"
	durationTotalKey = "quiz:analytics:duration_total"
)

// AnalyticsCache accumulates completion analytics in Redis
type AnalyticsCache interface {
	RecordCompletion(ctx context.Context, record *model.CompletionRecord) error
	Summary(ctx context.Context, topTags int) (*model.AnalyticsSummary, error)
}

type analyticsCache struct {
	client *redis.Client
}

// NewAnalyticsCache creates a new analytics cache
func NewAnalyticsCache(client *redis.Client) AnalyticsCache {
	return &analyticsCache{
		client: client,
	}
}

func (c *analyticsCache) RecordCompletion(ctx context.Context, record *model.CompletionRecord) error {
	if err := c.client.Incr(ctx, completionsKey).Err(); err != nil {
		return err
	}
	if record.CompletionSeconds > 0 {
		if err := c.client.IncrBy(ctx, durationTotalKey, int64(record.CompletionSeconds)).Err(); err != nil {
			return err
		}
	}
	for tag, count := range record.TagCounts {
		if err := c.client.ZIncrBy(ctx, tagCountsKey, float64(count), tag).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *analyticsCache) Summary(ctx context.Context, topTags int) (*model.AnalyticsSummary, error) {
	completions, err := c.client.Get(ctx, completionsKey).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	durationTotal, err := c.client.Get(ctx, durationTotalKey).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	results, err := c.client.ZRevRangeWithScores(ctx, tagCountsKey, 0, int64(topTags-1)).Result()
	if err != nil {
		return nil, err
	}

	summary := &model.AnalyticsSummary{
		Completions: completions,
		TopTags:     make([]model.TagCount, len(results)),
	}
	if completions > 0 {
		summary.AverageCompletionSeconds = float64(durationTotal) / float64(completions)
	}
	for i, z := range results {
		summary.TopTags[i] = model.TagCount{
			Tag:   z.Member.(string),
			Count: int64(z.Score),
		}
	}
	return summary, nil
}
