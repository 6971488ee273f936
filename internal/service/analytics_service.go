package service

import (
	"context"
	"log"

	"plantmatch/internal/cache"
	"plantmatch/internal/model"
)

// AnalyticsService accumulates completion analytics. Recording is best
// effort: a failed write never blocks the quiz flow.
type AnalyticsService struct {
	analyticsCache cache.AnalyticsCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(analyticsCache cache.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{
		analyticsCache: analyticsCache,
	}
}

// RecordCompletion stores one completion record
func (s *AnalyticsService) RecordCompletion(ctx context.Context, record *model.CompletionRecord) {
	if err := s.analyticsCache.RecordCompletion(ctx, record); err != nil {
		log.Printf("failed to record completion analytics: %v", err)
	}
}

// Summary returns the aggregated analytics for the host view
func (s *AnalyticsService) Summary(ctx context.Context) (*model.AnalyticsSummary, error) {
	return s.analyticsCache.Summary(ctx, 10)
}
