package service

import (
	"context"
	"errors"
	"sort"

	"github.com/kryptospire-dev/bot-dash/internal/common/cache"
	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/common/logger"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/mapper"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
)

const statsCacheKey = "stats:dashboard"

const growthDateLayout = "2006-01-02"

// Stats computes the dashboard counters from a full collection scan.
// Results are cached briefly; refresh bypasses the cache.
func (s *userService) Stats(ctx context.Context, refresh bool) (*models.DashboardStats, error) {
	if !refresh {
		var cached models.DashboardStats
		err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.Warn().Err(err).Msg("Stats cache read failed, recomputing")
		}
	}

	docs, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("scan users for stats", err)
	}

	stats := &models.DashboardStats{TotalUsers: len(docs)}
	for _, doc := range docs {
		u := mapper.FromDocument(doc)

		if u.RewardInfo.RewardStatus == models.RewardStatusPaid {
			stats.DeliveredUsers++
			stats.TotalMntcPaid += u.TotalPayout()
		}
		if u.PendingReferral() {
			stats.PendingReferralRewards++
		}
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, s.statsTTL); err != nil {
		logger.Warn().Err(err).Msg("Stats cache write failed")
	}

	return stats, nil
}

// UserGrowth buckets sign-ups by calendar day. Users without a creation
// timestamp are absent from the series but still count toward totals.
func (s *userService) UserGrowth(ctx context.Context) ([]models.GrowthPoint, error) {
	docs, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("scan users for growth", err)
	}

	byDay := make(map[string]int)
	for _, doc := range docs {
		if doc.CreatedAt == nil || doc.CreatedAt.IsZero() {
			continue
		}
		byDay[doc.CreatedAt.Format(growthDateLayout)]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]models.GrowthPoint, 0, len(days))
	for _, day := range days {
		series = append(series, models.GrowthPoint{Date: day, Users: byDay[day]})
	}

	return series, nil
}
