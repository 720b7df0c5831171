package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
)

// DashboardService serves per-owner dashboard statistics, caching the
// aggregate in Redis for a short TTL since it is read far more often than
// orders change.
type DashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cache       redis.Cmdable
	ttl         time.Duration
	logger      *slog.Logger
}

// NewDashboardService creates the dashboard service. A nil cache disables
// caching.
func NewDashboardService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cache redis.Cmdable, ttl time.Duration, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
	}
}

func statsCacheKey(ownerID string) string {
	return "dashboard:stats:" + ownerID
}

// Stats returns the owner's order aggregate and catalog size, cache-first.
func (s *DashboardService) Stats(ctx context.Context, ownerID string) (*domain.DashboardStats, error) {
	key := statsCacheKey(ownerID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var stats domain.DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
			// Corrupt entry: fall through to recompute.
		case !errors.Is(err, redis.Nil):
			s.logger.WarnContext(ctx, "stats cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	orderStats, err := s.orderRepo.Stats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("compute dashboard stats: %w", err)
	}

	productCount, err := s.productRepo.Count(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count products for dashboard: %w", err)
	}

	stats := &domain.DashboardStats{
		OrderStats:    *orderStats,
		TotalProducts: productCount,
	}

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.WarnContext(ctx, "stats cache write failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return stats, nil
}

// Invalidate drops the owner's cached aggregate. Called after order writes.
func (s *DashboardService) Invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(ownerID)).Err(); err != nil {
		s.logger.WarnContext(ctx, "stats cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
