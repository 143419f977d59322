package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/analytics"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/cache"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository"
)

type DashboardService struct {
	repo  repository.OrderRepository
	cache cache.DashboardCache
	topN  int
	clock func() time.Time
}

func NewDashboardService(repo repository.OrderRepository, cacheImpl cache.DashboardCache, topN int) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	if topN <= 0 {
		topN = analytics.DefaultTopN
	}
	return &DashboardService{repo: repo, cache: cacheImpl, topN: topN, clock: time.Now}
}

// WithClock replaces the time source used for aging alerts and GeneratedAt.
func (s *DashboardService) WithClock(clock func() time.Time) *DashboardService {
	s.clock = clock
	return s
}

func (s *DashboardService) Now() time.Time {
	return s.clock()
}

// GetDashboard loads orders and stock, then runs the filter, aggregation and
// ranking for the filter. topN <= 0 uses the service default. The device is
// canonicalized first, so "glucometer" and "Glucometer" share a result.
func (s *DashboardService) GetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int) (*domain.Dashboard, error) {
	filter.Device = NormalizeDevice(filter.Device)
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.topN
	}

	if dashboard, ok, err := s.cache.GetDashboard(ctx, filter, topN); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get failed")
	}

	orders, stock, err := s.load(ctx, filter.View)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	filtered := analytics.FilterOrders(orders, filter)

	dashboard := &domain.Dashboard{
		Filter:      filter,
		Stats:       analytics.ComputeStats(filtered, now),
		Rankings:    analytics.RankPractices(filtered, topN),
		Stock:       analytics.EvaluateStock(stock),
		StockAlerts: analytics.StockAlerts(stock),
		GeneratedAt: now.UTC(),
	}

	log.Debug().
		Str("filter", filter.Key()).
		Int("orders", len(orders)).
		Int("filtered", len(filtered)).
		Msg("dashboard: recomputed")

	if err := s.cache.SetDashboard(ctx, filter, topN, dashboard); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set failed")
	}

	return dashboard, nil
}

func (s *DashboardService) load(ctx context.Context, view domain.ViewMode) ([]domain.Order, []domain.StockItem, error) {
	var (
		orders []domain.Order
		stock  []domain.StockItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.repo.ListOrders(gctx, view.OrderTypes())
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stock, err = s.repo.ListStock(gctx)
		if err != nil {
			return fmt.Errorf("failed to load stock: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return orders, stock, nil
}

// InvalidateCache drops every cached dashboard, e.g. after new orders land.
func (s *DashboardService) InvalidateCache(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}
