package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/insight"
)

// Session holds the interactive filter state. Every change recomputes the
// dashboard in full and, when the insight summary changed, asks for a new
// narrative.
type Session struct {
	svc      *DashboardService
	insights *insight.Coordinator

	mu        sync.Mutex
	filter    domain.DashboardFilter
	dashboard *domain.Dashboard
}

// NewSession starts from the default filter; startDate overrides its lower
// bound when set. insights may be nil.
func NewSession(svc *DashboardService, insights *insight.Coordinator, startDate string) *Session {
	filter := domain.DefaultDashboardFilter(svc.Now())
	if strings.TrimSpace(startDate) != "" {
		filter.StartDate = startDate
	}
	return &Session{svc: svc, insights: insights, filter: filter}
}

func (s *Session) Filter() domain.DashboardFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Dashboard returns the dashboard for the current filter, computing it on
// first use.
func (s *Session) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dashboard != nil {
		return s.dashboard, nil
	}
	return s.apply(ctx, s.filter)
}

// Refresh drops cached dashboards and recomputes with the current filter,
// e.g. after new orders were imported.
func (s *Session) Refresh(ctx context.Context) (*domain.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.svc.InvalidateCache(ctx); err != nil {
		log.Warn().Err(err).Msg("session: cache invalidation failed")
	}
	return s.apply(ctx, s.filter)
}

func (s *Session) SetView(ctx context.Context, view domain.ViewMode) (*domain.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.filter
	next.View = view
	return s.apply(ctx, next)
}

func (s *Session) SetDateRange(ctx context.Context, start, end string) (*domain.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.filter
	next.StartDate = start
	next.EndDate = end
	return s.apply(ctx, next)
}

// SetDeviceFilter accepts "All" or a device label in any case.
func (s *Session) SetDeviceFilter(ctx context.Context, device string) (*domain.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.filter
	next.Device = NormalizeDevice(device)
	return s.apply(ctx, next)
}

// apply recomputes for next and only commits it when that succeeds, so an
// invalid change leaves the previous state in place. Callers hold mu.
func (s *Session) apply(ctx context.Context, next domain.DashboardFilter) (*domain.Dashboard, error) {
	dashboard, err := s.svc.GetDashboard(ctx, next, 0)
	if err != nil {
		return nil, err
	}

	s.filter = next
	s.dashboard = dashboard
	s.triggerInsights(ctx, dashboard)
	return dashboard, nil
}

func (s *Session) triggerInsights(ctx context.Context, dashboard *domain.Dashboard) {
	if s.insights == nil {
		return
	}

	key := dashboard.Filter.Key()
	summary := insight.BuildSummary(dashboard.Filter, dashboard.Stats, dashboard.Rankings, dashboard.StockAlerts)
	if s.insights.Reuse(key, summary) {
		log.Debug().Str("filter", key).Msg("session: insight summary unchanged")
		return
	}
	s.insights.Trigger(ctx, key, summary)
}

// NormalizeDevice maps user input onto "All" or the canonical device label.
// Unknown values are returned as given so validation can reject them.
func NormalizeDevice(device string) string {
	trimmed := strings.TrimSpace(device)
	if trimmed == "" || strings.EqualFold(trimmed, domain.DeviceAll) {
		return domain.DeviceAll
	}
	if d, ok := domain.ParseDeviceType(trimmed); ok {
		return string(d)
	}
	return trimmed
}
