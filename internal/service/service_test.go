package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/insight"
	"github.com/andresuchdata/logistics-dash/backend-go/internal/repository"
)

var fixedNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func seedOrders() []domain.Order {
	mk := func(id string, typ domain.OrderType, status domain.OrderStatus, device domain.DeviceType, practice string, age int) domain.Order {
		return domain.Order{
			ID: id, Type: typ, Status: status, DeviceType: device,
			PracticeName: practice, ClinicName: "North Wing",
			CreatedDate: fixedNow.AddDate(0, 0, -age),
		}
	}
	unassigned := mk("ORD-3", domain.OrderTypeNew, domain.StatusDelivered, domain.DeviceGlucometer, "Oak Ridge Medical", 2)
	unassigned.Assignment = domain.AssignmentUnassigned

	return []domain.Order{
		mk("ORD-1", domain.OrderTypeNew, domain.StatusPending, domain.DeviceGlucometer, "Oak Ridge Medical", 10),
		mk("ORD-2", domain.OrderTypeReplacement, domain.StatusInTransit, domain.DeviceBPCuff, "Lakeside Cardiology", 1),
		unassigned,
		mk("ORD-4", domain.OrderTypeReturn, domain.StatusDelivered, domain.DeviceBPCuff, "Lakeside Cardiology", 4),
		mk("ORD-5", domain.OrderTypeReturn, domain.StatusPending, domain.DeviceSmartScale, "Green Valley Health", 3),
	}
}

func seedStock() []domain.StockItem {
	return []domain.StockItem{
		{DeviceType: domain.DeviceGlucometer, Quantity: 8, MinLevel: 15, MaxLevel: 100},
		{DeviceType: domain.DeviceBPCuff, Quantity: 60, MinLevel: 15, MaxLevel: 100},
	}
}

func newService(repo repository.OrderRepository) *DashboardService {
	return NewDashboardService(repo, nil, 10).WithClock(clock)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int) (*domain.Dashboard, bool, error) {
	args := m.Called(ctx, filter, topN)
	d, _ := args.Get(0).(*domain.Dashboard)
	return d, args.Bool(1), args.Error(2)
}

func (m *mockCache) SetDashboard(ctx context.Context, filter domain.DashboardFilter, topN int, dashboard *domain.Dashboard) error {
	return m.Called(ctx, filter, topN, dashboard).Error(0)
}

func (m *mockCache) InvalidateAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type failingRepo struct{}

func (failingRepo) ListOrders(context.Context, []domain.OrderType) ([]domain.Order, error) {
	return nil, errors.New("connection refused")
}

func (failingRepo) ListStock(context.Context) ([]domain.StockItem, error) {
	return nil, nil
}

func TestGetDashboard_Outbound(t *testing.T) {
	svc := newService(repository.NewMemoryRepository(seedOrders(), seedStock()))

	d, err := svc.GetDashboard(context.Background(), domain.DefaultDashboardFilter(fixedNow), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, d.Stats.TotalOrders)
	assert.Equal(t, 1, d.Stats.UnassignedDeliveredCount)
	assert.Equal(t, 1, d.Stats.AgingAlerts.PendingOver7Days)
	require.Len(t, d.Rankings, 2)
	assert.Equal(t, "Oak Ridge Medical", d.Rankings[0].PracticeName)
	assert.Equal(t, 2, d.Rankings[0].OrderCount)
	require.Len(t, d.StockAlerts, 1)
	assert.Equal(t, domain.DeviceGlucometer, d.StockAlerts[0].DeviceType)
	assert.Len(t, d.Stock, 2)
	assert.Equal(t, fixedNow, d.GeneratedAt)
}

func TestGetDashboard_ReturnView(t *testing.T) {
	svc := newService(repository.NewMemoryRepository(seedOrders(), seedStock()))

	f := domain.DefaultDashboardFilter(fixedNow)
	f.View = domain.ViewReturn
	d, err := svc.GetDashboard(context.Background(), f, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Stats.ReturnLabelsIssued)
	assert.Equal(t, 1, d.Stats.ReturnedDevicesCount)
	assert.InDelta(t, 50.0, d.Stats.ReturnPercentage, 1e-9)
	assert.Len(t, d.Rankings, 1)
}

func TestGetDashboard_InvalidFilter(t *testing.T) {
	svc := newService(repository.NewMemoryRepository(nil, nil))

	f := domain.DefaultDashboardFilter(fixedNow)
	f.Device = "Stethoscope"
	_, err := svc.GetDashboard(context.Background(), f, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDevice)
}

func TestGetDashboard_DeviceLabelIsCanonicalized(t *testing.T) {
	f := domain.DefaultDashboardFilter(fixedNow)
	canonical := f
	canonical.Device = string(domain.DeviceGlucometer)

	c := new(mockCache)
	c.On("GetDashboard", mock.Anything, canonical, 10).Return(nil, false, nil).Once()
	c.On("SetDashboard", mock.Anything, canonical, 10, mock.Anything).Return(nil).Once()

	svc := NewDashboardService(repository.NewMemoryRepository(seedOrders(), seedStock()), c, 10).WithClock(clock)

	f.Device = " glucometer "
	d, err := svc.GetDashboard(context.Background(), f, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.TotalOrders)
	assert.Equal(t, string(domain.DeviceGlucometer), d.Filter.Device)
	c.AssertExpectations(t)
}

func TestGetDashboard_RepositoryError(t *testing.T) {
	svc := newService(failingRepo{})

	_, err := svc.GetDashboard(context.Background(), domain.DefaultDashboardFilter(fixedNow), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load orders")
}

func TestGetDashboard_CacheHitSkipsRepository(t *testing.T) {
	f := domain.DefaultDashboardFilter(fixedNow)
	cached := &domain.Dashboard{Filter: f, Stats: domain.DashboardStats{TotalOrders: 99}}

	c := new(mockCache)
	c.On("GetDashboard", mock.Anything, f, 10).Return(cached, true, nil).Once()

	svc := NewDashboardService(failingRepo{}, c, 10).WithClock(clock)
	d, err := svc.GetDashboard(context.Background(), f, 0)
	require.NoError(t, err)
	assert.Same(t, cached, d)
	c.AssertExpectations(t)
}

func TestGetDashboard_CacheErrorsAreNotFatal(t *testing.T) {
	c := new(mockCache)
	c.On("GetDashboard", mock.Anything, mock.Anything, 10).Return(nil, false, errors.New("redis down"))
	c.On("SetDashboard", mock.Anything, mock.Anything, 10, mock.Anything).Return(errors.New("redis down"))

	svc := NewDashboardService(repository.NewMemoryRepository(seedOrders(), seedStock()), c, 10).WithClock(clock)
	d, err := svc.GetDashboard(context.Background(), domain.DefaultDashboardFilter(fixedNow), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.TotalOrders)
	c.AssertExpectations(t)
}

type recordingRequester struct {
	mu        sync.Mutex
	summaries []insight.Summary
}

func (r *recordingRequester) RequestInsights(_ context.Context, s insight.Summary) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, s)
	return "narrative for " + string(s.View)
}

// flakyRequester answers with the fallback text until fail is cleared.
type flakyRequester struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (r *flakyRequester) Fallback() string { return insight.DefaultFallback }

func (r *flakyRequester) RequestInsights(context.Context, insight.Summary) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail {
		return insight.DefaultFallback
	}
	return "narrative"
}

func (r *recordingRequester) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.summaries)
}

func TestSession_FilterChangesRecompute(t *testing.T) {
	req := &recordingRequester{}
	coord := insight.NewCoordinator(req)
	session := NewSession(newService(repository.NewMemoryRepository(seedOrders(), seedStock())), coord, "")
	ctx := context.Background()

	d, err := session.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.TotalOrders)

	d, err = session.SetDeviceFilter(ctx, "glucometer")
	require.NoError(t, err)
	assert.Equal(t, string(domain.DeviceGlucometer), session.Filter().Device)
	assert.Equal(t, 2, d.Stats.TotalOrders)
	for _, p := range d.Stats.DeviceBreakdown {
		assert.Equal(t, string(domain.DeviceGlucometer), p.Name)
	}

	d, err = session.SetDeviceFilter(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.TotalOrders)

	d, err = session.SetView(ctx, domain.ViewReturn)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.TotalOrders)

	d, err = session.SetDateRange(ctx, fixedNow.AddDate(0, 0, -3).Format(domain.ISODate), fixedNow.Format(domain.ISODate))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Stats.TotalOrders)

	coord.Wait()
	state := coord.Current()
	assert.True(t, state.Ready)
	assert.Equal(t, "narrative for Return", state.Text)
	assert.Equal(t, session.Filter().Key(), state.SnapshotKey)
}

func TestSession_InvalidChangeKeepsState(t *testing.T) {
	session := NewSession(newService(repository.NewMemoryRepository(seedOrders(), seedStock())), nil, "2025-01-01")
	ctx := context.Background()

	before := session.Filter()
	assert.Equal(t, "2025-01-01", before.StartDate)

	_, err := session.SetDateRange(ctx, "yesterday", "today")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	_, err = session.SetDeviceFilter(ctx, "Stethoscope")
	assert.ErrorIs(t, err, domain.ErrInvalidDevice)

	assert.Equal(t, before, session.Filter())
}

func TestSession_UnchangedSummaryDoesNotRetrigger(t *testing.T) {
	req := &recordingRequester{}
	coord := insight.NewCoordinator(req)
	session := NewSession(newService(repository.NewMemoryRepository(seedOrders(), seedStock())), coord, "")
	ctx := context.Background()

	_, err := session.Refresh(ctx)
	require.NoError(t, err)
	_, err = session.Refresh(ctx)
	require.NoError(t, err)

	coord.Wait()
	assert.Equal(t, 1, req.count())
	assert.Equal(t, uint64(1), coord.Generation())
}

func TestSession_RefreshInvalidatesCache(t *testing.T) {
	c := new(mockCache)
	c.On("InvalidateAll", mock.Anything).Return(nil).Once()
	c.On("GetDashboard", mock.Anything, mock.Anything, 10).Return(nil, false, nil)
	c.On("SetDashboard", mock.Anything, mock.Anything, 10, mock.Anything).Return(nil)

	svc := NewDashboardService(repository.NewMemoryRepository(seedOrders(), seedStock()), c, 10).WithClock(clock)
	session := NewSession(svc, nil, "")

	d, err := session.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Stats.TotalOrders)
	c.AssertExpectations(t)
}

func TestSession_FallbackAnswerIsRetried(t *testing.T) {
	req := &flakyRequester{fail: true}
	coord := insight.NewCoordinator(req)
	session := NewSession(newService(repository.NewMemoryRepository(seedOrders(), seedStock())), coord, "")
	ctx := context.Background()

	_, err := session.Dashboard(ctx)
	require.NoError(t, err)
	coord.Wait()
	assert.Equal(t, insight.DefaultFallback, coord.Current().Text)

	req.mu.Lock()
	req.fail = false
	req.mu.Unlock()

	_, err = session.Refresh(ctx)
	require.NoError(t, err)
	coord.Wait()

	assert.Equal(t, 2, req.calls)
	assert.Equal(t, "narrative", coord.Current().Text)
}

func TestSession_UnchangedSummaryRetagsSnapshot(t *testing.T) {
	req := &recordingRequester{}
	coord := insight.NewCoordinator(req)
	session := NewSession(newService(repository.NewMemoryRepository(seedOrders(), seedStock())), coord, "")
	ctx := context.Background()

	_, err := session.Dashboard(ctx)
	require.NoError(t, err)
	coord.Wait()

	// Every seeded order is younger than two weeks, so moving the start date
	// keeps the summary identical.
	_, err = session.SetDateRange(ctx, fixedNow.AddDate(0, 0, -14).Format(domain.ISODate), fixedNow.Format(domain.ISODate))
	require.NoError(t, err)
	coord.Wait()

	assert.Equal(t, 1, req.count())
	assert.Equal(t, session.Filter().Key(), coord.Current().SnapshotKey)
}

func TestNormalizeDevice(t *testing.T) {
	assert.Equal(t, domain.DeviceAll, NormalizeDevice(""))
	assert.Equal(t, domain.DeviceAll, NormalizeDevice("ALL"))
	assert.Equal(t, "Pulse Oximeter", NormalizeDevice("pulse oximeter"))
	assert.Equal(t, "Stethoscope", NormalizeDevice(" Stethoscope "))
}
