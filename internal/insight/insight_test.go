package insight

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func sampleSummary() Summary {
	filter := domain.DashboardFilter{View: domain.ViewOutbound, StartDate: "2024-01-01", EndDate: "2025-01-01", Device: domain.DeviceAll}
	stats := domain.DashboardStats{
		TotalOrders:              42,
		UnassignedDeliveredCount: 3,
		AgingAlerts:              domain.AgingAlerts{PendingOver7Days: 2, NotCreatedOver1Day: 5},
	}
	rankings := []domain.PracticeStats{{PracticeName: "Oak Ridge Medical", ClinicName: "East Annex", OrderCount: 9, Rank: 1}}
	alerts := []domain.StockItem{{DeviceType: domain.DeviceGlucometer, Quantity: 6, MinLevel: 15, MaxLevel: 100}}
	return BuildSummary(filter, stats, rankings, alerts)
}

func TestBuildSummary_JSONShape(t *testing.T) {
	payload, err := json.Marshal(sampleSummary())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"view": "New",
		"total": 42,
		"unassignedDelivered": 3,
		"agingAlerts": {"pendingOver7Days": 2, "notCreatedOver1Day": 5},
		"stockAlerts": [{"deviceType": "Glucometer", "quantity": 6, "minLevel": 15, "maxLevel": 100}],
		"topPractice": "Oak Ridge Medical"
	}`, string(payload))
}

func TestBuildSummary_NoRankingsOmitsTopPractice(t *testing.T) {
	s := BuildSummary(domain.DashboardFilter{View: domain.ViewReturn}, domain.DashboardStats{}, nil, nil)
	payload, err := json.Marshal(s)
	require.NoError(t, err)

	assert.NotContains(t, string(payload), "topPractice")
	assert.Contains(t, string(payload), `"stockAlerts":[]`)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := BuildPrompt(sampleSummary())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Analyze this logistics data"))
	assert.Contains(t, prompt, "Data Summary:\n{\n  \"view\": \"New\"")
}

func TestRequester_ReturnsGeneratedText(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, `"topPractice": "Oak Ridge Medical"`)
	})).Return("  - Glucometer stock is critical\n", nil).Once()

	r := NewRequester(gen, "", 0)
	text := r.RequestInsights(context.Background(), sampleSummary())

	assert.Equal(t, "- Glucometer stock is critical", text)
	gen.AssertExpectations(t)
}

func TestRequester_FailuresCollapseToFallback(t *testing.T) {
	cases := map[string]func(*mockGenerator){
		"generator error": func(g *mockGenerator) {
			g.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("401 unauthorized"))
		},
		"empty response": func(g *mockGenerator) {
			g.On("Generate", mock.Anything, mock.Anything).Return("   ", nil)
		},
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			gen := new(mockGenerator)
			setup(gen)

			r := NewRequester(gen, "", 0)
			assert.Equal(t, DefaultFallback, r.RequestInsights(context.Background(), sampleSummary()))
		})
	}
}

func TestRequester_NilGeneratorUsesConfiguredFallback(t *testing.T) {
	r := NewRequester(nil, "insights disabled", 0)
	assert.Equal(t, "insights disabled", r.RequestInsights(context.Background(), sampleSummary()))
	assert.Equal(t, "insights disabled", r.Fallback())
}

func TestRequester_RateLimited(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("ok", nil).Once()

	r := NewRequester(gen, "", 1)

	assert.Equal(t, "ok", r.RequestInsights(context.Background(), sampleSummary()))
	assert.Equal(t, DefaultFallback, r.RequestInsights(context.Background(), sampleSummary()))
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

// gatedRequester blocks each call until its gate for that view is released.
type gatedRequester struct {
	mu    sync.Mutex
	gates map[domain.ViewMode]chan string
}

func newGatedRequester(views ...domain.ViewMode) *gatedRequester {
	g := &gatedRequester{gates: make(map[domain.ViewMode]chan string)}
	for _, v := range views {
		g.gates[v] = make(chan string, 1)
	}
	return g
}

func (g *gatedRequester) release(v domain.ViewMode, text string) {
	g.mu.Lock()
	ch := g.gates[v]
	g.mu.Unlock()
	ch <- text
}

func (g *gatedRequester) RequestInsights(_ context.Context, s Summary) string {
	g.mu.Lock()
	ch := g.gates[s.View]
	g.mu.Unlock()
	return <-ch
}

func TestCoordinator_InitialAndInFlightText(t *testing.T) {
	req := newGatedRequester(domain.ViewOutbound)
	c := NewCoordinator(req)
	assert.Equal(t, State{Text: InitialText}, c.Current())

	done := c.Trigger(context.Background(), "snap-1", Summary{View: domain.ViewOutbound})
	assert.Equal(t, State{Text: InFlightText, SnapshotKey: "snap-1", Generation: 1}, c.Current())

	req.release(domain.ViewOutbound, "narrative")
	<-done
	assert.Equal(t, State{Text: "narrative", SnapshotKey: "snap-1", Generation: 1, Ready: true}, c.Current())
}

func TestCoordinator_DropsStaleResponse(t *testing.T) {
	req := newGatedRequester(domain.ViewOutbound, domain.ViewReturn)
	c := NewCoordinator(req)

	first := c.Trigger(context.Background(), "outbound", Summary{View: domain.ViewOutbound})
	second := c.Trigger(context.Background(), "return", Summary{View: domain.ViewReturn})

	req.release(domain.ViewReturn, "return narrative")
	<-second
	req.release(domain.ViewOutbound, "outbound narrative")
	<-first

	state := c.Current()
	assert.Equal(t, "return narrative", state.Text)
	assert.Equal(t, "return", state.SnapshotKey)
	assert.Equal(t, uint64(2), state.Generation)
	assert.True(t, state.Ready)
	assert.Equal(t, uint64(2), c.Generation())
}

func TestCoordinator_CanceledCallerContextDoesNotAbortRequest(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).
		Return("still generated", nil).Once()

	c := NewCoordinator(NewRequester(gen, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	<-c.Trigger(ctx, "snap", sampleSummary())
	c.Wait()

	assert.Equal(t, "still generated", c.Current().Text)
}

func TestCoordinator_ReuseRetagsSnapshot(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("narrative", nil).Once()
	c := NewCoordinator(NewRequester(gen, "", 0))

	assert.False(t, c.Reuse("first", sampleSummary()), "nothing triggered yet")

	<-c.Trigger(context.Background(), "first", sampleSummary())
	assert.True(t, c.Reuse("second", sampleSummary()))

	state := c.Current()
	assert.Equal(t, "narrative", state.Text)
	assert.Equal(t, "second", state.SnapshotKey)
	assert.Equal(t, uint64(1), c.Generation())

	changed := sampleSummary()
	changed.Total++
	assert.False(t, c.Reuse("third", changed))
	assert.Equal(t, "second", c.Current().SnapshotKey)
	gen.AssertExpectations(t)
}

func TestCoordinator_FallbackIsNotReused(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()
	c := NewCoordinator(NewRequester(gen, "", 0))

	<-c.Trigger(context.Background(), "snap", sampleSummary())
	assert.Equal(t, DefaultFallback, c.Current().Text)
	assert.False(t, c.Reuse("snap", sampleSummary()))
}

func TestCoordinator_ReuseWhileInFlightAppliesToNewSnapshot(t *testing.T) {
	req := newGatedRequester(domain.ViewOutbound)
	c := NewCoordinator(req)
	summary := Summary{View: domain.ViewOutbound}

	done := c.Trigger(context.Background(), "before", summary)
	assert.True(t, c.Reuse("after", summary))

	req.release(domain.ViewOutbound, "narrative")
	<-done
	assert.Equal(t, State{Text: "narrative", SnapshotKey: "after", Generation: 1, Ready: true}, c.Current())
}
