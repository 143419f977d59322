package insight

import (
	"context"
	"reflect"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
)

const (
	InitialText  = "Analyzing current data..."
	InFlightText = "Synthesizing data..."
)

// InsightRequester produces narrative text for a summary.
type InsightRequester interface {
	RequestInsights(ctx context.Context, summary Summary) string
}

// State is the narrative currently shown to the user.
type State struct {
	Text        string `json:"text"`
	SnapshotKey string `json:"snapshot_key"`
	Generation  uint64 `json:"generation"`
	Ready       bool   `json:"ready"`
}

// Coordinator runs insight requests in the background. Each trigger gets a
// new generation; a response is only applied while its generation is still
// the latest, so a slow answer for an old filter never replaces a newer one.
type Coordinator struct {
	requester  InsightRequester
	fallback   string
	generation *atomic.Uint64

	mu    sync.RWMutex
	state State
	// summary belongs to the latest generation; reusable is cleared once
	// that generation resolved to the fallback text.
	summary  Summary
	reusable bool

	wg sync.WaitGroup
}

func NewCoordinator(requester InsightRequester) *Coordinator {
	c := &Coordinator{
		requester:  requester,
		generation: atomic.NewUint64(0),
		state:      State{Text: InitialText},
	}
	if f, ok := requester.(interface{ Fallback() string }); ok {
		c.fallback = f.Fallback()
	}
	return c
}

// Trigger starts a request for the snapshot and returns a channel closed once
// the response has been applied or dropped.
func (c *Coordinator) Trigger(ctx context.Context, snapshotKey string, summary Summary) <-chan struct{} {
	c.mu.Lock()
	gen := c.generation.Inc()
	c.state = State{Text: InFlightText, SnapshotKey: snapshotKey, Generation: gen}
	c.summary = summary
	c.reusable = true
	c.mu.Unlock()

	// The request outlives the caller (usually an HTTP handler).
	reqCtx := context.WithoutCancel(ctx)

	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)

		text := c.requester.RequestInsights(reqCtx, summary)
		c.apply(gen, text)
	}()

	return done
}

// apply keeps the snapshot key of the current state, which Reuse may have
// moved to a newer filter with the same summary.
func (c *Coordinator) apply(gen uint64, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.generation.Load(); gen != latest {
		log.Debug().
			Uint64("generation", gen).
			Uint64("latest", latest).
			Msg("insight: dropping stale response")
		return false
	}

	c.state = State{Text: text, SnapshotKey: c.state.SnapshotKey, Generation: gen, Ready: true}
	c.reusable = text != c.fallback
	return true
}

// Reuse re-tags the current narrative with snapshotKey when it was produced
// (or is still being produced) for an identical summary. It reports false
// when nothing was triggered yet, the summary differs, or the last answer was
// the fallback text; the caller should Trigger instead.
func (c *Coordinator) Reuse(snapshotKey string, summary Summary) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation.Load() == 0 || !c.reusable || !reflect.DeepEqual(c.summary, summary) {
		return false
	}
	c.state.SnapshotKey = snapshotKey
	return true
}

// Current returns the latest applied or in-flight state.
func (c *Coordinator) Current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Generation is the number of requests triggered so far.
func (c *Coordinator) Generation() uint64 {
	return c.generation.Load()
}

// Wait blocks until every in-flight request has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
