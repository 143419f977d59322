package insight

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultFallback is returned whenever a narrative cannot be produced.
const DefaultFallback = "AI Insights currently unavailable. Please check critical alerts manually."

var (
	errEmptyResponse = errors.New("empty insight response")
	errRateLimited   = errors.New("insight rate limit exceeded")
	errNoGenerator   = errors.New("insight generator not configured")
)

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Requester asks the generator for a narrative and never fails: every error
// path is logged and collapsed into the fallback text.
type Requester struct {
	gen      Generator
	fallback string
	limiter  *rate.Limiter
}

// NewRequester builds a Requester. A nil generator always yields the fallback;
// ratePerMinute <= 0 disables throttling.
func NewRequester(gen Generator, fallback string, ratePerMinute int) *Requester {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallback
	}

	limit := rate.Inf
	burst := 1
	if ratePerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(ratePerMinute))
		burst = ratePerMinute
	}

	return &Requester{
		gen:      gen,
		fallback: fallback,
		limiter:  rate.NewLimiter(limit, burst),
	}
}

// Fallback returns the advisory text used on failure.
func (r *Requester) Fallback() string {
	return r.fallback
}

// RequestInsights makes a single generator call for the summary.
func (r *Requester) RequestInsights(ctx context.Context, summary Summary) string {
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Str("view", string(summary.View)).Logger()

	text, err := r.request(ctx, summary)
	if err != nil {
		logger.Warn().Err(err).Msg("insight: falling back")
		return r.fallback
	}

	logger.Debug().Int("chars", len(text)).Msg("insight: narrative received")
	return text
}

func (r *Requester) request(ctx context.Context, summary Summary) (string, error) {
	if r.gen == nil {
		return "", errNoGenerator
	}
	if !r.limiter.Allow() {
		return "", errRateLimited
	}

	prompt, err := BuildPrompt(summary)
	if err != nil {
		return "", err
	}

	text, err := r.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
