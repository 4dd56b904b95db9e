package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider wraps a Provider with a token bucket rate limiter.
type RateLimitedProvider struct {
	provider Provider
	rpm      int
	interval time.Duration

	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedProvider wraps the given provider with a rate limiter
// that allows at most rpm requests per minute, bursting up to rpm.
func NewRateLimitedProvider(provider Provider, rpm int) *RateLimitedProvider {
	if rpm < 1 {
		rpm = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		interval: time.Minute / time.Duration(rpm),
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// take consumes a token if one is available. Otherwise it returns how long
// until the next one.
func (r *RateLimitedProvider) take(now time.Time) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if refill := int(now.Sub(r.lastFill) / r.interval); refill > 0 {
		r.tokens = min(r.rpm, r.tokens+refill)
		r.lastFill = r.lastFill.Add(time.Duration(refill) * r.interval)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0, true
	}
	return r.interval - now.Sub(r.lastFill), false
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	for {
		delay, ok := r.take(time.Now())
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
