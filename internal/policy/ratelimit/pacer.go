// Package ratelimit spaces out outbound requests with a token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/JakeFAU/lead-harvester/internal/metrics"
)

// Pacer enforces a fixed minimum delay between consecutive requests across
// the whole process. The first request is never delayed.
type Pacer struct {
	limiter *rate.Limiter
}

// Config holds pacer configuration.
type Config struct {
	// Interval is the minimum gap between two requests. Zero disables pacing.
	Interval time.Duration
}

// New creates a Pacer.
func New(cfg Config) *Pacer {
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &Pacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next request may go out, respecting the context.
func (p *Pacer) Wait(ctx context.Context) error {
	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(waited)
	}
	return nil
}
