package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/blindmatch/backend/internal/config"
	"github.com/blindmatch/backend/internal/repository"
)

// Limiter is a fixed-window counter per sender identity. The counter lives
// in shared external state; the store guarantees increment-plus-expiry is
// atomic per key, so concurrent inbound messages cannot race the window.
type Limiter struct {
	store   repository.CounterStore
	ceiling int64
	window  time.Duration
}

func New(cfg *config.RateLimitConfig, store repository.CounterStore) *Limiter {
	return &Limiter{
		store:   store,
		ceiling: int64(cfg.Ceiling),
		window:  cfg.Window,
	}
}

// Allow records one inbound unit for the identity and reports whether it is
// within the window's ceiling. The increment happens regardless of the
// outcome; the window expiry is stamped only on the first increment.
func (l *Limiter) Allow(ctx context.Context, identity string) (bool, error) {
	count, err := l.store.Incr(ctx, key(identity), l.window)
	if err != nil {
		return false, fmt.Errorf("rate limit counter failed: %w", err)
	}
	return count <= l.ceiling, nil
}

func key(identity string) string {
	return "sms_rate:" + identity
}
