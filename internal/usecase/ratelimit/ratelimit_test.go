package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blindmatch/backend/internal/config"
)

type fakeCounterStore struct {
	counts  map[string]int64
	windows map[string]time.Duration
	err     error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts:  make(map[string]int64),
		windows: make(map[string]time.Duration),
	}
}

func (f *fakeCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	if f.counts[key] == 1 {
		f.windows[key] = window
	}
	return f.counts[key], nil
}

// lapse simulates the key's TTL running out: the counter and its window are
// gone, exactly what the backing store does when the window closes.
func (f *fakeCounterStore) lapse(key string) {
	delete(f.counts, key)
	delete(f.windows, key)
}

func testLimiter(store *fakeCounterStore) *Limiter {
	cfg := &config.RateLimitConfig{Ceiling: 10, Window: time.Minute}
	return New(cfg, store)
}

func TestAllowWithinCeiling(t *testing.T) {
	store := newFakeCounterStore()
	limiter := testLimiter(store)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		ok, err := limiter.Allow(ctx, "+15551234567")
		if err != nil {
			t.Fatalf("Allow #%d failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("message %d of 10 rejected", i)
		}
	}

	ok, err := limiter.Allow(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("Allow #11 failed: %v", err)
	}
	if ok {
		t.Fatalf("11th message in the window was allowed")
	}
}

func TestAllowIsolatesIdentities(t *testing.T) {
	store := newFakeCounterStore()
	limiter := testLimiter(store)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		limiter.Allow(ctx, "+15551111111")
	}
	ok, err := limiter.Allow(ctx, "+15552222222")
	if err != nil || !ok {
		t.Fatalf("second identity affected by first identity's window: ok=%v err=%v", ok, err)
	}
}

func TestAllowPropagatesStoreError(t *testing.T) {
	store := newFakeCounterStore()
	store.err = errors.New("connection refused")
	limiter := testLimiter(store)

	if _, err := limiter.Allow(context.Background(), "+15551234567"); err == nil {
		t.Fatalf("expected store error to propagate")
	}
}

func TestAllowResetsAfterWindowLapses(t *testing.T) {
	store := newFakeCounterStore()
	limiter := testLimiter(store)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		limiter.Allow(ctx, "+15551234567")
	}
	if ok, _ := limiter.Allow(ctx, "+15551234567"); ok {
		t.Fatalf("over-ceiling message allowed before the window closed")
	}

	store.lapse("sms_rate:+15551234567")

	ok, err := limiter.Allow(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("Allow after window lapse failed: %v", err)
	}
	if !ok {
		t.Fatalf("first message of the fresh window rejected")
	}
	if store.windows["sms_rate:+15551234567"] != time.Minute {
		t.Fatalf("fresh window not stamped after reset: %v", store.windows)
	}
}

func TestAllowStampsWindowOnFirstIncrement(t *testing.T) {
	store := newFakeCounterStore()
	limiter := testLimiter(store)

	limiter.Allow(context.Background(), "+15551234567")
	if store.windows["sms_rate:+15551234567"] != time.Minute {
		t.Fatalf("window not stamped on first increment: %v", store.windows)
	}
}
