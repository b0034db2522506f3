package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", rps: 1, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst is refused", rps: 1, burst: 2, calls: 5, wantPass: 2},
		{name: "single token", rps: 1, burst: 1, calls: 4, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("user-1") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	if !rl.Allow("alice") {
		t.Fatal("first request for alice should pass")
	}
	if rl.Allow("alice") {
		t.Error("second request for alice should be limited")
	}
	if !rl.Allow("bob") {
		t.Error("bob should have his own bucket")
	}
	if got := rl.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestKeyedRateLimiter_Wait(t *testing.T) {
	rl := New(10, 1)
	defer rl.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := rl.Wait(ctx, "test"); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Error("first Wait() should be immediate")
	}

	start = time.Now()
	if err := rl.Wait(ctx, "test"); err != nil {
		t.Fatalf("second Wait() failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("second Wait() took %v, want ~100ms", elapsed)
	}
}

func TestKeyedRateLimiter_WaitContextCancelled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("test")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "test"); err == nil {
		t.Error("Wait() should fail when context canceled")
	}
}

func TestKeyedRateLimiter_RetryAfter(t *testing.T) {
	rl := New(1, 1)
	defer rl.Stop()

	if d := rl.RetryAfter("k"); d != 0 {
		t.Errorf("RetryAfter() with a full bucket = %v, want 0", d)
	}
	rl.Allow("k")
	if d := rl.RetryAfter("k"); d <= 0 || d > time.Second {
		t.Errorf("RetryAfter() after draining = %v, want (0, 1s]", d)
	}
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	rl := NewWithIdleTTL(1, 1, time.Hour)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(50 * time.Minute)
	rl.Allow("fresh")
	now = now.Add(20 * time.Minute)

	rl.evictIdle()

	rl.mu.Lock()
	_, hasOld := rl.entries["old"]
	_, hasFresh := rl.entries["fresh"]
	rl.mu.Unlock()

	if hasOld {
		t.Error("idle key should be evicted")
	}
	if !hasFresh {
		t.Error("recent key should be kept")
	}
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := New(1, 1)
	rl.Stop()
	rl.Stop()
}
