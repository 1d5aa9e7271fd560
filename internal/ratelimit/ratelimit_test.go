package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_PacesRequests(t *testing.T) {
	l := New(Config{RequestsPerSecond: 20, Burst: 1})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx, "search"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	// first token is immediate, the next two cost 50ms each
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected pacing of at least 90ms, got %v", elapsed)
	}
}

func TestWait_EndpointsAreIndependent(t *testing.T) {
	l := New(Config{RequestsPerSecond: 1, Burst: 1})
	ctx := context.Background()

	if err := l.Wait(ctx, "search"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	start := time.Now()
	if err := l.Wait(ctx, "auth"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("auth should not wait on the search bucket, waited %v", elapsed)
	}
}

func TestWait_HonoursContext(t *testing.T) {
	l := New(Config{RequestsPerSecond: 0.1, Burst: 1})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_ = l.Wait(ctx, "search")
	if err := l.Wait(ctx, "search"); err == nil {
		t.Error("expected the second wait to fail within the deadline")
	}
}

func TestWait_NilAndUnlimited(t *testing.T) {
	var nilLimiter *EndpointLimiter
	if err := nilLimiter.Wait(context.Background(), "search"); err != nil {
		t.Errorf("nil limiter must not block: %v", err)
	}

	l := New(Config{})
	start := time.Now()
	for i := 0; i < 50; i++ {
		_ = l.Wait(context.Background(), "search")
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("zero rate means unlimited, took %v", elapsed)
	}
}
