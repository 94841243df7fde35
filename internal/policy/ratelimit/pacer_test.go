package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacer_Wait(t *testing.T) {
	p := New(Config{Interval: 100 * time.Millisecond})
	ctx := context.Background()

	// First call should be immediate
	start := time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 20*time.Millisecond {
		t.Logf("warning: first wait took %v", time.Since(start))
	}

	// Next one should wait ~100ms
	start = time.Now()
	if err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if dur := time.Since(start); dur < 80*time.Millisecond {
		t.Errorf("expected wait ~100ms, got %v", dur)
	}
}

func TestPacer_ZeroIntervalNeverBlocks(t *testing.T) {
	p := New(Config{})
	start := time.Now()
	for i := 0; i < 50; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("unpaced waits blocked for %v", time.Since(start))
	}
}

func TestPacer_CanceledContext(t *testing.T) {
	p := New(Config{Interval: time.Hour})
	if err := p.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
