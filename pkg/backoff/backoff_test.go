package backoff

import (
	"context"
	"testing"
	"time"
)

func TestJitter_Range(t *testing.T) {
	base := 3 * time.Second
	spread := 2 * time.Second

	for i := 0; i < 100; i++ {
		d := Jitter(base, spread)
		if d < base || d >= base+spread {
			t.Fatalf("Jitter out of range: %v", d)
		}
	}
}

func TestJitter_NoSpread(t *testing.T) {
	if d := Jitter(time.Second, 0); d != time.Second {
		t.Errorf("expected exactly 1s, got %v", d)
	}
	if d := Jitter(-time.Second, 0); d != 0 {
		t.Errorf("expected negative base clamped to 0, got %v", d)
	}
}

func TestExponential_Range(t *testing.T) {
	for attempt := 0; attempt < 4; attempt++ {
		min := time.Duration(1<<uint(attempt))*time.Second + time.Second
		max := time.Duration(1<<uint(attempt))*time.Second + 3*time.Second
		for i := 0; i < 50; i++ {
			d := Exponential(attempt)
			if d < min || d >= max {
				t.Fatalf("Exponential(%d) = %v, want [%v, %v)", attempt, d, min, max)
			}
		}
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("Sleep did not return promptly on cancellation")
	}
}

func TestSleep_Zero(t *testing.T) {
	if err := Sleep(context.Background(), 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
