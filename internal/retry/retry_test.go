package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{MaxAttempts: 3, Base: time.Millisecond, Max: 10 * time.Millisecond}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), fastConfig(), func() error {
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 call, got %d", calls.Load())
	}
}

func TestDoSucceedsOnNthAttempt(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), fastConfig(), func() error {
		n := calls.Add(1)
		if n < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDoExceedsMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	wantErr := errors.New("permanent")
	err := Do(context.Background(), fastConfig(), func() error {
		calls.Add(1)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped permanent error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	go func() {
		for calls.Load() < 1 {
		}
		cancel()
	}()
	err := Do(ctx, Config{MaxAttempts: 5, Base: 50 * time.Millisecond, Max: time.Second}, func() error {
		calls.Add(1)
		return errors.New("always fails")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDelayDoublesAndCaps(t *testing.T) {
	cfg := Config{Base: time.Second, Max: 20 * time.Second}
	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 20 * time.Second}
	cfg.Base = 5 * time.Second
	for i, w := range want {
		if got := cfg.Delay(i); got != w {
			t.Fatalf("Delay(%d) = %v, want %v", i, got, w)
		}
	}
}
