package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerSupersede(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Int32

	// Each Schedule resets the timer; only the last survives.
	for i := 0; i < 5; i++ {
		d.Schedule(func() { fired.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Fatalf("expected exactly 1 fire, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired atomic.Int32

	d.Schedule(func() { fired.Add(1) })
	d.Cancel()
	time.Sleep(60 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Fatalf("canceled callback must not fire, got %d", got)
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var fired atomic.Int32

	d.Schedule(func() { fired.Add(1) })
	d.Flush()
	if got := fired.Load(); got != 1 {
		t.Fatalf("Flush should run the pending callback, got %d", got)
	}

	// Flushed callback is consumed; timer no longer fires it.
	d.Flush()
	if got := fired.Load(); got != 1 {
		t.Fatalf("second Flush should be a no-op, got %d", got)
	}
}
