package light

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
)

func TestWaitForGreen_ignoresRed(t *testing.T) {
	defer leaktest.Check(t)()

	m := New(nil) // not started; the test plays the producer
	defer m.Stop()

	done := make(chan error, 1)
	go func() { done <- m.WaitForGreen(context.Background()) }()

	for range 10 {
		m.queue.Send(Red)
		select {
		case err := <-done:
			t.Fatalf("WaitForGreen returned after red: %v", err)
		case <-time.After(5 * time.Millisecond):
		}
	}

	m.queue.Send(Green)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WaitForGreen: unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for WaitForGreen")
	}
}

func TestWaitForGreen_pending(t *testing.T) {
	m := New(nil)
	defer m.Stop()

	// A green change that was published before anyone waited is delivered
	// immediately; one that was superseded by red is not.
	m.queue.Send(Green)
	if err := m.WaitForGreen(context.Background()); err != nil {
		t.Errorf("WaitForGreen: unexpected error: %v", err)
	}

	m.queue.Send(Green)
	m.queue.Send(Red)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.WaitForGreen(ctx); err == nil {
		t.Error("WaitForGreen returned for a superseded green")
	}
}

func TestDwell(t *testing.T) {
	m := New(&Config{MinDwell: 10 * time.Millisecond, MaxDwell: 12 * time.Millisecond})
	defer m.Stop()

	for range 1000 {
		if d := m.dwell(); d < m.minDwell || d > m.maxDwell {
			t.Fatalf("Dwell %v outside [%v, %v]", d, m.minDwell, m.maxDwell)
		}
	}

	fixed := New(&Config{MinDwell: time.Second, MaxDwell: time.Second})
	defer fixed.Stop()
	if d := fixed.dwell(); d != time.Second {
		t.Errorf("Fixed dwell: got %v, want 1s", d)
	}
}
