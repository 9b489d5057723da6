package gpio

import (
	"testing"
	"time"
)

func TestFakeWatcherFire(t *testing.T) {
	var got []time.Duration
	f := NewFakeWatcher(func(ts time.Duration) {
		got = append(got, ts)
	})

	f.Fire(0)
	f.Fire(100 * time.Millisecond)

	if len(got) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(got))
	}
	if got[0] != 0 {
		t.Errorf("edge 0: expected 0, got %v", got[0])
	}
	if got[1] != 100*time.Millisecond {
		t.Errorf("edge 1: expected 100ms, got %v", got[1])
	}
}

func TestFakeWatcherFireBurst(t *testing.T) {
	var got []time.Duration
	f := NewFakeWatcher(func(ts time.Duration) {
		got = append(got, ts)
	})

	f.FireBurst(time.Second, 3, 10*time.Millisecond)

	want := []time.Duration{
		time.Second,
		time.Second + 10*time.Millisecond,
		time.Second + 20*time.Millisecond,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestFakeWatcherClose(t *testing.T) {
	fired := 0
	f := NewFakeWatcher(func(time.Duration) { fired++ })

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	// Edges after Close are dropped.
	f.Fire(time.Second)
	if fired != 0 {
		t.Errorf("expected no edges after Close, got %d", fired)
	}
}
