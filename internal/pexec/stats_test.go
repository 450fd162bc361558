package pexec

import (
	"testing"
	"time"
)

func TestStatsInvariantAcrossLifecycle(t *testing.T) {
	s := NewStats()
	s.Enqueue()
	s.Enqueue()
	s.Enqueue()

	s.Dispatch()
	s.Dispatch()

	queued, running, succeeded, failed := s.Snapshot()
	if queued != 1 || running != 2 || succeeded != 0 || failed != 0 {
		t.Fatalf("unexpected snapshot: q=%d r=%d s=%d f=%d", queued, running, succeeded, failed)
	}
	if queued+running+succeeded+failed != 3 {
		t.Fatalf("invariant broken: total != admitted rows")
	}

	s.Finish(true, 10*time.Millisecond)
	s.Finish(false, 20*time.Millisecond)

	queued, running, succeeded, failed = s.Snapshot()
	if queued != 1 || running != 0 || succeeded != 1 || failed != 1 {
		t.Fatalf("unexpected snapshot: q=%d r=%d s=%d f=%d", queued, running, succeeded, failed)
	}
}

func TestStatsExitCodeCapsAt101(t *testing.T) {
	s := NewStats()
	for i := 0; i < 150; i++ {
		s.Enqueue()
		s.Dispatch()
		s.Finish(false, time.Millisecond)
	}
	if got := s.ExitCode(); got != 101 {
		t.Fatalf("got %d want 101", got)
	}
}

func TestStatsMeanRuntime(t *testing.T) {
	s := NewStats()
	s.Enqueue()
	s.Dispatch()
	s.Finish(true, 10*time.Millisecond)
	s.Enqueue()
	s.Dispatch()
	s.Finish(true, 30*time.Millisecond)

	if mean := s.MeanRuntime(); mean != 20*time.Millisecond {
		t.Fatalf("got %v want 20ms", mean)
	}
	if max := s.MaxRuntime(); max != 30*time.Millisecond {
		t.Fatalf("got %v want 30ms", max)
	}
}
