package nbio

import (
	"testing"
)

func TestPipeReadiness(t *testing.T) {
	r, w, err := Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	p := NewPoller()
	p.Add(int(r.Fd()), false)

	events, err := p.Wait(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no readiness before write, got %v", events)
	}

	if _, err := w.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}

	events, err = p.Wait(1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || !events[0].Readable {
		t.Fatalf("expected one readable event, got %v", events)
	}
}

func TestRemoveStopsWatching(t *testing.T) {
	r, w, err := Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	p := NewPoller()
	p.Add(int(r.Fd()), false)
	p.Remove(int(r.Fd()))
	if p.Len() != 0 {
		t.Fatalf("expected 0 watched fds, got %d", p.Len())
	}
}
