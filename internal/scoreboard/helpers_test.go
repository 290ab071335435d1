package scoreboard

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(opts ...Option) *Hub {
	return NewHub(NewStore(), NewCatalog(), NewRegistry(), discardLogger(), opts...)
}

// recorder is a Subscriber that keeps everything delivered to it.
type recorder struct {
	id string

	mu     sync.Mutex
	events []Event
	err    error
}

func newRecorder(id string) *recorder { return &recorder{id: id} }

func (r *recorder) ID() string { return r.id }

func (r *recorder) Deliver(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

func (r *recorder) states(t *testing.T) []GameState {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]GameState, 0, len(r.events))
	for _, ev := range r.events {
		if ev.Name != EventScoreUpdate {
			t.Fatalf("unexpected event %q", ev.Name)
		}
		var st GameState
		if err := json.Unmarshal(ev.Data, &st); err != nil {
			t.Fatalf("decoding %s: %v", ev.Data, err)
		}
		out = append(out, st)
	}
	return out
}

// recvEvent receives one event with a timeout so tests never hang.
func recvEvent(t *testing.T, ch <-chan Event, within time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(within):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func recvNoEvent(t *testing.T, ch <-chan Event, within time.Duration) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("expected no event within %v, got %s %s", within, ev.Name, ev.Data)
	case <-time.After(within):
	}
}

func decodeState(t *testing.T, ev Event) GameState {
	t.Helper()
	if ev.Name != EventScoreUpdate {
		t.Fatalf("event = %q, want %q", ev.Name, EventScoreUpdate)
	}
	var st GameState
	if err := json.Unmarshal(ev.Data, &st); err != nil {
		t.Fatalf("decoding %s: %v", ev.Data, err)
	}
	return st
}
