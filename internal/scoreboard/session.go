package scoreboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Session is one viewer connection. It starts connected, joins and leaves
// any number of games, and ends closed; a closed session never reopens.
//
// Events for the session queue in its outbox, which the owning transport
// drains to the network. A full outbox closes the session rather than
// dropping an update.
type Session struct {
	id     string
	hub    *Hub
	outbox chan Event

	done      chan struct{}
	closeOnce sync.Once
}

// NewSession registers a new connected session with the hub.
func (h *Hub) NewSession() (*Session, error) {
	s := &Session{
		id:     uuid.NewString(),
		hub:    h,
		outbox: make(chan Event, h.outboxSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	h.sessions[s.id] = s
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Outbox yields the events queued for this session, in delivery order.
func (s *Session) Outbox() <-chan Event { return s.outbox }

// Done is closed once the session is closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Deliver queues ev without blocking.
func (s *Session) Deliver(ev Event) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbox <- ev:
		return nil
	default:
		s.Close()
		return ErrSlowSubscriber
	}
}

// Join subscribes the session to game. The snapshot is queued before Join
// returns.
func (s *Session) Join(game string) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	if err := s.hub.Join(s, game); err != nil {
		return err
	}
	// Close may have raced the join and already swept the registry.
	if s.Closed() {
		s.hub.registry.Leave(game, s.id)
		return ErrSessionClosed
	}
	return nil
}

// Leave unsubscribes the session from game.
func (s *Session) Leave(game string) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	return s.hub.Leave(s.id, game)
}

// Games lists the games the session is subscribed to.
func (s *Session) Games() []string {
	return s.hub.registry.Channels(s.id)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close ends the session and removes it from every channel. It is safe to
// call more than once and from any goroutine.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.hub.Disconnect(s.id)
		s.hub.forget(s.id)
	})
}

// ClientMessage is a frame sent by a viewer.
type ClientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handle applies one client frame. Problems with the frame itself are
// reported to this session as score_error and not returned; the returned
// error is for the transport to log.
func (s *Session) Handle(frame []byte) error {
	var msg ClientMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return s.reject("bad json")
	}

	var req RoomRequest
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			req = RoomRequest{}
		}
	}

	switch msg.Event {
	case EventJoinGame:
		err := s.Join(req.Game)
		var subErr *SubscriptionError
		if errors.As(err, &subErr) {
			return s.reject(subErr.Reason)
		}
		return err
	case EventLeaveGame:
		// A malformed leave gets no reply.
		err := s.Leave(req.Game)
		var subErr *SubscriptionError
		if errors.As(err, &subErr) {
			return nil
		}
		return err
	default:
		return s.reject(fmt.Sprintf("unknown event %q", msg.Event))
	}
}

func (s *Session) reject(reason string) error {
	if err := s.Deliver(scoreError(reason)); err != nil {
		return fmt.Errorf("sending score_error: %w", err)
	}
	return nil
}
