package scoreboard

import "errors"

var (
	// ErrSessionClosed is returned when delivering to or joining from a
	// session that has already been torn down.
	ErrSessionClosed = errors.New("session closed")
	// ErrSlowSubscriber is returned when a session's outbox is full. The
	// session is closed before this is returned.
	ErrSlowSubscriber = errors.New("subscriber outbox full")
	// ErrHubClosed is returned by operations attempted after Close.
	ErrHubClosed = errors.New("hub closed")
)

// ValidationError reports a malformed webhook payload. Nothing is applied
// when one is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// SubscriptionError reports a malformed join or leave request. It concerns
// the requesting connection only.
type SubscriptionError struct {
	Reason string
}

func (e *SubscriptionError) Error() string { return e.Reason }

func invalid(reason string) error { return &ValidationError{Reason: reason} }
