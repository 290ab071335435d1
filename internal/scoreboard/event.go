package scoreboard

import (
	"encoding/json"
	"fmt"
)

// Event names on the real-time channel.
const (
	EventJoinGame    = "join_game"
	EventLeaveGame   = "leave_game"
	EventScoreUpdate = "score_update"
	EventScoreError  = "score_error"
)

// Event is a named message with a pre-encoded JSON body. Encoding happens
// once per broadcast no matter how many subscribers receive it.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// NewEvent encodes v as the body of an event called name.
func NewEvent(name string, v any) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, fmt.Errorf("encoding %s event: %w", name, err)
	}
	return Event{Name: name, Data: data}, nil
}

// ErrorBody is the body of a score_error event.
type ErrorBody struct {
	Error string `json:"error"`
}

// RoomRequest is the body of join_game and leave_game.
type RoomRequest struct {
	Game string `json:"game"`
}

func scoreUpdate(st GameState) (Event, error) {
	return NewEvent(EventScoreUpdate, st)
}

func scoreError(reason string) Event {
	// ErrorBody always encodes.
	ev, _ := NewEvent(EventScoreError, ErrorBody{Error: reason})
	return ev
}
