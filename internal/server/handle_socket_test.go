package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/codechella/scoreboard/internal/scoreboard"
)

func dialSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/socket"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	ev, err := scoreboard.NewEvent(event, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	frame, _ := json.Marshal(ev)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) scoreboard.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev scoreboard.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return ev
}

func readState(t *testing.T, conn *websocket.Conn) scoreboard.GameState {
	t.Helper()
	ev := readEvent(t, conn)
	if ev.Name != scoreboard.EventScoreUpdate {
		t.Fatalf("event = %q (%s), want %q", ev.Name, ev.Data, scoreboard.EventScoreUpdate)
	}
	var st scoreboard.GameState
	if err := json.Unmarshal(ev.Data, &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return st
}

func newSocketServer(t *testing.T) (*httptest.Server, *scoreboard.Hub) {
	t.Helper()
	h, hub := newTestRouter(t)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, hub
}

func TestSocketJoinThenUpdate(t *testing.T) {
	srv, _ := newSocketServer(t)
	conn := dialSocket(t, srv)

	send(t, conn, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G1"})
	if got := readState(t, conn); got != scoreboard.DefaultState("G1") {
		t.Fatalf("join snapshot = %+v, want zeros", got)
	}

	resp, err := http.Post(srv.URL+"/webhook/update_game", "application/json",
		strings.NewReader(`{"game":"G1","team1_balance":150,"team2_balance":200,"team1_tickets":25,"team2_tickets":30}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	want := scoreboard.GameState{Game: "G1", Team1Balance: "150", Team2Balance: "200", Team1Tickets: "25", Team2Tickets: "30"}
	if got := readState(t, conn); got != want {
		t.Errorf("update = %+v, want %+v", got, want)
	}
}

func TestSocketErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
	}{
		{"join without game", `{"event":"join_game","data":{}}`, "Missing game name"},
		{"unknown event", `{"event":"dance","data":{}}`, `unknown event "dance"`},
		{"bad json", `{`, "bad json"},
	}

	srv, _ := newSocketServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dialSocket(t, srv)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := conn.Write(ctx, websocket.MessageText, []byte(tt.frame)); err != nil {
				t.Fatalf("write: %v", err)
			}

			ev := readEvent(t, conn)
			if ev.Name != scoreboard.EventScoreError {
				t.Fatalf("event = %q, want %q", ev.Name, scoreboard.EventScoreError)
			}
			var body scoreboard.ErrorBody
			json.Unmarshal(ev.Data, &body)
			if body.Error != tt.want {
				t.Errorf("error = %q, want %q", body.Error, tt.want)
			}
		})
	}
}

func TestSocketChannelIsolation(t *testing.T) {
	srv, hub := newSocketServer(t)
	a := dialSocket(t, srv)
	b := dialSocket(t, srv)

	send(t, a, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G1"})
	readState(t, a)
	send(t, b, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G2"})
	readState(t, b)

	if _, err := hub.ApplyUpdate(scoreboard.GameState{Game: "G2", Team1Balance: "5"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := readState(t, b); got.Game != "G2" || got.Team1Balance != "5" {
		t.Errorf("b got %+v", got)
	}

	// a must see its own next update and nothing from G2 before it.
	if _, err := hub.ApplyUpdate(scoreboard.GameState{Game: "G1", Team1Balance: "1"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := readState(t, a); got.Game != "G1" || got.Team1Balance != "1" {
		t.Errorf("a got %+v", got)
	}
}

func TestSocketLeaveStopsUpdates(t *testing.T) {
	srv, hub := newSocketServer(t)
	conn := dialSocket(t, srv)

	send(t, conn, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G1"})
	readState(t, conn)
	send(t, conn, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G2"})
	readState(t, conn)
	send(t, conn, scoreboard.EventLeaveGame, scoreboard.RoomRequest{Game: "G1"})

	waitFor(t, func() bool { return hub.Stats().Memberships == 1 })

	hub.ApplyUpdate(scoreboard.GameState{Game: "G1", Team1Balance: "9"})
	hub.ApplyUpdate(scoreboard.GameState{Game: "G2", Team1Balance: "3"})

	if got := readState(t, conn); got.Game != "G2" {
		t.Errorf("first event after leave = %+v, want G2", got)
	}
}

func TestSocketDisconnectRemovesMemberships(t *testing.T) {
	srv, hub := newSocketServer(t)
	conn := dialSocket(t, srv)

	send(t, conn, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G1"})
	readState(t, conn)
	if got := hub.Stats().Memberships; got != 1 {
		t.Fatalf("memberships = %d, want 1", got)
	}

	conn.Close(websocket.StatusNormalClosure, "bye")
	waitFor(t, func() bool { return hub.Stats().Memberships == 0 && hub.Stats().Sessions == 0 })

	if _, err := hub.ApplyUpdate(scoreboard.GameState{Game: "G1"}); err != nil {
		t.Errorf("update after disconnect: %v", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSocketIdleViewerStaysJoined(t *testing.T) {
	cfg := testConfig(t)
	cfg.WSPingInterval = 50 * time.Millisecond
	hub := newTestHub()
	t.Cleanup(hub.Close)
	srv := httptest.NewServer(NewRouter(cfg, discardLogger(), hub))
	t.Cleanup(srv.Close)

	conn := dialSocket(t, srv)
	send(t, conn, scoreboard.EventJoinGame, scoreboard.RoomRequest{Game: "G1"})
	readState(t, conn)

	// A browser keeps reading (and so answering pings) without sending anything.
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	frames := make(chan []byte, 1)
	go func() {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				close(frames)
				return
			}
			frames <- data
		}
	}()

	time.Sleep(10 * cfg.WSPingInterval)
	if got := hub.Stats(); got.Memberships != 1 || got.Sessions != 1 {
		t.Fatalf("stats after idle = %+v, want one session in one channel", got)
	}

	if _, err := hub.ApplyUpdate(scoreboard.GameState{Game: "G1", Team1Balance: "8"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	select {
	case data, ok := <-frames:
		if !ok {
			t.Fatal("connection closed while idle")
		}
		if !strings.Contains(string(data), `"team1_balance":"8"`) {
			t.Errorf("frame = %s", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
}
