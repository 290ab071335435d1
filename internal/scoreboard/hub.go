package scoreboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const (
	defaultOutboxSize = 32
	reasonMissingGame = "Missing game name"
)

// Stats is a point-in-time view of the hub's size.
type Stats struct {
	Games       int `json:"games"`
	Channels    int `json:"channels"`
	Memberships int `json:"memberships"`
	Sessions    int `json:"sessions"`
	SheetNames  int `json:"sheet_names"`
}

// Option configures a Hub.
type Option func(*Hub)

// WithOutboxSize sets how many events a session may have queued before it
// is considered stale and dropped.
func WithOutboxSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.outboxSize = n
		}
	}
}

// Hub applies webhook updates to the Store and delivers them to the
// subscribers the Registry lists for each game.
//
// Every write to a game and the broadcast that follows it happen under that
// game's lock, and so does every join snapshot. A subscriber therefore sees a
// game's updates in the order they were applied, starting from exactly the
// state current when it joined.
type Hub struct {
	store    *Store
	catalog  *Catalog
	registry *Registry
	logger   *slog.Logger

	outboxSize int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewHub(store *Store, catalog *Catalog, registry *Registry, logger *slog.Logger, opts ...Option) *Hub {
	h := &Hub{
		store:      store,
		catalog:    catalog,
		registry:   registry,
		logger:     logger,
		outboxSize: defaultOutboxSize,
		locks:      make(map[string]*sync.Mutex),
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// gameLock returns the lock serializing writes and joins for game. Locks are
// kept for the life of the process, like known channels.
func (h *Hub) gameLock(game string) *sync.Mutex {
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	l, ok := h.locks[game]
	if !ok {
		l = &sync.Mutex{}
		h.locks[game] = l
	}
	return l
}

// ApplyUpdate validates st, stores it as the current state of st.Game and
// pushes it to the game's subscribers. Fields are stored as given.
func (h *Hub) ApplyUpdate(st GameState) (GameState, error) {
	if st.Game == "" {
		return GameState{}, invalid(reasonGameRequired)
	}

	ev, err := scoreUpdate(st)
	if err != nil {
		return GameState{}, fmt.Errorf("applying update for %q: %w", st.Game, err)
	}

	l := h.gameLock(st.Game)
	l.Lock()
	defer l.Unlock()

	h.store.Set(st.Game, st)
	// broadcast is a no-op for unknown channels; the check only skips the
	// membership copy.
	if h.registry.Known(st.Game) {
		h.broadcast(st.Game, ev)
	}
	h.logger.Info("game updated",
		"game", st.Game,
		"team1_balance", st.Team1Balance,
		"team2_balance", st.Team2Balance,
		"team1_tickets", st.Team1Tickets,
		"team2_tickets", st.Team2Tickets,
	)
	return st, nil
}

// ApplyCatalog replaces the list of selectable games. Nothing is broadcast.
func (h *Hub) ApplyCatalog(names []string) {
	h.catalog.Replace(names)
	h.logger.Info("sheet names updated", "count", len(names))
}

// broadcast delivers ev to a copy of game's membership and reports how many
// subscribers took it. Deliveries only enqueue, so a failure on one
// subscriber never holds up the others. Callers hold the game lock.
func (h *Hub) broadcast(game string, ev Event) int {
	delivered := 0
	for _, sub := range h.registry.Members(game) {
		if err := sub.Deliver(ev); err != nil {
			h.logger.Warn("delivery failed", "game", game, "session", sub.ID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Join subscribes sub to game and hands it the current snapshot of game
// before any later update can reach it.
func (h *Hub) Join(sub Subscriber, game string) error {
	if game == "" {
		return &SubscriptionError{Reason: reasonMissingGame}
	}

	l := h.gameLock(game)
	l.Lock()
	defer l.Unlock()

	if h.isClosed() {
		return ErrHubClosed
	}

	h.registry.Join(game, sub)
	ev, err := scoreUpdate(h.store.Get(game))
	if err != nil {
		h.registry.Leave(game, sub.ID())
		return fmt.Errorf("joining %q: %w", game, err)
	}
	if err := sub.Deliver(ev); err != nil {
		h.registry.Leave(game, sub.ID())
		return err
	}
	h.logger.Debug("session joined", "game", game, "session", sub.ID())
	return nil
}

// Leave unsubscribes id from game. Leaving a game never joined is fine.
func (h *Hub) Leave(id, game string) error {
	if game == "" {
		return &SubscriptionError{Reason: reasonMissingGame}
	}
	if h.registry.Leave(game, id) {
		h.logger.Debug("session left", "game", game, "session", id)
	}
	return nil
}

// Disconnect removes id from every channel it joined.
func (h *Hub) Disconnect(id string) {
	games := h.registry.Disconnect(id)
	h.logger.Debug("session disconnected", "session", id, "games", games)
}

// Snapshot returns the current state of game.
func (h *Hub) Snapshot(game string) GameState {
	return h.store.Get(game)
}

// SheetNames returns the current list of selectable games.
func (h *Hub) SheetNames() []string {
	return h.catalog.List()
}

func (h *Hub) Stats() Stats {
	known, memberships := h.registry.Counts()
	h.mu.Lock()
	sessions := len(h.sessions)
	h.mu.Unlock()
	return Stats{
		Games:       h.store.Len(),
		Channels:    known,
		Memberships: memberships,
		Sessions:    sessions,
		SheetNames:  len(h.catalog.List()),
	}
}

// Check implements health.Checker.
func (h *Hub) Check(_ context.Context) error {
	if h.isClosed() {
		return ErrHubClosed
	}
	return nil
}

// Close closes every live session. Joins and new sessions fail afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	h.logger.Info("hub closed", "sessions", len(sessions))
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Hub) forget(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}
