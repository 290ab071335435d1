// Package scoreboard holds live scoreboard state for concurrently running
// games and fans updates out to the connections subscribed to each game.
package scoreboard

import "sync"

// zero is the value every numeric field takes before a game reports anything.
const zero = "0"

// GameState is the latest known scoreboard for one game. The numeric fields
// are carried as the producer sent them and never parsed.
type GameState struct {
	Game         string `json:"game"`
	Team1Balance string `json:"team1_balance"`
	Team2Balance string `json:"team2_balance"`
	Team1Tickets string `json:"team1_tickets"`
	Team2Tickets string `json:"team2_tickets"`
}

// DefaultState is the snapshot of a game nobody has reported yet.
func DefaultState(game string) GameState {
	return GameState{
		Game:         game,
		Team1Balance: zero,
		Team2Balance: zero,
		Team1Tickets: zero,
		Team2Tickets: zero,
	}
}

// Store maps game identifiers to their current GameState. Values are
// replaced wholesale; last writer wins.
type Store struct {
	mu     sync.RWMutex
	states map[string]GameState
}

func NewStore() *Store {
	return &Store{
		states: make(map[string]GameState),
	}
}

// Get returns the current state of game, or DefaultState if none was set.
func (s *Store) Get(game string) GameState {
	s.mu.RLock()
	st, ok := s.states[game]
	s.mu.RUnlock()
	if !ok {
		return DefaultState(game)
	}
	return st
}

// Set replaces the stored state of game.
func (s *Store) Set(game string, st GameState) {
	st.Game = game
	s.mu.Lock()
	s.states[game] = st
	s.mu.Unlock()
}

// Len reports how many games have been set at least once.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Catalog is the producer-supplied list of selectable game identifiers.
type Catalog struct {
	mu    sync.RWMutex
	names []string
}

func NewCatalog() *Catalog {
	return &Catalog{names: []string{}}
}

// Replace swaps the whole list for names. Nothing is merged.
func (c *Catalog) Replace(names []string) {
	cp := make([]string, len(names))
	copy(cp, names)
	c.mu.Lock()
	c.names = cp
	c.mu.Unlock()
}

// List returns a copy of the current list in producer order.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make([]string, len(c.names))
	copy(cp, c.names)
	return cp
}
