package scoreboard

import "sync"

// Subscriber is one connection able to receive events. Deliver must not
// block on the network.
type Subscriber interface {
	ID() string
	Deliver(ev Event) error
}

// Registry tracks which subscribers sit in which game's channel. It holds
// no scoreboard data.
//
// A channel becomes known on its first join and stays known for the life of
// the process, even once empty. This avoids churn when every viewer drops and
// one reconnects; the cost is one map entry per game ever joined.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Subscriber
	known map[string]struct{}
	// reverse index used by Disconnect
	joined map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]Subscriber),
		known:  make(map[string]struct{}),
		joined: make(map[string]map[string]struct{}),
	}
}

// Join adds sub to game's channel. Joining twice is the same as joining once.
// It reports whether sub was newly added.
func (r *Registry) Join(game string, sub Subscriber) bool {
	id := sub.ID()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.known[game] = struct{}{}
	room := r.rooms[game]
	if room == nil {
		room = make(map[string]Subscriber)
		r.rooms[game] = room
	}
	if _, ok := room[id]; ok {
		return false
	}
	room[id] = sub

	games := r.joined[id]
	if games == nil {
		games = make(map[string]struct{})
		r.joined[id] = games
	}
	games[game] = struct{}{}
	return true
}

// Leave removes the subscriber with id from game's channel. Leaving a
// channel never joined is a no-op. The channel stays known.
func (r *Registry) Leave(game, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(game, id)
}

// Disconnect removes id from every channel it joined and returns those games.
func (r *Registry) Disconnect(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	games := make([]string, 0, len(r.joined[id]))
	for game := range r.joined[id] {
		games = append(games, game)
	}
	for _, game := range games {
		r.leaveLocked(game, id)
	}
	return games
}

func (r *Registry) leaveLocked(game, id string) bool {
	room := r.rooms[game]
	if _, ok := room[id]; !ok {
		return false
	}
	delete(room, id)
	if len(room) == 0 {
		delete(r.rooms, game)
	}
	if games := r.joined[id]; games != nil {
		delete(games, game)
		if len(games) == 0 {
			delete(r.joined, id)
		}
	}
	return true
}

// Members returns a copy of game's channel so callers can deliver without
// holding the registry lock.
func (r *Registry) Members(game string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[game]
	subs := make([]Subscriber, 0, len(room))
	for _, sub := range room {
		subs = append(subs, sub)
	}
	return subs
}

// Known reports whether game's channel has ever been joined.
func (r *Registry) Known(game string) bool {
	r.mu.RLock()
	_, ok := r.known[game]
	r.mu.RUnlock()
	return ok
}

// Channels returns the games id currently belongs to.
func (r *Registry) Channels(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	games := make([]string, 0, len(r.joined[id]))
	for game := range r.joined[id] {
		games = append(games, game)
	}
	return games
}

// Counts returns the number of known channels and of live memberships.
func (r *Registry) Counts() (known, memberships int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, room := range r.rooms {
		memberships += len(room)
	}
	return len(r.known), memberships
}
