package player

import (
	"sync"

	"github.com/Strum355/log"
)

// Factory builds a player for a guild, wiring in that guild's transport
type Factory func(guildID string) *Player

// Registry maps guild IDs to their players, creating each on first use.
type Registry struct {
	mu      sync.Mutex
	players map[string]*Player
	factory Factory
}

// NewRegistry creates an empty registry backed by the given factory
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		players: make(map[string]*Player),
		factory: factory,
	}
}

// Get returns the guild's player, creating it on first use
func (r *Registry) Get(guildID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p
	}
	p := r.factory(guildID)
	r.players[guildID] = p
	log.WithFields(log.Fields{"guild_id": guildID}).Info("Player created")
	return p
}

// Peek returns the guild's player without creating one
func (r *Registry) Peek(guildID string) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[guildID]
	return p, ok
}

// Remove disconnects and drops the guild's player, used when the bot leaves
// a guild
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	p, ok := r.players[guildID]
	delete(r.players, guildID)
	r.mu.Unlock()

	if ok {
		p.Disconnect()
	}
}

// StopAll disconnects every player, used during graceful shutdown
func (r *Registry) StopAll() {
	r.mu.Lock()
	players := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, p)
	}
	r.players = make(map[string]*Player)
	r.mu.Unlock()

	for _, p := range players {
		p.Disconnect()
	}
}
