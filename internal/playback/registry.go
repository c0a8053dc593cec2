package playback

import "sync"

// Registry maps guild IDs to their voice connection and audio player. It holds
// handles only; closing them is the caller's job. Absent entries are reported
// with ok == false, never with an error.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]Connection
	players     map[string]Player
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]Connection),
		players:     make(map[string]Player),
	}
}

func (r *Registry) SetConnection(guildID string, c Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[guildID] = c
}

func (r *Registry) Connection(guildID string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connections[guildID]
	return c, ok
}

func (r *Registry) DeleteConnection(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, guildID)
}

func (r *Registry) SetPlayer(guildID string, p Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[guildID] = p
}

func (r *Registry) Player(guildID string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[guildID]
	return p, ok
}

func (r *Registry) DeletePlayer(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, guildID)
}

// Delete removes both the connection and the player of a guild.
func (r *Registry) Delete(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, guildID)
	delete(r.players, guildID)
}
