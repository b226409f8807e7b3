package notify

import "sync"

// Presence is the in-memory session registry of currently connected
// users. The transport layer feeds it on connect/disconnect; the router
// reads it to pick a delegation target. It is per-process state and is
// never persisted.
type Presence struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{online: map[string]struct{}{}}
}

func (p *Presence) Connect(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = struct{}{}
}

func (p *Presence) Disconnect(userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
}

func (p *Presence) Online(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

func (p *Presence) OnlineIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.online))
	for id := range p.online {
		out = append(out, id)
	}
	return out
}
