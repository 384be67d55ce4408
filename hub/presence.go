package hub

// Presence maps a username to its single active connection id and is the
// sole authority for session uniqueness. It does no locking of its own:
// the Manager serializes every access under one mutex so the presence,
// table, and room structures always change together.
type Presence struct {
	active map[string]string
}

func NewPresence() *Presence {
	return &Presence{active: make(map[string]string)}
}

// TryActivate installs username -> connectionID. Reconnecting with the
// same id is permitted; a different live id for the same username is a
// session collision and leaves the registry untouched.
func (p *Presence) TryActivate(username, connectionID string) bool {
	if current, ok := p.active[username]; ok && current != connectionID {
		return false
	}
	p.active[username] = connectionID
	return true
}

// Deactivate removes the mapping; a no-op when the username is absent.
func (p *Presence) Deactivate(username string) {
	delete(p.active, username)
}

func (p *Presence) IsActive(username string) bool {
	_, ok := p.active[username]
	return ok
}

func (p *Presence) ActiveConnectionOf(username string) (string, bool) {
	connectionID, ok := p.active[username]
	return connectionID, ok
}

func (p *Presence) Len() int {
	return len(p.active)
}
