package core

// Registry tracks live connections and the nickname bound to each.
// It is owned by the hub loop and must not be used concurrently.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry constructs an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register adds a connection. Re-registering the same id replaces the entry.
func (r *Registry) Register(c *Client) {
	r.clients[c.ID] = c
}

// BindNickname sets or overwrites the identity bound to a connection.
// Empty nicknames and unknown ids are ignored; uniqueness is not enforced,
// multiple connections may share a nickname.
func (r *Registry) BindNickname(connID, nickname string) {
	if nickname == "" {
		return
	}
	if c, ok := r.clients[connID]; ok {
		c.Nickname = nickname
	}
}

// Unregister removes a connection and returns it, or nil if unknown.
// Unknown ids are a no-op: the connection may already have disconnected
// mid-dispatch.
func (r *Registry) Unregister(connID string) *Client {
	c, ok := r.clients[connID]
	if !ok {
		return nil
	}
	delete(r.clients, connID)
	return c
}

// Get returns the connection for an id, or nil.
func (r *Registry) Get(connID string) *Client {
	return r.clients[connID]
}

// ByNickname returns every connection currently bound to the nickname.
func (r *Registry) ByNickname(nickname string) []*Client {
	var out []*Client
	for _, c := range r.clients {
		if c.Nickname == nickname {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	return len(r.clients)
}
