package core

// Client is a live connection as seen by the coordinator.
// Nickname is bound on the first join and may be rebound later;
// only the hub loop touches it after registration.
type Client struct {
	ID       string
	Nickname string
	Commands chan *Command
	Events   chan *Event

	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id, nickname string) *Client {
	return &Client{
		ID:       id,
		Nickname: nickname,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		done:     make(chan struct{}),
	}
}
