package core

import "github.com/rs/zerolog"

// Bus fans events out to room members or single connections. Delivery is
// best-effort per recipient: a slow or gone consumer is dropped and logged,
// never allowed to stall the dispatch loop or delivery to other members.
// Called only from the hub loop.
type Bus struct {
	registry  *Registry
	directory *Directory
	log       zerolog.Logger
}

// NewBus builds a bus over the given registry and directory.
func NewBus(registry *Registry, directory *Directory, logger zerolog.Logger) *Bus {
	return &Bus{registry: registry, directory: directory, log: logger}
}

// ToRoom delivers the event to every connection in the room at this instant.
func (b *Bus) ToRoom(roomID string, event *Event) {
	b.ToRoomExcept(roomID, "", event)
}

// ToRoomExcept delivers to every room member except the named connection.
func (b *Bus) ToRoomExcept(roomID, exceptConnID string, event *Event) {
	for connID := range b.directory.MembersOf(roomID) {
		if connID == exceptConnID {
			continue
		}
		if c := b.registry.Get(connID); c != nil {
			b.deliver(c, event)
		}
	}
}

// ToConnection delivers to exactly one target, used for direct
// acknowledgements. Unknown ids are a no-op.
func (b *Bus) ToConnection(connID string, event *Event) {
	if c := b.registry.Get(connID); c != nil {
		b.deliver(c, event)
	}
}

// ToAll delivers to every registered connection, room membership aside.
func (b *Bus) ToAll(event *Event) {
	for _, c := range b.registry.clients {
		b.deliver(c, event)
	}
}

func (b *Bus) deliver(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
		b.log.Warn().Str("conn_id", c.ID).Int("event_kind", int(event.Kind)).
			Msg("event buffer full, dropping")
	}
}
