package core

// Directory maps room ids to their current member sets. A connection
// belongs to at most one room at any instant: joining a new room first
// removes it from the previous one. Owned by the hub loop.
type Directory struct {
	rooms  map[string]map[string]struct{}
	member map[string]string // connID -> roomID
}

// NewDirectory constructs an empty room directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:  make(map[string]map[string]struct{}),
		member: make(map[string]string),
	}
}

// Join moves a connection into roomID, creating the room if absent and
// leaving any previous room first. Returns the previous room id ("" if none)
// and the updated member count of the target room.
func (d *Directory) Join(connID, roomID string) (previous string, count int) {
	previous = d.Leave(connID)

	room, ok := d.rooms[roomID]
	if !ok {
		room = make(map[string]struct{})
		d.rooms[roomID] = room
	}
	room[connID] = struct{}{}
	d.member[connID] = roomID
	return previous, len(room)
}

// Leave removes the connection from whatever room it occupies and returns
// that room's id. Idempotent: returns "" if the connection is in no room.
func (d *Directory) Leave(connID string) string {
	roomID, ok := d.member[connID]
	if !ok {
		return ""
	}
	delete(d.member, connID)
	if room, ok := d.rooms[roomID]; ok {
		delete(room, connID)
	}
	// An empty room stays registered; emptiness is not an error state.
	return roomID
}

// RoomOf returns the room the connection currently occupies, or "".
func (d *Directory) RoomOf(connID string) string {
	return d.member[connID]
}

// MembersOf returns the member connection ids of a room at this instant.
func (d *Directory) MembersOf(roomID string) map[string]struct{} {
	return d.rooms[roomID]
}
