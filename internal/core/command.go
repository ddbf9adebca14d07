package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin binds a nickname and moves the connection into a room.
	CommandJoin CommandKind = iota
	// CommandLeave removes the connection from a room.
	CommandLeave
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandReaction forwards an emoji reaction to the sender's room.
	CommandReaction
	// CommandRandomTeams partitions a name list into random teams.
	CommandRandomTeams
)

// Command represents an action requested by a client. Nickname travels with
// every command because identity is caller-supplied, not authenticated.
type Command struct {
	Kind     CommandKind
	Room     string
	Nickname string
	Text     string
	Style    string
	Emoji    string
	Members  []string
	Size     int
}
