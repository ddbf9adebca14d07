package core

import "time"

// EventKind is a notification the coordinator emits to clients.
type EventKind int

const (
	// EventStatus is a human-readable room announcement (joins, departures).
	EventStatus EventKind = iota
	// EventNewMessage carries a chat message to room members.
	EventNewMessage
	// EventReaction carries an emoji reaction to room members.
	EventReaction
	// EventTeamsResult delivers a randomized team partition.
	EventTeamsResult
	// EventAttendanceMarked announces a recorded attendance mark.
	EventAttendanceMarked
	// EventNewUpload announces a recorded file upload.
	EventNewUpload
	// EventPollCreated announces a new poll.
	EventPollCreated
	// EventPollUpdated announces a changed vote tally.
	EventPollUpdated
	// EventError notifies the sender about a rejected command.
	EventError
)

// Message is the transient domain model for a chat message. It exists only
// for the duration of fan-out; no history is retained.
type Message struct {
	Nickname  string
	Room      string
	Text      string
	Style     string
	CreatedAt time.Time
}

// Reaction is a transient emoji reaction.
type Reaction struct {
	Nickname string
	Emoji    string
}

// UploadNotice announces upload metadata recorded by the HTTP collaborator.
type UploadNotice struct {
	Uploader string
	Filename string
	At       time.Time
}

// PollNotice carries poll state for created/updated announcements.
type PollNotice struct {
	ID       int64
	Question string
	Options  []string
	Votes    map[string]int
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind       EventKind
	Room       string
	Status     string
	Message    Message
	Reaction   Reaction
	Teams      [][]string
	Attendance *AttendanceRecord
	Session    string
	Upload     *UploadNotice
	Poll       *PollNotice
	Error      *CoreError
}
