package proto

import "encoding/json"

// TimeLayout is the timestamp form carried on the wire.
const TimeLayout = "2006-01-02 15:04:05"

// Inbound is the envelope for events coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	InboundJoin        = "join"
	InboundLeave       = "leave"
	InboundSendMsg     = "send-msg"
	InboundReaction    = "reaction"
	InboundRandomTeams = "random-teams"

	OutboundStatus           = "status"
	OutboundNewMsg           = "new-msg"
	OutboundReaction         = "reaction"
	OutboundTeamsResult      = "teams-result"
	OutboundAttendanceMarked = "attendance-marked"
	OutboundNewUpload        = "new-upload"
	OutboundPollCreated      = "poll-created"
	OutboundPollUpdated      = "poll-updated"
	OutboundError            = "error"
)

// JoinData requests to enter a room under a nickname. Joining a new room
// implicitly leaves the previous one.
type JoinData struct {
	Room     string `json:"room"`
	Nickname string `json:"nickname"`
}

// MsgData is a chat message from the client.
type MsgData struct {
	Room     string `json:"room"`
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
	Style    string `json:"style,omitempty"`
}

// ReactionData is an emoji reaction, inbound and outbound alike.
type ReactionData struct {
	Nickname string `json:"nickname"`
	Emoji    string `json:"emoji"`
}

// RandomTeamsData asks for a random partition of members into teams.
type RandomTeamsData struct {
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// StatusData is a human-readable room announcement.
type StatusData struct {
	Msg string `json:"msg"`
}

// NewMsgData carries a chat message with its server-assigned timestamp.
type NewMsgData struct {
	Nickname string `json:"nickname"`
	Text     string `json:"text"`
	Style    string `json:"style"`
	TS       string `json:"ts"`
}

// TeamsResultData carries a randomized team partition.
type TeamsResultData struct {
	Teams [][]string `json:"teams"`
}

// AttendanceMarkedData announces a recorded attendance mark.
type AttendanceMarkedData struct {
	Nickname string `json:"nickname"`
	Session  string `json:"session,omitempty"`
	TS       string `json:"ts"`
}

// NewUploadData announces recorded upload metadata.
type NewUploadData struct {
	Uploader string `json:"uploader"`
	Filename string `json:"filename"`
	TS       string `json:"ts"`
}

// PollData carries poll state for created/updated announcements.
type PollData struct {
	ID       int64          `json:"id"`
	Question string         `json:"question"`
	Options  []string       `json:"options"`
	Votes    map[string]int `json:"votes,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
