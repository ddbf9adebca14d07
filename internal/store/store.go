package store

import (
	"context"
	"errors"
	"time"
)

// ErrPollNotFound is returned when a poll id does not exist.
var ErrPollNotFound = errors.New("poll not found")

// UserRank is one leaderboard row.
type UserRank struct {
	Nickname string
	Team     string
	Points   int
}

// AttendanceRow is an append-only audit record of a successful mark.
type AttendanceRow struct {
	ID       int64
	Nickname string
	Session  string
	MarkedAt time.Time
}

// Upload is recorded file-upload metadata.
type Upload struct {
	ID       int64
	Filename string
	Uploader string
	At       time.Time
}

// Poll is a question with options and a vote tally keyed by option index.
type Poll struct {
	ID       int64
	Question string
	Options  []string
	Votes    map[string]int
}

// RosterStore handles users and their point totals.
type RosterStore interface {
	// EnsureUser inserts a user with zero points if not already present.
	EnsureUser(ctx context.Context, nickname, team string) error

	// AddPoints adds delta to a user's point total. Unknown users are a no-op.
	AddPoints(ctx context.Context, nickname string, delta int) error

	// Leaderboard returns all users ordered by points descending, nickname
	// ascending.
	Leaderboard(ctx context.Context) ([]UserRank, error)

	// TeamPoints returns the summed points per team.
	TeamPoints(ctx context.Context) (map[string]int, error)
}

// AttendanceStore handles the attendance audit trail.
type AttendanceStore interface {
	// RecordAttendance appends an audit row for a successful mark.
	RecordAttendance(ctx context.Context, row AttendanceRow) error

	// ListAttendance returns all audit rows, newest first.
	ListAttendance(ctx context.Context) ([]AttendanceRow, error)
}

// UploadStore handles upload metadata.
type UploadStore interface {
	// RecordUpload appends an upload record.
	RecordUpload(ctx context.Context, up Upload) (int64, error)

	// ListUploads returns the most recent uploads, newest first.
	ListUploads(ctx context.Context, limit int) ([]Upload, error)
}

// PollStore handles polls and votes.
type PollStore interface {
	// CreatePoll stores a poll with zeroed tallies and returns it.
	CreatePoll(ctx context.Context, question string, options []string) (*Poll, error)

	// GetPoll retrieves a poll by id.
	GetPoll(ctx context.Context, id int64) (*Poll, error)

	// ListPolls returns all polls, newest first.
	ListPolls(ctx context.Context) ([]*Poll, error)

	// Vote increments the tally for an option and returns the updated poll.
	Vote(ctx context.Context, pollID int64, optionIndex int) (*Poll, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	RosterStore
	AttendanceStore
	UploadStore
	PollStore

	// Close closes the underlying database connection.
	Close() error
}
