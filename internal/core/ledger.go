package core

import "time"

// AttendancePoints is the fixed award for a first mark of the day.
const AttendancePoints = 5

// SessionDay is the date-only key attendance records are deduplicated on.
func SessionDay(now time.Time) string {
	return now.Format("2006-01-02")
}

// AttendanceRecord is one participant's mark for one session day.
// Immutable once created; kept for process lifetime.
type AttendanceRecord struct {
	Nickname string
	Day      string
	MarkedAt time.Time
	Points   int
}

// MarkStatus tells whether a mark was newly recorded or already present.
type MarkStatus int

const (
	// Marked means a new record was created and points awarded.
	Marked MarkStatus = iota
	// Duplicate means a record for the (nickname, day) pair already existed.
	// Not an error: the caller is told it was already marked.
	Duplicate
)

// MarkResult carries the outcome of a mark attempt and the governing record
// (the original one on Duplicate).
type MarkResult struct {
	Status MarkStatus
	Record AttendanceRecord
}

// Ledger records at most one attendance mark per (nickname, session day).
// Owned by the hub loop; independent of room membership.
type Ledger struct {
	records map[ledgerKey]AttendanceRecord
}

type ledgerKey struct {
	nickname string
	day      string
}

// NewLedger constructs an empty attendance ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[ledgerKey]AttendanceRecord)}
}

// Mark records attendance for nickname at the given time. A repeated mark
// for the same day returns Duplicate with the original record and does not
// grow the ledger.
func (l *Ledger) Mark(nickname string, now time.Time) MarkResult {
	key := ledgerKey{nickname: nickname, day: SessionDay(now)}
	if rec, ok := l.records[key]; ok {
		return MarkResult{Status: Duplicate, Record: rec}
	}
	rec := AttendanceRecord{
		Nickname: nickname,
		Day:      key.day,
		MarkedAt: now,
		Points:   AttendancePoints,
	}
	l.records[key] = rec
	return MarkResult{Status: Marked, Record: rec}
}

// Len returns the number of records held.
func (l *Ledger) Len() int {
	return len(l.records)
}
