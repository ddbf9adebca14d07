package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/classhub-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and bootstraps the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		nickname  TEXT NOT NULL UNIQUE,
		team      TEXT NOT NULL DEFAULT '',
		points    INTEGER NOT NULL DEFAULT 0,
		joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS attendance (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		nickname     TEXT NOT NULL,
		session_name TEXT NOT NULL DEFAULT '',
		ts           DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS uploads (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		uploader TEXT NOT NULL,
		ts       DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS polls (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		options  TEXT NOT NULL,
		votes    TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== RosterStore implementation ====

// EnsureUser inserts a user with zero points if not already present.
func (s *SQLiteStore) EnsureUser(ctx context.Context, nickname, team string) error {
	query := `INSERT OR IGNORE INTO users (nickname, team) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, nickname, team); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AddPoints adds delta to a user's point total.
func (s *SQLiteStore) AddPoints(ctx context.Context, nickname string, delta int) error {
	query := `UPDATE users SET points = points + ? WHERE nickname = ?`
	if _, err := s.db.ExecContext(ctx, query, delta, nickname); err != nil {
		return fmt.Errorf("update points: %w", err)
	}
	return nil
}

// Leaderboard returns all users ordered by points descending, nickname ascending.
func (s *SQLiteStore) Leaderboard(ctx context.Context) ([]store.UserRank, error) {
	query := `SELECT nickname, team, points FROM users ORDER BY points DESC, nickname ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	ranks := make([]store.UserRank, 0)
	for rows.Next() {
		var r store.UserRank
		if err := rows.Scan(&r.Nickname, &r.Team, &r.Points); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// TeamPoints returns the summed points per team.
func (s *SQLiteStore) TeamPoints(ctx context.Context) (map[string]int, error) {
	query := `SELECT team, COALESCE(SUM(points), 0) FROM users WHERE team != '' GROUP BY team`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query team points: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var team string
		var points int
		if err := rows.Scan(&team, &points); err != nil {
			return nil, fmt.Errorf("scan team points row: %w", err)
		}
		totals[team] = points
	}
	return totals, rows.Err()
}

// ==== AttendanceStore implementation ====

// RecordAttendance appends an audit row for a successful mark.
func (s *SQLiteStore) RecordAttendance(ctx context.Context, row store.AttendanceRow) error {
	query := `INSERT INTO attendance (nickname, session_name, ts) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, row.Nickname, row.Session, row.MarkedAt); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// ListAttendance returns all audit rows, newest first.
func (s *SQLiteStore) ListAttendance(ctx context.Context) ([]store.AttendanceRow, error) {
	query := `SELECT id, nickname, session_name, ts FROM attendance ORDER BY ts DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query attendance: %w", err)
	}
	defer rows.Close()

	out := make([]store.AttendanceRow, 0)
	for rows.Next() {
		var r store.AttendanceRow
		if err := rows.Scan(&r.ID, &r.Nickname, &r.Session, &r.MarkedAt); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ==== UploadStore implementation ====

// RecordUpload appends an upload record.
func (s *SQLiteStore) RecordUpload(ctx context.Context, up store.Upload) (int64, error) {
	query := `INSERT INTO uploads (filename, uploader, ts) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, up.Filename, up.Uploader, up.At)
	if err != nil {
		return 0, fmt.Errorf("insert upload: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// ListUploads returns the most recent uploads, newest first.
func (s *SQLiteStore) ListUploads(ctx context.Context, limit int) ([]store.Upload, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, filename, uploader, ts FROM uploads ORDER BY ts DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	out := make([]store.Upload, 0, limit)
	for rows.Next() {
		var u store.Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.Uploader, &u.At); err != nil {
			return nil, fmt.Errorf("scan upload row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ==== PollStore implementation ====

// CreatePoll stores a poll with zeroed tallies and returns it.
func (s *SQLiteStore) CreatePoll(ctx context.Context, question string, options []string) (*store.Poll, error) {
	votes := make(map[string]int, len(options))
	for i := range options {
		votes[strconv.Itoa(i)] = 0
	}

	optJSON, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("marshal options: %w", err)
	}
	voteJSON, err := json.Marshal(votes)
	if err != nil {
		return nil, fmt.Errorf("marshal votes: %w", err)
	}

	query := `INSERT INTO polls (question, options, votes) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, question, string(optJSON), string(voteJSON))
	if err != nil {
		return nil, fmt.Errorf("insert poll: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return &store.Poll{ID: id, Question: question, Options: options, Votes: votes}, nil
}

// GetPoll retrieves a poll by id.
func (s *SQLiteStore) GetPoll(ctx context.Context, id int64) (*store.Poll, error) {
	query := `SELECT id, question, options, votes FROM polls WHERE id = ?`
	poll, err := scanPoll(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPollNotFound
		}
		return nil, fmt.Errorf("query poll: %w", err)
	}
	return poll, nil
}

// ListPolls returns all polls, newest first.
func (s *SQLiteStore) ListPolls(ctx context.Context) ([]*store.Poll, error) {
	query := `SELECT id, question, options, votes FROM polls ORDER BY id DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query polls: %w", err)
	}
	defer rows.Close()

	out := make([]*store.Poll, 0)
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poll row: %w", err)
		}
		out = append(out, poll)
	}
	return out, rows.Err()
}

// Vote increments the tally for an option and returns the updated poll.
func (s *SQLiteStore) Vote(ctx context.Context, pollID int64, optionIndex int) (*store.Poll, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT id, question, options, votes FROM polls WHERE id = ?`
	poll, err := scanPoll(tx.QueryRowContext(ctx, query, pollID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPollNotFound
		}
		return nil, fmt.Errorf("query poll: %w", err)
	}

	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		return nil, fmt.Errorf("option index %d out of range", optionIndex)
	}
	key := strconv.Itoa(optionIndex)
	poll.Votes[key]++

	voteJSON, err := json.Marshal(poll.Votes)
	if err != nil {
		return nil, fmt.Errorf("marshal votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE polls SET votes = ? WHERE id = ?`, string(voteJSON), pollID); err != nil {
		return nil, fmt.Errorf("update votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit vote tx: %w", err)
	}
	return poll, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*store.Poll, error) {
	var poll store.Poll
	var optJSON, voteJSON string
	if err := row.Scan(&poll.ID, &poll.Question, &optJSON, &voteJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(optJSON), &poll.Options); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	if err := json.Unmarshal([]byte(voteJSON), &poll.Votes); err != nil {
		return nil, fmt.Errorf("unmarshal votes: %w", err)
	}
	return &poll, nil
}
