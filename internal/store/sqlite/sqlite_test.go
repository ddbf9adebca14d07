package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/classhub-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.EnsureUser(ctx, "alice", "red"); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := st.AddPoints(ctx, "alice", 5); err != nil {
		t.Fatalf("add points: %v", err)
	}
	// Second insert must not reset points or team.
	if err := st.EnsureUser(ctx, "alice", "blue"); err != nil {
		t.Fatalf("ensure user again: %v", err)
	}

	ranks, err := st.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(ranks) != 1 {
		t.Fatalf("expected 1 user, got %d", len(ranks))
	}
	if ranks[0].Points != 5 || ranks[0].Team != "red" {
		t.Fatalf("unexpected rank: %+v", ranks[0])
	}
}

func TestAddPointsUnknownUserIsNoOp(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.AddPoints(ctx, "ghost", 5); err != nil {
		t.Fatalf("add points: %v", err)
	}
	ranks, err := st.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(ranks) != 0 {
		t.Fatalf("expected empty leaderboard, got %d rows", len(ranks))
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, u := range []struct {
		nick   string
		team   string
		points int
	}{
		{"carol", "blue", 10},
		{"alice", "red", 10},
		{"bob", "red", 3},
	} {
		if err := st.EnsureUser(ctx, u.nick, u.team); err != nil {
			t.Fatalf("ensure %s: %v", u.nick, err)
		}
		if err := st.AddPoints(ctx, u.nick, u.points); err != nil {
			t.Fatalf("points %s: %v", u.nick, err)
		}
	}

	ranks, err := st.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	got := make([]string, 0, len(ranks))
	for _, r := range ranks {
		got = append(got, r.Nickname)
	}
	want := []string{"alice", "carol", "bob"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestTeamPoints(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seed := map[string]struct {
		team   string
		points int
	}{
		"alice": {"red", 5},
		"bob":   {"red", 3},
		"carol": {"blue", 7},
		"dave":  {"", 9}, // no team, excluded from totals
	}
	for nick, u := range seed {
		if err := st.EnsureUser(ctx, nick, u.team); err != nil {
			t.Fatalf("ensure %s: %v", nick, err)
		}
		if err := st.AddPoints(ctx, nick, u.points); err != nil {
			t.Fatalf("points %s: %v", nick, err)
		}
	}

	totals, err := st.TeamPoints(ctx)
	if err != nil {
		t.Fatalf("team points: %v", err)
	}
	if totals["red"] != 8 || totals["blue"] != 7 {
		t.Fatalf("unexpected totals: %v", totals)
	}
	if _, ok := totals[""]; ok {
		t.Fatal("teamless users must not appear in totals")
	}
}

func TestAttendanceAudit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err := st.RecordAttendance(ctx, store.AttendanceRow{Nickname: "alice", Session: "Lab Period", MarkedAt: first}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := st.RecordAttendance(ctx, store.AttendanceRow{Nickname: "bob", Session: "Lab Period", MarkedAt: second}); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := st.ListAttendance(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Newest first.
	if rows[0].Nickname != "bob" || rows[1].Nickname != "alice" {
		t.Fatalf("unexpected order: %+v", rows)
	}
	if rows[0].Session != "Lab Period" {
		t.Fatalf("unexpected session: %q", rows[0].Session)
	}
}

func TestUploadsNewestFirstWithLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	names := []string{"a.pdf", "b.pdf", "c.pdf"}
	for i, name := range names {
		id, err := st.RecordUpload(ctx, store.Upload{
			Filename: name,
			Uploader: "alice",
			At:       base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
		if id == 0 {
			t.Fatalf("expected non-zero id for %s", name)
		}
	}

	ups, err := st.ListUploads(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ups) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(ups))
	}
	if ups[0].Filename != "c.pdf" || ups[1].Filename != "b.pdf" {
		t.Fatalf("unexpected order: %+v", ups)
	}
}

func TestPollCreateVoteAndList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	poll, err := st.CreatePoll(ctx, "Lunch?", []string{"pizza", "sushi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if poll.ID == 0 {
		t.Fatal("expected non-zero poll id")
	}
	if poll.Votes["0"] != 0 || poll.Votes["1"] != 0 {
		t.Fatalf("expected zeroed tallies, got %v", poll.Votes)
	}

	for range 2 {
		if _, err := st.Vote(ctx, poll.ID, 1); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}
	updated, err := st.Vote(ctx, poll.ID, 0)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if updated.Votes["0"] != 1 || updated.Votes["1"] != 2 {
		t.Fatalf("unexpected tallies: %v", updated.Votes)
	}

	got, err := st.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Votes["1"] != 2 {
		t.Fatalf("tallies not persisted: %v", got.Votes)
	}

	_, err = st.CreatePoll(ctx, "Demo day?", []string{"yes", "no"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	polls, err := st.ListPolls(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(polls) != 2 || polls[0].Question != "Demo day?" {
		t.Fatalf("unexpected poll list: %+v", polls)
	}
}

func TestPollNotFound(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.GetPoll(ctx, 42); !errors.Is(err, store.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
	if _, err := st.Vote(ctx, 42, 0); !errors.Is(err, store.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}
}

func TestVoteOptionOutOfRange(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	poll, err := st.CreatePoll(ctx, "Lunch?", []string{"pizza", "sushi"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.Vote(ctx, poll.ID, 5); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
