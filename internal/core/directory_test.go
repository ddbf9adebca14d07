package core

import "testing"

func TestDirectorySingleRoomInvariant(t *testing.T) {
	d := NewDirectory()

	steps := []struct {
		join string
	}{
		{"main"}, {"side"}, {"main"}, {"other"},
	}
	for _, step := range steps {
		d.Join("conn", step.join)

		memberships := 0
		for _, room := range []string{"main", "side", "other"} {
			if _, ok := d.MembersOf(room)["conn"]; ok {
				memberships++
			}
		}
		if memberships != 1 {
			t.Fatalf("connection in %d rooms after joining %s", memberships, step.join)
		}
		if d.RoomOf("conn") != step.join {
			t.Fatalf("RoomOf = %q, want %q", d.RoomOf("conn"), step.join)
		}
	}
}

func TestDirectoryJoinReportsPreviousRoomAndCount(t *testing.T) {
	d := NewDirectory()

	prev, count := d.Join("a", "main")
	if prev != "" || count != 1 {
		t.Fatalf("first join: prev=%q count=%d", prev, count)
	}

	d.Join("b", "main")
	prev, count = d.Join("a", "side")
	if prev != "main" || count != 1 {
		t.Fatalf("move: prev=%q count=%d", prev, count)
	}
	if len(d.MembersOf("main")) != 1 {
		t.Fatalf("old room kept %d members", len(d.MembersOf("main")))
	}
}

func TestDirectoryLeaveIdempotent(t *testing.T) {
	d := NewDirectory()

	if room := d.Leave("ghost"); room != "" {
		t.Fatalf("leave of unknown connection returned %q", room)
	}

	d.Join("a", "main")
	if room := d.Leave("a"); room != "main" {
		t.Fatalf("leave returned %q, want main", room)
	}
	if room := d.Leave("a"); room != "" {
		t.Fatalf("second leave returned %q", room)
	}
}

func TestDirectoryEmptyRoomRemains(t *testing.T) {
	d := NewDirectory()

	d.Join("a", "main")
	d.Leave("a")

	// Emptiness is not an error state: the room stays registered.
	if members := d.MembersOf("main"); members == nil || len(members) != 0 {
		t.Fatalf("expected empty registered room, got %v", members)
	}
}
