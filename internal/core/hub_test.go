package core

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestHubJoinBroadcastAndMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	bob := NewClient("b", "")

	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	bob.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Bob"}

	// Joins are announced to the room, the joiner included.
	joinEv := mustEvent(t, alice.Events, EventStatus)
	if joinEv.Room != "main" || joinEv.Status != "Alice joined main." {
		t.Fatalf("unexpected status event: %+v", joinEv)
	}

	alice.Commands <- &Command{
		Kind:     CommandSendMessage,
		Room:     "main",
		Nickname: "Alice",
		Text:     "hi",
		Style:    "invisible",
	}

	// Both sender and peer receive the message, style carried verbatim.
	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventNewMessage)
		msg := ev.Message
		if msg.Nickname != "Alice" || msg.Text != "hi" || msg.Style != StyleInvisible || msg.Room != "main" {
			t.Fatalf("unexpected message event: %+v", ev)
		}
		if msg.CreatedAt.IsZero() {
			t.Fatal("expected server-assigned timestamp")
		}
	}
}

func TestHubMessageScopedToRoom(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	bob := NewClient("b", "")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	bob.Commands <- &Command{Kind: CommandJoin, Room: "side", Nickname: "Bob"}

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "main", Nickname: "Alice", Text: "hi"}

	mustEvent(t, alice.Events, EventNewMessage)
	mustNoEvent(t, bob.Events, EventNewMessage)
}

func TestHubSendWithoutJoinProducesError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandSendMessage, Room: "main", Nickname: "Alice", Text: "hi"}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room error, got %+v", ev)
	}
}

func TestHubJoinMovesBetweenRooms(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	watcher := NewClient("w", "")
	hub.RegisterClient(alice)
	hub.RegisterClient(watcher)

	watcher.Commands <- &Command{Kind: CommandJoin, Room: "old", Nickname: "Watcher"}
	alice.Commands <- &Command{Kind: CommandJoin, Room: "old", Nickname: "Alice"}
	alice.Commands <- &Command{Kind: CommandJoin, Room: "new", Nickname: "Alice"}

	// The old room hears the departure.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatal("departure status never announced to old room")
		}
		ev := mustEvent(t, watcher.Events, EventStatus)
		if ev.Status == "Alice left old." {
			if ev.Room != "old" {
				t.Fatalf("departure announced to wrong room: %+v", ev)
			}
			break
		}
	}

	if err := hub.do(ctx, func(h *Hub) {
		if room := h.directory.RoomOf("a"); room != "new" {
			t.Errorf("expected alice in room new, got %q", room)
		}
		if _, ok := h.directory.MembersOf("old")["a"]; ok {
			t.Error("alice still member of old room")
		}
	}); err != nil {
		t.Fatal(err)
	}
}

func TestHubReactionGoesToCurrentRoom(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	bob := NewClient("b", "")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	bob.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Bob"}

	alice.Commands <- &Command{Kind: CommandReaction, Nickname: "Alice", Emoji: "🔥"}

	ev := mustEvent(t, bob.Events, EventReaction)
	if ev.Reaction.Nickname != "Alice" || ev.Reaction.Emoji != "🔥" {
		t.Fatalf("unexpected reaction event: %+v", ev)
	}
}

func TestHubRandomTeamsBroadcast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	bob := NewClient("b", "")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	bob.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Bob"}

	alice.Commands <- &Command{
		Kind:    CommandRandomTeams,
		Members: []string{"a", "b", "c", "d", "e", "f", "g"},
		Size:    2,
	}

	ev := mustEvent(t, bob.Events, EventTeamsResult)
	total := 0
	small := 0
	for _, team := range ev.Teams {
		total += len(team)
		if len(team) < 2 {
			small++
		}
	}
	if total != 7 || small > 1 {
		t.Fatalf("unexpected partition: %v", ev.Teams)
	}
}

func TestHubRandomTeamsBlankMembersRejected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	hub.RegisterClient(alice)

	alice.Commands <- &Command{Kind: CommandRandomTeams, Members: []string{"", "  "}, Size: 2}

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeBadRequest {
		t.Fatalf("expected bad_request error, got %+v", ev)
	}
}

func TestHubSlowConsumerIsDroppedNotBlocking(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	bob := NewClient("b", "")
	carol := NewClient("c", "")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	hub.RegisterClient(carol)

	// Joins are confirmed one at a time so all three are in the room before
	// the message burst starts.
	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	mustEvent(t, alice.Events, EventStatus)
	bob.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Bob"}
	mustEvent(t, bob.Events, EventStatus)
	carol.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Carol"}
	mustEvent(t, carol.Events, EventStatus)

	// Bob stops reading here. Once his buffer fills, his deliveries are
	// dropped while the room keeps flowing for everyone else.
	sent := cap(bob.Events) + 4
	for i := 0; i < sent; i++ {
		alice.Commands <- &Command{
			Kind:     CommandSendMessage,
			Room:     "main",
			Nickname: "Alice",
			Text:     fmt.Sprintf("m%d", i),
		}
		ev := mustEvent(t, carol.Events, EventNewMessage)
		if ev.Message.Text != fmt.Sprintf("m%d", i) {
			t.Fatalf("message %d lost or reordered for draining member: %+v", i, ev)
		}
	}

	if len(bob.Events) != cap(bob.Events) {
		t.Fatalf("expected the stalled buffer to be full, got %d/%d", len(bob.Events), cap(bob.Events))
	}

	// The dispatch loop stayed responsive.
	if err := hub.do(ctx, func(h *Hub) {
		if h.registry.Len() != 3 {
			t.Errorf("registry lost connections: %d", h.registry.Len())
		}
	}); err != nil {
		t.Fatal(err)
	}
}

func TestHubDisconnectLeavesNoDanglingMembership(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	hub.RegisterClient(alice)

	// Disconnect races with the connection's own join.
	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	hub.UnregisterClient(alice)

	if err := hub.do(ctx, func(h *Hub) {
		if h.registry.Get("a") != nil {
			t.Error("connection still registered after disconnect")
		}
		if room := h.directory.RoomOf("a"); room != "" {
			t.Errorf("dangling membership in %q", room)
		}
		if _, ok := h.directory.MembersOf("main")["a"]; ok {
			t.Error("dangling member entry in room main")
		}
	}); err != nil {
		t.Fatal(err)
	}
}

func TestHubMarkAttendanceOncePerDay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	first, err := hub.MarkAttendance(ctx, "Alice", "Lab Period")
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != Marked || first.Record.Points != AttendancePoints {
		t.Fatalf("unexpected first mark: %+v", first)
	}

	second, err := hub.MarkAttendance(ctx, "Alice", "Lab Period")
	if err != nil {
		t.Fatal(err)
	}
	if second.Status != Duplicate {
		t.Fatalf("expected duplicate, got %+v", second)
	}
	if !second.Record.MarkedAt.Equal(first.Record.MarkedAt) {
		t.Fatal("duplicate should carry the original record")
	}

	if err := hub.do(ctx, func(h *Hub) {
		if h.ledger.Len() != 1 {
			t.Errorf("ledger grew on duplicate mark: %d records", h.ledger.Len())
		}
	}); err != nil {
		t.Fatal(err)
	}
}

func TestHubMarkAttendanceAnnouncesToRoom(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil, nil, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "")
	bob := NewClient("b", "")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	alice.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Alice"}
	bob.Commands <- &Command{Kind: CommandJoin, Room: "main", Nickname: "Bob"}

	if _, err := hub.MarkAttendance(ctx, "Alice", "Lab Period"); err != nil {
		t.Fatal(err)
	}

	// Marker gets the direct confirmation, the room gets the announcement.
	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventAttendanceMarked)
		if ev.Attendance == nil || ev.Attendance.Nickname != "Alice" {
			t.Fatalf("unexpected attendance event: %+v", ev)
		}
	}

	// Duplicate marks are confirmed to the marker only.
	if _, err := hub.MarkAttendance(ctx, "Alice", "Lab Period"); err != nil {
		t.Fatal(err)
	}
	mustEvent(t, alice.Events, EventAttendanceMarked)
	mustNoEvent(t, bob.Events, EventAttendanceMarked)
}
