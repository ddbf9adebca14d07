package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/classhub-server/internal/store"
)

// Message style tags. Unknown tags are coerced to normal; the tag is opaque
// to the coordinator and carried verbatim to every room member.
const (
	StyleNormal    = "normal"
	StyleInvisible = "invisible"
)

// envelope is one unit of work for the hub loop: either a client command or
// an internal operation.
type envelope struct {
	client *Client
	cmd    *Command
	fn     func(*Hub)
}

// Hub is the room coordinator. All shared state (registry, directory,
// ledger) is confined to the single Run goroutine; every mutation arrives
// through the inbox, so one event is fully handled before the next begins.
type Hub struct {
	registry  *Registry
	directory *Directory
	ledger    *Ledger
	shuffler  *Shuffler
	bus       *Bus
	store     store.Store
	log       zerolog.Logger
	inbox     chan envelope
}

// NewHub constructs the coordinator. The store may be nil (points and audit
// rows are then skipped); a nil shuffler gets an entropy-seeded one and a
// nil logger disables logging.
func NewHub(st store.Store, shuffler *Shuffler, logger *zerolog.Logger) *Hub {
	if shuffler == nil {
		shuffler = NewShuffler(nil)
	}
	lg := zerolog.Nop()
	if logger != nil {
		lg = *logger
	}
	registry := NewRegistry()
	directory := NewDirectory()
	return &Hub{
		registry:  registry,
		directory: directory,
		ledger:    NewLedger(),
		shuffler:  shuffler,
		bus:       NewBus(registry, directory, lg),
		store:     st,
		log:       lg,
		inbox:     make(chan envelope, 256),
	}
}

// Run processes the inbox until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-h.inbox:
			if env.fn != nil {
				env.fn(h)
				continue
			}
			h.dispatch(env.client, env.cmd)
		}
	}
}

// RegisterClient adds the connection and starts forwarding its commands
// into the hub inbox.
func (h *Hub) RegisterClient(c *Client) {
	h.inbox <- envelope{fn: func(h *Hub) { h.registry.Register(c) }}
	go h.pump(c)
}

// UnregisterClient removes the connection, cascading to its room membership.
// Safe to call for an already-removed client.
func (h *Hub) UnregisterClient(c *Client) {
	h.inbox <- envelope{fn: func(h *Hub) { h.unregister(c.ID) }}
}

func (h *Hub) pump(c *Client) {
	for {
		select {
		case <-c.done:
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbox <- envelope{client: c, cmd: cmd}:
			case <-c.done:
				return
			}
		}
	}
}

// do runs fn on the hub loop and waits for it to complete.
func (h *Hub) do(ctx context.Context, fn func(*Hub)) error {
	done := make(chan struct{})
	env := envelope{fn: func(h *Hub) {
		fn(h)
		close(done)
	}}
	select {
	case h.inbox <- env:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MarkAttendance records a mark for nickname, awards points on first mark of
// the day, confirms directly to the marker's connections and announces to
// the marker's room. Backs the non-real-time attendance collaborator.
// The ledger mark and fan-out run on the dispatch loop; the store writes
// happen here afterwards so database contention never stalls dispatch.
func (h *Hub) MarkAttendance(ctx context.Context, nickname, session string) (MarkResult, error) {
	if nickname == "" {
		return MarkResult{}, coreError(ErrCodeBadRequest, "nickname is required")
	}
	var res MarkResult
	err := h.do(ctx, func(h *Hub) {
		res = h.markAttendance(nickname, session)
	})
	if err != nil {
		return res, err
	}
	if res.Status == Marked {
		h.creditAttendance(ctx, nickname, session, res.Record)
	}
	return res, nil
}

// AnnounceUpload fans a recorded upload out to every connection.
func (h *Hub) AnnounceUpload(ctx context.Context, notice UploadNotice) error {
	return h.do(ctx, func(h *Hub) {
		h.bus.ToAll(&Event{Kind: EventNewUpload, Upload: &notice})
	})
}

// AnnouncePollCreated fans a new poll out to every connection.
func (h *Hub) AnnouncePollCreated(ctx context.Context, poll PollNotice) error {
	return h.do(ctx, func(h *Hub) {
		h.bus.ToAll(&Event{Kind: EventPollCreated, Poll: &poll})
	})
}

// AnnouncePollUpdated fans an updated vote tally out to every connection.
func (h *Hub) AnnouncePollUpdated(ctx context.Context, poll PollNotice) error {
	return h.do(ctx, func(h *Hub) {
		h.bus.ToAll(&Event{Kind: EventPollUpdated, Poll: &poll})
	})
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	if c == nil || cmd == nil {
		return
	}
	if h.registry.Get(c.ID) == nil {
		// Command raced with the connection's own unregister.
		return
	}

	switch cmd.Kind {
	case CommandJoin:
		h.handleJoin(c, cmd)
	case CommandLeave:
		h.handleLeave(c, cmd)
	case CommandSendMessage:
		h.handleSendMessage(c, cmd)
	case CommandReaction:
		h.handleReaction(c, cmd)
	case CommandRandomTeams:
		h.handleRandomTeams(c, cmd)
	default:
		h.log.Debug().Int("kind", int(cmd.Kind)).Msg("ignoring unknown command")
	}
}

func (h *Hub) handleJoin(c *Client, cmd *Command) {
	if cmd.Room == "" || cmd.Nickname == "" {
		h.reject(c, ErrCodeBadRequest, "room and nickname are required")
		return
	}

	h.registry.BindNickname(c.ID, cmd.Nickname)
	previous, count := h.directory.Join(c.ID, cmd.Room)

	if previous != "" && previous != cmd.Room {
		h.bus.ToRoom(previous, statusEvent(previous, fmt.Sprintf("%s left %s.", cmd.Nickname, previous)))
	}
	h.bus.ToRoom(cmd.Room, statusEvent(cmd.Room, fmt.Sprintf("%s joined %s.", cmd.Nickname, cmd.Room)))

	h.log.Debug().Str("conn_id", c.ID).Str("nickname", cmd.Nickname).
		Str("room", cmd.Room).Int("members", count).Msg("joined room")
}

func (h *Hub) handleLeave(c *Client, cmd *Command) {
	room := h.directory.Leave(c.ID)
	if room == "" {
		return
	}
	nickname := commandNickname(c, cmd)
	h.bus.ToRoom(room, statusEvent(room, fmt.Sprintf("%s left %s.", nickname, room)))
}

func (h *Hub) handleSendMessage(c *Client, cmd *Command) {
	if cmd.Room == "" {
		h.reject(c, ErrCodeBadRequest, "room is required")
		return
	}
	if h.directory.RoomOf(c.ID) != cmd.Room {
		h.reject(c, ErrCodeNotInRoom, "join the room before sending")
		return
	}

	msg := Message{
		Nickname:  commandNickname(c, cmd),
		Room:      cmd.Room,
		Text:      cmd.Text,
		Style:     normalizeStyle(cmd.Style),
		CreatedAt: time.Now(),
	}
	h.bus.ToRoom(cmd.Room, &Event{Kind: EventNewMessage, Room: cmd.Room, Message: msg})
}

func (h *Hub) handleReaction(c *Client, cmd *Command) {
	if cmd.Nickname == "" && c.Nickname == "" {
		h.reject(c, ErrCodeBadRequest, "nickname is required")
		return
	}
	room := h.directory.RoomOf(c.ID)
	if room == "" {
		h.reject(c, ErrCodeNotInRoom, "join a room before reacting")
		return
	}
	h.bus.ToRoom(room, &Event{
		Kind:     EventReaction,
		Room:     room,
		Reaction: Reaction{Nickname: commandNickname(c, cmd), Emoji: cmd.Emoji},
	})
}

func (h *Hub) handleRandomTeams(c *Client, cmd *Command) {
	if !anyNonBlank(cmd.Members) {
		h.reject(c, ErrCodeBadRequest, "members are required")
		return
	}
	size := cmd.Size
	if size < 1 {
		size = 2
	}

	teams := h.shuffler.Teams(cmd.Members, size)
	event := &Event{Kind: EventTeamsResult, Teams: teams}

	if room := h.directory.RoomOf(c.ID); room != "" {
		event.Room = room
		h.bus.ToRoom(room, event)
		return
	}
	h.bus.ToConnection(c.ID, event)
}

func (h *Hub) markAttendance(nickname, session string) MarkResult {
	now := time.Now()
	res := h.ledger.Mark(nickname, now)

	event := &Event{Kind: EventAttendanceMarked, Attendance: &res.Record, Session: session}

	conns := h.registry.ByNickname(nickname)
	for _, c := range conns {
		h.bus.ToConnection(c.ID, event)
	}
	if res.Status != Marked || len(conns) == 0 {
		// Duplicate marks are confirmed privately, never re-announced.
		return res
	}
	if room := h.directory.RoomOf(conns[0].ID); room != "" {
		announce := *event
		announce.Room = room
		h.bus.ToRoomExcept(room, conns[0].ID, &announce)
	}
	return res
}

// creditAttendance persists points and the audit row. Runs on the caller's
// goroutine, never on the dispatch loop. Store failures are logged and do
// not undo the ledger mark.
func (h *Hub) creditAttendance(ctx context.Context, nickname, session string, rec AttendanceRecord) {
	if h.store == nil {
		return
	}
	if err := h.store.EnsureUser(ctx, nickname, ""); err != nil {
		h.log.Warn().Err(err).Str("nickname", nickname).Msg("ensure user")
	}
	if err := h.store.AddPoints(ctx, nickname, rec.Points); err != nil {
		h.log.Warn().Err(err).Str("nickname", nickname).Msg("add attendance points")
	}
	row := store.AttendanceRow{Nickname: nickname, Session: session, MarkedAt: rec.MarkedAt}
	if err := h.store.RecordAttendance(ctx, row); err != nil {
		h.log.Warn().Err(err).Str("nickname", nickname).Msg("record attendance row")
	}
}

func (h *Hub) unregister(connID string) {
	c := h.registry.Unregister(connID)
	if c == nil {
		return
	}
	close(c.done)

	room := h.directory.Leave(connID)
	if room == "" {
		return
	}
	nickname := c.Nickname
	if nickname == "" {
		nickname = "anon"
	}
	// Best-effort departure notice; a no-op if the room emptied out.
	h.bus.ToRoom(room, statusEvent(room, fmt.Sprintf("%s left %s.", nickname, room)))
	h.log.Debug().Str("conn_id", connID).Str("room", room).Msg("connection left on disconnect")
}

func (h *Hub) reject(c *Client, code, msg string) {
	h.bus.ToConnection(c.ID, &Event{Kind: EventError, Error: coreError(code, msg)})
}

func statusEvent(room, msg string) *Event {
	return &Event{Kind: EventStatus, Room: room, Status: msg}
}

func commandNickname(c *Client, cmd *Command) string {
	if cmd.Nickname != "" {
		return cmd.Nickname
	}
	if c.Nickname != "" {
		return c.Nickname
	}
	return "anon"
}

func normalizeStyle(style string) string {
	if style == StyleInvisible {
		return StyleInvisible
	}
	return StyleNormal
}

func anyNonBlank(names []string) bool {
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			return true
		}
	}
	return false
}
