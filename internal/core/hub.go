package core

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// HistoryStore is the persistence boundary the hub depends on. Append
// failures never block delivery; Replay failures never roll back a
// join. Both are I/O-bound and are always called off the hub goroutine.
type HistoryStore interface {
	Append(ctx context.Context, msg Message) error
	Replay(ctx context.Context, room string, limit int) ([]Message, error)
}

type inbound struct {
	client *Client
	cmd    *Command
}

// Hub is the broadcast engine. It owns the session registry and room
// directory and serializes every mutation through a single event loop,
// which also yields per-sender FIFO delivery: each client's commands
// are pumped by one goroutine, processed in order, and fanned out in
// order into per-client buffered event channels.
type Hub struct {
	store       HistoryStore
	log         zerolog.Logger
	replayLimit int

	sessions  *SessionRegistry
	directory *RoomDirectory
	clients   map[string]*Client

	register   chan *Client
	unregister chan *Client
	commands   chan inbound
	snapshots  chan chan []RoomInfo
	appends    chan Message

	// closed when Run returns so late registrations cannot block
	stopped chan struct{}
}

// ErrStopped is returned by queries once the hub has shut down.
var ErrStopped = errors.New("hub stopped")

// NewHub constructs the engine. The store may be nil, in which case
// messages are delivered but never persisted (used by tests).
// replayLimit caps history replay on join; zero means unlimited.
func NewHub(store HistoryStore, logger *zerolog.Logger, replayLimit int) *Hub {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Hub{
		store:       store,
		log:         l,
		replayLimit: replayLimit,
		sessions:    NewSessionRegistry(),
		directory:   NewRoomDirectory(),
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		commands:    make(chan inbound),
		snapshots:   make(chan chan []RoomInfo),
		appends:     make(chan Message, 256),
		stopped:     make(chan struct{}),
	}
}

// RegisterClient hands a connection to the hub. The hub starts pumping
// the client's commands until UnregisterClient or shutdown.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
	}
}

// UnregisterClient removes a connection. Safe to call more than once;
// only the first call deregisters the session and notifies the room.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Rooms returns a snapshot of active rooms taken on the hub goroutine.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	reply := make(chan []RoomInfo, 1)
	select {
	case h.snapshots <- reply:
	case <-h.stopped:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case infos := <-reply:
		return infos, nil
	case <-h.stopped:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes events until the context is cancelled. It must be
// running before clients are registered.
func (h *Hub) Run(ctx context.Context) {
	if h.store != nil {
		go h.appendLoop(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.handleRegister(ctx, c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case in := <-h.commands:
			h.dispatch(ctx, in.client, in.cmd)
		case reply := <-h.snapshots:
			reply <- h.directory.Rooms()
		}
	}
}

func (h *Hub) dispatch(ctx context.Context, c *Client, cmd *Command) {
	// Commands racing a disconnect are no-ops, never errors: the pump
	// may still flush a join or message after the client is gone.
	if _, exists := h.clients[c.ID]; !exists {
		return
	}
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd.User, cmd.Room)
	case CommandSendMessage:
		h.handleMessage(c, cmd.Text)
	default:
		h.emitTo(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeBadRequest, "unknown command"),
		})
	}
}

func (h *Hub) handleRegister(ctx context.Context, c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Warn().Str("conn_id", c.ID).Msg("duplicate client registration ignored")
		return
	}
	h.clients[c.ID] = c
	h.log.Debug().Str("conn_id", c.ID).Int("clients", len(h.clients)).Msg("client registered")
	go h.pump(ctx, c)
}

func (h *Hub) handleUnregister(c *Client) {
	if _, exists := h.clients[c.ID]; !exists {
		return
	}
	delete(h.clients, c.ID)
	close(c.done)
	h.handleDisconnect(c.ID)
	h.log.Debug().Str("conn_id", c.ID).Int("clients", len(h.clients)).Msg("client unregistered")
}

// pump forwards one client's commands into the hub queue. One pump per
// client preserves the client's submission order.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			select {
			case h.commands <- inbound{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, username, room string) {
	if username == "" || room == "" {
		h.emitTo(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeBadRequest, "username and room are required"),
		})
		return
	}

	now := time.Now()

	// Re-join policy: deregister the old session first, notifying its
	// room, then register the new one.
	if old, err := h.sessions.Leave(c.ID); err == nil {
		h.directory.RemoveMember(old.Room, c.ID)
		h.notifyLeft(old, now)
		h.log.Debug().
			Str("conn_id", c.ID).
			Str("old_room", old.Room).
			Str("room", room).
			Msg("session replaced on re-join")
	}

	sess, err := h.sessions.Join(c.ID, username, room)
	if err != nil {
		h.emitTo(c, &Event{
			Kind:  EventError,
			Error: coreError(ErrCodeDuplicateConnection, "connection already joined"),
		})
		return
	}
	h.directory.AddMember(room, c.ID)

	// Welcome goes to the joiner only, before any history.
	h.emitTo(c, &Event{
		Kind:    EventMessage,
		Room:    room,
		Message: systemMessage(room, welcomeText, now),
	})

	joined := systemMessage(room, sess.Username+" has joined the chat", now)
	h.emitToRoom(room, &Event{
		Kind:    EventUserJoined,
		Room:    room,
		User:    sess.Username,
		Message: joined,
	}, c.ID)

	h.log.Info().
		Str("conn_id", c.ID).
		Str("user", sess.Username).
		Str("room", room).
		Msg("user joined room")

	h.replay(ctx, c, room)
}

// replay queries history off the hub goroutine and delivers it to the
// joining client only. A failed or slow query never stalls the hub.
func (h *Hub) replay(ctx context.Context, c *Client, room string) {
	if h.store == nil {
		return
	}
	limit := h.replayLimit
	go func() {
		msgs, err := h.store.Replay(ctx, room, limit)
		if err != nil {
			h.reportStoreError("history replay failed", room, err)
			return
		}
		if len(msgs) == 0 {
			return
		}
		ev := &Event{Kind: EventHistory, Room: room, Messages: msgs}
		select {
		case c.Events <- ev:
		case <-c.done:
		case <-ctx.Done():
		}
	}()
}

func (h *Hub) handleMessage(c *Client, text string) {
	sess, err := h.sessions.Lookup(c.ID)
	if err != nil {
		h.log.Warn().Err(ErrNotJoined).Str("conn_id", c.ID).Msg("message dropped")
		h.emitTo(c, &Event{
			Kind:  EventError,
			Error: coreErrorFrom(ErrCodeNotJoined, ErrNotJoined, "join a room before sending messages"),
		})
		return
	}

	msg := NewMessage(sess.Room, sess.Username, text, time.Now())
	h.persist(msg)
	h.emitToRoom(sess.Room, &Event{
		Kind:    EventMessage,
		Room:    sess.Room,
		Message: msg,
	}, "")
}

func (h *Hub) handleDisconnect(connID string) {
	sess, err := h.sessions.Leave(connID)
	if err != nil {
		// Already deregistered; repeated disconnects are a no-op.
		return
	}
	h.directory.RemoveMember(sess.Room, connID)
	h.notifyLeft(sess, time.Now())
	h.log.Info().
		Str("conn_id", connID).
		Str("user", sess.Username).
		Str("room", sess.Room).
		Msg("user left room")
}

func (h *Hub) notifyLeft(sess *Session, now time.Time) {
	left := systemMessage(sess.Room, sess.Username+" has left the chat", now)
	h.emitToRoom(sess.Room, &Event{
		Kind:    EventUserLeft,
		Room:    sess.Room,
		User:    sess.Username,
		Message: left,
	}, sess.ConnID)
}

// persist enqueues the message for the append worker. The queue never
// blocks the hub; on overflow the message is delivered but not stored.
func (h *Hub) persist(msg Message) {
	if h.store == nil {
		return
	}
	select {
	case h.appends <- msg:
	default:
		h.reportStoreError("history queue full, message not persisted", msg.Room, nil)
	}
}

// reportStoreError logs a persistence failure with the store_error
// code. Storage trouble is reported, never propagated into delivery.
func (h *Hub) reportStoreError(msg, room string, err error) {
	h.log.Error().Err(err).Str("code", ErrCodeStoreError).Str("room", room).Msg(msg)
}

func (h *Hub) appendLoop(ctx context.Context) {
	for {
		select {
		case msg := <-h.appends:
			if err := h.store.Append(ctx, msg); err != nil {
				h.reportStoreError("history append failed", msg.Room, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) emitTo(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer; one stalled connection must not
		// delay the rest of the room.
		h.log.Warn().Str("conn_id", c.ID).Msg("dropping event for slow consumer")
	}
}

func (h *Hub) emitToRoom(room string, ev *Event, exclude string) {
	for _, connID := range h.directory.Members(room) {
		if connID == exclude {
			continue
		}
		c, exists := h.clients[connID]
		if !exists {
			continue
		}
		h.emitTo(c, ev)
	}
}

func (h *Hub) shutdown() {
	close(h.stopped)
	for _, c := range h.clients {
		close(c.done)
	}
	h.clients = make(map[string]*Client)
}
