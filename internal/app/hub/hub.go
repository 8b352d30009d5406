/*
Package hub contains the core logic of the presence and message-relay hub.

This file defines the Hub, the lifecycle coordinator. It owns the connection
table, the presence registry, and the room membership, and it drives the
per-connection state machine: a connection attaches anonymous, may bind an
identity via user:join, exchanges events while attached, and is cleaned up
exactly once on detach. Presence broadcasts (online/offline) are derived
from registry mutations here, never issued anywhere else.
*/
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"presencehub/internal/pkg/logx"
)

// Options configures a Hub.
type Options struct {
	// PingInterval is how often the transport pings each connection.
	PingInterval time.Duration

	// PingTimeout is how long the transport waits for a pong before
	// declaring the connection dead.
	PingTimeout time.Duration
}

// Hub coordinates connection lifecycles and event routing. All state is
// in-memory and process-lifetime-scoped; nothing survives a restart.
type Hub struct {
	conns    *connTable
	presence *Registry
	rooms    *Membership
	router   *Router

	pingInterval time.Duration
	pingTimeout  time.Duration

	logger zerolog.Logger
}

// Session is the hub-side state of one attached connection. The bound user
// ID is written only by the connection's own dispatch goroutine; events from
// a single connection are processed in order.
type Session struct {
	conn      Conn
	userID    string
	closeOnce sync.Once
}

// UserID returns the identity bound to the session, or "" while anonymous.
func (s *Session) UserID() string {
	return s.userID
}

// New creates a Hub with empty presence and membership state.
func New(opts Options) *Hub {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 25 * time.Second
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 60 * time.Second
	}

	hubLogger := logx.Logger().With().Str("component", "hub").Logger()

	conns := newConnTable()
	rooms := NewMembership()

	return &Hub{
		conns:        conns,
		presence:     NewRegistry(),
		rooms:        rooms,
		router:       newRouter(conns, rooms, hubLogger),
		pingInterval: opts.PingInterval,
		pingTimeout:  opts.PingTimeout,
		logger:       hubLogger,
	}
}

// Attach registers a new live connection and returns its session, in the
// anonymous state.
func (h *Hub) Attach(conn Conn) *Session {
	h.conns.add(conn)

	h.logger.Info().
		Str("conn_id", conn.ID()).
		Str("remote_addr", conn.RemoteAddr()).
		Int("total_conns", h.conns.len()).
		Msg("Connection attached")

	return &Session{conn: conn}
}

// Detach tears down a departing connection: the presence entry is removed,
// an offline status is broadcast if an identity was freed, and all room
// memberships are purged. Safe to call more than once; only the first call
// has any effect.
func (h *Hub) Detach(s *Session, reason string) {
	s.closeOnce.Do(func() {
		connID := s.conn.ID()
		h.conns.remove(connID)

		if userID, ok := h.presence.Leave(connID); ok {
			h.router.Deliver(Broadcast(), EventStatusUpdate, StatusUpdatePayload{
				UserID:            userID,
				Status:            StatusOffline,
				LastSeenTimestamp: nowMillis(),
			})
		}

		h.rooms.Purge(connID)

		h.logger.Info().
			Str("conn_id", connID).
			Str("reason", reason).
			Int("total_conns", h.conns.len()).
			Msg("Connection detached")
	})
}

// Dispatch handles one inbound event from the session's connection.
// Malformed or out-of-state events are dropped with a warning; they never
// fail the connection.
func (h *Hub) Dispatch(s *Session, event string, data json.RawMessage) {
	switch event {
	case EventUserJoin:
		h.handleUserJoin(s, data)

	case EventChannelJoin, EventChannelLeave:
		h.handleChannel(s, event, data)

	case EventMessageSend:
		if h.requireIdentity(s, event) {
			h.handleMessageSend(s, data)
		}

	case EventTypingStart, EventTypingStop:
		if h.requireIdentity(s, event) {
			h.handleTyping(s, event, data)
		}

	case EventStatusChange:
		if h.requireIdentity(s, event) {
			h.handleStatusChange(s, data)
		}

	case EventMarkRead:
		if h.requireIdentity(s, event) {
			h.handleMarkRead(s, data)
		}

	case EventEmitToRoom:
		if h.requireIdentity(s, event) {
			h.handleEmitToRoom(s, data)
		}

	case EventEmitBroadcast:
		if h.requireIdentity(s, event) {
			h.handleEmitBroadcast(s, data)
		}

	default:
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Str("event", event).
			Msg("Unsupported inbound event")
	}
}

// requireIdentity drops events that are only meaningful after user:join.
func (h *Hub) requireIdentity(s *Session, event string) bool {
	if s.userID == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Str("event", event).
			Msg("Dropping event from anonymous connection")
		return false
	}
	return true
}

// handleUserJoin binds an identity to the connection. A prior connection
// holding the same identity is notified and kicked; the private per-user
// room subscription makes user targets resolvable through room membership.
func (h *Hub) handleUserJoin(s *Session, data json.RawMessage) {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil || userID == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Msg("Dropping user:join with missing or invalid user id")
		return
	}

	connID := s.conn.ID()

	// Re-join under a new identity frees the old one first.
	if s.userID != "" && s.userID != userID {
		if freed, ok := h.presence.Leave(connID); ok {
			h.rooms.Leave(connID, UserRoom(freed))
			h.router.Deliver(Broadcast(), EventStatusUpdate, StatusUpdatePayload{
				UserID:            freed,
				Status:            StatusOffline,
				LastSeenTimestamp: nowMillis(),
			})
		}
	}

	entry, superseded := h.presence.Join(userID, connID)

	if superseded != "" {
		// The identity moved: the old connection must stop resolving as this
		// user right away, not when its transport finally dies.
		h.rooms.Leave(superseded, UserRoom(userID))

		if prior, ok := h.conns.get(superseded); ok {
			h.logger.Info().
				Str("user_id", userID).
				Str("old_conn_id", superseded).
				Str("new_conn_id", connID).
				Msg("Superseding prior connection for user")

			frame, err := EncodeEvent(EventForceDisconnect, ForceDisconnectPayload{
				Reason: "Session replaced by a new connection.",
			})
			if err == nil {
				prior.SendFrame(frame)
			}
			prior.Kick("session superseded")
		}
	}

	s.userID = userID
	h.rooms.Join(connID, UserRoom(userID))

	h.logger.Info().
		Str("user_id", userID).
		Str("conn_id", connID).
		Int("online_users", h.presence.Len()).
		Msg("User joined")

	h.router.Deliver(Broadcast(), EventStatusUpdate, StatusUpdatePayload{
		UserID:            userID,
		Status:            StatusOnline,
		LastSeenTimestamp: entry.JoinedAt.UnixMilli(),
	})
}

// handleChannel mutates secondary-channel membership only; valid while anonymous.
func (h *Hub) handleChannel(s *Session, event string, data json.RawMessage) {
	var channel string
	if err := json.Unmarshal(data, &channel); err != nil || channel == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Str("event", event).
			Msg("Dropping channel event with missing or invalid channel name")
		return
	}

	if event == EventChannelJoin {
		h.rooms.Join(s.conn.ID(), channel)
	} else {
		h.rooms.Leave(s.conn.ID(), channel)
	}
}

// handleMessageSend echoes the payload back to the sender as delivery
// confirmation and relays it to the destination user. An absent destination
// is a silent no-op.
func (h *Hub) handleMessageSend(s *Session, data json.RawMessage) {
	var msg messagePayload
	if err := json.Unmarshal(data, &msg); err != nil || msg.DestinatarioID == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Msg("Dropping message:send with missing destinatarioId")
		return
	}

	if frame, err := EncodeEvent(EventMessageReceived, data); err == nil {
		s.conn.SendFrame(frame)
	}

	h.router.Deliver(ToUser(msg.DestinatarioID), EventMessageReceived, data)
}

// handleTyping relays a typing indicator to the destination user. Purely
// advisory; no state is retained.
func (h *Hub) handleTyping(s *Session, event string, data json.RawMessage) {
	var typing typingPayload
	if err := json.Unmarshal(data, &typing); err != nil || typing.DestinatarioID == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Str("event", event).
			Msg("Dropping typing event with missing destinatarioId")
		return
	}

	userID := typing.UserID
	if userID == "" {
		userID = s.userID
	}

	h.router.Deliver(ToUser(typing.DestinatarioID), EventTypingUpdate, TypingUpdatePayload{
		UserID:   userID,
		IsTyping: event == EventTypingStart,
	})
}

// handleStatusChange re-broadcasts a caller-supplied status string globally.
// The status value is passed through as-is.
func (h *Hub) handleStatusChange(s *Session, data json.RawMessage) {
	var change statusChangePayload
	if err := json.Unmarshal(data, &change); err != nil || change.UserID == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Msg("Dropping status:change with missing userId")
		return
	}

	h.router.Deliver(Broadcast(), EventStatusUpdate, StatusUpdatePayload{
		UserID:            change.UserID,
		Status:            change.Status,
		LastSeenTimestamp: nowMillis(),
	})
}

// handleMarkRead routes a read receipt back to the original sender.
func (h *Hub) handleMarkRead(s *Session, data json.RawMessage) {
	var receipt markReadPayload
	if err := json.Unmarshal(data, &receipt); err != nil || receipt.RemetenteID == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Msg("Dropping messages:mark-read with missing remetenteId")
		return
	}

	reader := receipt.DestinatarioID
	if reader == "" {
		reader = s.userID
	}

	h.router.Deliver(ToUser(receipt.RemetenteID), EventMessagesRead, ReadReceiptPayload{
		UserID: reader,
	})
}

// handleEmitToRoom relays an arbitrary named event to a room; room and event
// name are both required.
func (h *Hub) handleEmitToRoom(s *Session, data json.RawMessage) {
	var emit emitPayload
	if err := json.Unmarshal(data, &emit); err != nil || emit.Room == "" || emit.Event == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Msg("Dropping emit:to-room with missing room or event")
		return
	}

	h.router.Deliver(ToRoom(emit.Room), emit.Event, emit.Payload)
}

// handleEmitBroadcast relays an arbitrary named event to every connection.
func (h *Hub) handleEmitBroadcast(s *Session, data json.RawMessage) {
	var emit emitPayload
	if err := json.Unmarshal(data, &emit); err != nil || emit.Event == "" {
		h.logger.Warn().
			Str("conn_id", s.conn.ID()).
			Msg("Dropping emit:broadcast with missing event")
		return
	}

	h.router.Deliver(Broadcast(), emit.Event, emit.Payload)
}

// Deliver exposes the routing engine to external collaborators (the control
// endpoint): resolve the target against current state and fan out.
func (h *Hub) Deliver(target Target, event string, data any) {
	h.router.Deliver(target, event, data)
}

// ConnectionCount returns the number of currently attached connections.
func (h *Hub) ConnectionCount() int {
	return h.conns.len()
}

// OnlineUsers returns a sorted snapshot of the currently online user IDs.
func (h *Hub) OnlineUsers() []string {
	return h.presence.Snapshot()
}

// Shutdown kicks every live connection. State is not drained further;
// presence and membership are volatile and die with the process.
func (h *Hub) Shutdown() {
	conns := h.conns.all()

	h.logger.Info().Int("total_conns", len(conns)).Msg("Hub shutting down, closing connections")

	for _, c := range conns {
		c.Kick("server shutting down")
	}
}
