/*
Package hub contains the core logic of the presence and message-relay hub.

This file defines the Event Router: it resolves a routing target (a user, a
room, or every connection) to the concrete set of live connections at
delivery time and fans an event out to each, fire-and-forget.
*/
package hub

import (
	"github.com/rs/zerolog"
)

// targetKind discriminates the routing target variants.
type targetKind int

const (
	targetUser targetKind = iota
	targetRoom
	targetAll
)

// Target is a tagged routing destination: a user, a room, or all connections.
type Target struct {
	kind targetKind
	id   string
}

// ToUser targets the single connection currently bound to the given user, if any.
func ToUser(userID string) Target {
	return Target{kind: targetUser, id: userID}
}

// ToRoom targets every connection subscribed to the named room.
func ToRoom(room string) Target {
	return Target{kind: targetRoom, id: room}
}

// Broadcast targets every live connection.
func Broadcast() Target {
	return Target{kind: targetAll}
}

// UserRoom is the private per-user room every identified connection is
// subscribed to; user targets resolve through it, so direct and room
// delivery share one mechanism.
func UserRoom(userID string) string {
	return "user:" + userID
}

// Router resolves targets against the current membership and connection
// table and delivers events. Resolution is never cached; membership is
// volatile and is consulted on every call.
type Router struct {
	conns  *connTable
	rooms  *Membership
	logger zerolog.Logger
}

func newRouter(conns *connTable, rooms *Membership, logger zerolog.Logger) *Router {
	return &Router{
		conns:  conns,
		rooms:  rooms,
		logger: logger.With().Str("component", "router").Logger(),
	}
}

// Deliver resolves target and pushes (event, data) to each resolved
// connection. Delivery is best-effort and at-most-once per connection:
// the frame is encoded once and enqueued without blocking, and a target
// that resolves to nothing is not an error.
func (rt *Router) Deliver(target Target, event string, data any) {
	frame, err := EncodeEvent(event, data)
	if err != nil {
		rt.logger.Error().Err(err).Str("event", event).Msg("Failed to encode outbound event")
		return
	}

	switch target.kind {
	case targetUser:
		rt.deliverToConns(rt.rooms.Members(UserRoom(target.id)), event, frame)

	case targetRoom:
		rt.deliverToConns(rt.rooms.Members(target.id), event, frame)

	case targetAll:
		for _, c := range rt.conns.all() {
			rt.push(c, event, frame)
		}
	}
}

// deliverToConns pushes a frame to each connection ID that still resolves to
// a live connection. IDs lingering in membership after a disconnect race
// are skipped silently.
func (rt *Router) deliverToConns(connIDs []string, event string, frame []byte) {
	for _, connID := range connIDs {
		if c, ok := rt.conns.get(connID); ok {
			rt.push(c, event, frame)
		}
	}
}

func (rt *Router) push(c Conn, event string, frame []byte) {
	if err := c.SendFrame(frame); err != nil {
		rt.logger.Warn().
			Str("conn_id", c.ID()).
			Str("event", event).
			Err(err).
			Msg("Dropped outbound event")
	}
}
