/*
Package hub contains the core logic of the presence and message-relay hub.

This file defines the Conn interface, the hub's narrow view of a live
transport session, and the concurrency-safe table of attached connections.
The routing core never owns the underlying transport; it only holds these
handles and must tolerate them dying at any moment.
*/
package hub

import "sync"

// Conn is one live bidirectional session as seen by the routing core.
type Conn interface {
	// ID returns the unique connection identifier.
	ID() string

	// RemoteAddr returns the peer address, for diagnostics only.
	RemoteAddr() string

	// SendFrame enqueues an already-encoded wire frame for delivery.
	// It must never block; a full outbound queue drops the frame.
	SendFrame(frame []byte) error

	// Kick requests closure of the connection, best-effort. The transport
	// decides how (and whether) the peer learns the reason.
	Kick(reason string)
}

// connTable tracks every currently attached connection, keyed by connection ID.
type connTable struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func newConnTable() *connTable {
	return &connTable{conns: make(map[string]Conn)}
}

func (t *connTable) add(c Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[c.ID()] = c
}

func (t *connTable) remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, connID)
}

func (t *connTable) get(connID string) (Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.conns[connID]
	return c, ok
}

// all returns a snapshot of the live connections; safe to iterate without the lock.
func (t *connTable) all() []Conn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	conns := make([]Conn, 0, len(t.conns))
	for _, c := range t.conns {
		conns = append(conns, c)
	}
	return conns
}

func (t *connTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}
