/*
Package hub contains the core logic of the presence and message-relay hub.

This file defines Room Membership: the many-to-many relation between
connections and named routing groups. Both directions are indexed
(room -> connections for delivery, connection -> rooms for disconnect
cleanup) and mutated under one lock.
*/
package hub

import (
	"sort"
	"sync"
)

// Membership tracks which connections are subscribed to which rooms,
// independently of the presence registry.
type Membership struct {
	mu     sync.RWMutex
	byRoom map[string]map[string]struct{}
	byConn map[string]map[string]struct{}
}

// NewMembership creates an empty membership table.
func NewMembership() *Membership {
	return &Membership{
		byRoom: make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join subscribes connID to room. Idempotent.
func (m *Membership) Join(connID, room string) {
	if connID == "" || room == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.byRoom[room] == nil {
		m.byRoom[room] = make(map[string]struct{})
	}
	m.byRoom[room][connID] = struct{}{}

	if m.byConn[connID] == nil {
		m.byConn[connID] = make(map[string]struct{})
	}
	m.byConn[connID][room] = struct{}{}
}

// Leave removes connID from room. Idempotent; unknown pairs are a no-op.
func (m *Membership) Leave(connID, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if members, ok := m.byRoom[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(m.byRoom, room)
		}
	}

	if rooms, ok := m.byConn[connID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(m.byConn, connID)
		}
	}
}

// Members returns the connection IDs currently subscribed to room.
// An unknown room yields an empty slice.
func (m *Membership) Members(room string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.byRoom[room]
	if len(members) == 0 {
		return nil
	}

	result := make([]string, 0, len(members))
	for connID := range members {
		result = append(result, connID)
	}
	return result
}

// Rooms returns the sorted room names connID is subscribed to.
func (m *Membership) Rooms(connID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := m.byConn[connID]
	if len(rooms) == 0 {
		return nil
	}

	result := make([]string, 0, len(rooms))
	for room := range rooms {
		result = append(result, room)
	}
	sort.Strings(result)

	return result
}

// Purge removes every membership held by a departing connection and returns
// the affected room names. O(rooms of the connection) via the reverse index.
func (m *Membership) Purge(connID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms, ok := m.byConn[connID]
	if !ok {
		return nil
	}

	affected := make([]string, 0, len(rooms))
	for room := range rooms {
		affected = append(affected, room)

		if members, ok := m.byRoom[room]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(m.byRoom, room)
			}
		}
	}
	delete(m.byConn, connID)

	return affected
}
