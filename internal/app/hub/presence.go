/*
Package hub contains the core logic of the presence and message-relay hub.

This file defines the Presence Registry: the authoritative mapping from a
logical user identity to its single live connection. A forward map
(user -> entry) and a reverse index (connection -> user) are mutated
together under one lock, so the one-connection-per-user invariant never
breaks, even transiently, and disconnect lookups stay O(1).
*/
package hub

import (
	"sort"
	"sync"
	"time"
)

// Entry represents one user's current live session.
type Entry struct {
	UserID   string
	ConnID   string
	JoinedAt time.Time
}

// Registry is the presence registry. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Entry
	byConn map[string]string
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Entry),
		byConn: make(map[string]string),
	}
}

// Join binds userID to connID and returns the installed entry together with
// the connection ID of a superseded prior session ("" if none).
//
// If the user is already bound to a different connection, that binding is
// removed and its connection ID returned so the caller can notify and close
// it. If the same connection re-joins, the entry is refreshed in place and
// no supersede is reported. A connection previously bound to a different
// user is unbound from that identity first, keeping both uniqueness
// invariants intact.
func (r *Registry) Join(userID, connID string) (Entry, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	superseded := ""

	if existing, ok := r.byUser[userID]; ok {
		if existing.ConnID == connID {
			// Idempotent re-join: refresh the timestamp only.
			existing.JoinedAt = time.Now()
			r.byUser[userID] = existing
			return existing, ""
		}

		superseded = existing.ConnID
		delete(r.byConn, existing.ConnID)
	}

	// The connection may carry a stale identity from an earlier user:join.
	if prevUser, ok := r.byConn[connID]; ok && prevUser != userID {
		delete(r.byUser, prevUser)
	}

	entry := Entry{
		UserID:   userID,
		ConnID:   connID,
		JoinedAt: time.Now(),
	}
	r.byUser[userID] = entry
	r.byConn[connID] = userID

	return entry, superseded
}

// Leave removes the entry bound to connID, returning the freed user ID.
// ok is false when the connection had no bound identity.
func (r *Registry) Leave(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return "", false
	}

	delete(r.byConn, connID)
	delete(r.byUser, userID)

	return userID, true
}

// Lookup returns the connection currently bound to userID.
func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byUser[userID]
	if !ok {
		return "", false
	}
	return entry.ConnID, true
}

// Snapshot returns a sorted point-in-time list of online user IDs.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		users = append(users, userID)
	}
	sort.Strings(users)

	return users
}

// Len returns the number of online users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
