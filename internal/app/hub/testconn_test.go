package hub_test

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"presencehub/internal/app/hub"
)

// fakeConn is an in-process Conn implementation that records every frame and
// kick it receives, standing in for a live WebSocket session.
type fakeConn struct {
	id string

	mu     sync.Mutex
	frames [][]byte
	kicks  []string
}

var _ hub.Conn = (*fakeConn)(nil)

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (f *fakeConn) ID() string {
	return f.id
}

func (f *fakeConn) RemoteAddr() string {
	return "test:" + f.id
}

func (f *fakeConn) SendFrame(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	buf := make([]byte, len(frame))
	copy(buf, frame)
	f.frames = append(f.frames, buf)
	return nil
}

func (f *fakeConn) Kick(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicks = append(f.kicks, reason)
}

func (f *fakeConn) kickCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.kicks)
}

// received decodes every recorded frame into (event, data) pairs.
func (f *fakeConn) received(t *testing.T) []receivedEvent {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	events := make([]receivedEvent, 0, len(f.frames))
	for _, frame := range f.frames {
		var env struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("conn %s recorded invalid frame %q: %v", f.id, frame, err)
		}
		events = append(events, receivedEvent{Event: env.Event, Data: env.Data})
	}
	return events
}

type receivedEvent struct {
	Event string
	Data  json.RawMessage
}

// countEvent returns how many frames carried the given event name.
func (f *fakeConn) countEvent(t *testing.T, event string) int {
	t.Helper()

	count := 0
	for _, ev := range f.received(t) {
		if ev.Event == event {
			count++
		}
	}
	return count
}

// lastEvent returns the most recent frame with the given event name.
func (f *fakeConn) lastEvent(t *testing.T, event string) (receivedEvent, bool) {
	t.Helper()

	events := f.received(t)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Event == event {
			return events[i], true
		}
	}
	return receivedEvent{}, false
}

// newTestHub builds a hub with default options for tests.
func newTestHub() *hub.Hub {
	return hub.New(hub.Options{})
}

// attach wires a fresh fake connection into the hub.
func attach(h *hub.Hub, id string) (*fakeConn, *hub.Session) {
	c := newFakeConn(id)
	return c, h.Attach(c)
}

// dispatch sends one inbound event, with data given as a JSON literal.
func dispatch(h *hub.Hub, s *hub.Session, event, dataJSON string) {
	h.Dispatch(s, event, json.RawMessage(dataJSON))
}

// joinUser performs a user:join for the given identity.
func joinUser(h *hub.Hub, s *hub.Session, userID string) {
	h.Dispatch(s, hub.EventUserJoin, json.RawMessage(fmt.Sprintf("%q", userID)))
}
