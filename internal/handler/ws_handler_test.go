package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"presencehub/internal/app/hub"
	"presencehub/internal/handler"
)

func wsURL(srv *httptest.Server) string {
	return strings.Replace(srv.URL, "http", "ws", 1) + "/ws"
}

func dialWS(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	frame, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		t.Fatalf("invalid frame %q: %v", frame, err)
	}
	return env.Event, env.Data
}

func TestWebSocketOriginRejected(t *testing.T) {
	deps := newTestDeps("production")
	srv := httptest.NewServer(handler.Router(deps))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	if err == nil {
		t.Fatal("dial with disallowed origin succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("handshake response = %v, want 403", resp)
	}
}

func TestWebSocketAllowedOriginAccepted(t *testing.T) {
	deps := newTestDeps("production")
	srv := httptest.NewServer(handler.Router(deps))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://localhost:3000"}}
	conn := dialWS(t, srv, header)

	sendEvent(t, conn, hub.EventUserJoin, "alice")

	event, data := readEvent(t, conn)
	if event != hub.EventStatusUpdate {
		t.Fatalf("first event = %q, want %s", event, hub.EventStatusUpdate)
	}

	var status hub.StatusUpdatePayload
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatal(err)
	}
	if status.UserID != "alice" || status.Status != hub.StatusOnline {
		t.Errorf("status:update = %+v, want alice online", status)
	}
}

func TestWebSocketJoinReflectsInStatusEndpoint(t *testing.T) {
	deps := newTestDeps("development")
	srv := httptest.NewServer(handler.Router(deps))
	defer srv.Close()

	conn := dialWS(t, srv, nil)
	sendEvent(t, conn, hub.EventUserJoin, "alice")

	// The online broadcast confirms the join was processed.
	if event, _ := readEvent(t, conn); event != hub.EventStatusUpdate {
		t.Fatalf("first event = %q", event)
	}

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Connections   int      `json:"connections"`
		OnlineUserIDs []string `json:"onlineUserIds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Connections != 1 {
		t.Errorf("connections = %d, want 1", body.Connections)
	}
	if len(body.OnlineUserIDs) != 1 || body.OnlineUserIDs[0] != "alice" {
		t.Errorf("onlineUserIds = %v, want [alice]", body.OnlineUserIDs)
	}
}

// TestWebSocketSupersede verifies the duplicate-tab flow over a real
// transport: the prior connection receives a force-disconnect notice
// followed by a close frame carrying the custom superseded code.
func TestWebSocketSupersede(t *testing.T) {
	deps := newTestDeps("development")
	srv := httptest.NewServer(handler.Router(deps))
	defer srv.Close()

	first := dialWS(t, srv, nil)
	sendEvent(t, first, hub.EventUserJoin, "alice")
	if event, _ := readEvent(t, first); event != hub.EventStatusUpdate {
		t.Fatalf("first event = %q", event)
	}

	second := dialWS(t, srv, nil)
	sendEvent(t, second, hub.EventUserJoin, "alice")
	if event, _ := readEvent(t, second); event != hub.EventStatusUpdate {
		t.Fatalf("second connection's first event = %q", event)
	}

	event, data := readEvent(t, first)
	if event != hub.EventForceDisconnect {
		t.Fatalf("superseded connection got %q, want %s", event, hub.EventForceDisconnect)
	}
	var notice hub.ForceDisconnectPayload
	if err := json.Unmarshal(data, &notice); err != nil {
		t.Fatal(err)
	}
	if notice.Reason == "" {
		t.Error("force-disconnect notice carries no reason")
	}

	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	if !websocket.IsCloseError(err, hub.WsCloseCodeSuperseded) {
		t.Errorf("read after force-disconnect = %v, want close code %d", err, hub.WsCloseCodeSuperseded)
	}
}

func TestWebSocketDirectMessage(t *testing.T) {
	deps := newTestDeps("development")
	srv := httptest.NewServer(handler.Router(deps))
	defer srv.Close()

	sender := dialWS(t, srv, nil)
	sendEvent(t, sender, hub.EventUserJoin, "a")
	if event, _ := readEvent(t, sender); event != hub.EventStatusUpdate {
		t.Fatalf("sender's first event = %q", event)
	}

	recipient := dialWS(t, srv, nil)
	sendEvent(t, recipient, hub.EventUserJoin, "b")

	// Drain presence broadcasts: the recipient sees b online; the sender
	// sees it too.
	if event, _ := readEvent(t, recipient); event != hub.EventStatusUpdate {
		t.Fatalf("recipient's first event = %q", event)
	}
	if event, _ := readEvent(t, sender); event != hub.EventStatusUpdate {
		t.Fatalf("sender's second event = %q", event)
	}

	sendEvent(t, sender, hub.EventMessageSend, map[string]string{
		"destinatarioId": "b",
		"text":           "hi",
	})

	for name, conn := range map[string]*websocket.Conn{"sender echo": sender, "recipient": recipient} {
		event, data := readEvent(t, conn)
		if event != hub.EventMessageReceived {
			t.Fatalf("%s got %q, want %s", name, event, hub.EventMessageReceived)
		}
		var msg map[string]string
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		if msg["text"] != "hi" || msg["destinatarioId"] != "b" {
			t.Errorf("%s payload = %v", name, msg)
		}
	}
}
