/*
Package hub contains the core logic of the presence and message-relay hub:
the connection registry, room membership, event routing, and the
per-connection lifecycle.

This file defines the wire event names and payload structures exchanged with
clients. Every frame is a JSON envelope of the form {"event": ..., "data": ...}.
*/
package hub

import (
	"encoding/json"
	"time"
)

// Inbound event names.
const (
	// EventUserJoin binds a user identity to the connection. Data is the
	// bare user id string.
	EventUserJoin = "user:join"

	// EventMessageSend relays a direct message to the user named by the
	// payload's destinatarioId field. The payload itself is forwarded as-is.
	EventMessageSend = "message:send"

	// EventTypingStart and EventTypingStop carry typing indicators toward
	// the destination user.
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"

	// EventStatusChange re-broadcasts a caller-supplied status string to
	// every connection. The status value is passed through unvalidated.
	EventStatusChange = "status:change"

	// EventMarkRead notifies the original sender that their messages were read.
	EventMarkRead = "messages:mark-read"

	// EventEmitToRoom and EventEmitBroadcast are generic relays: an
	// arbitrary named event delivered to a room or to every connection.
	EventEmitToRoom    = "emit:to-room"
	EventEmitBroadcast = "emit:broadcast"

	// EventChannelJoin and EventChannelLeave subscribe the connection to a
	// secondary broadcast channel. Data is the bare channel name string.
	// They carry no presence side effects and are allowed before user:join.
	EventChannelJoin  = "join"
	EventChannelLeave = "leave"
)

// Outbound event names.
const (
	// EventMessageReceived carries a relayed direct message, both as the
	// sender's echo and as the copy delivered to the destination user.
	EventMessageReceived = "message:received"

	// EventTypingUpdate is the typing indicator delivered to the destination user.
	EventTypingUpdate = "typing:update"

	// EventStatusUpdate announces a user's presence or status change to all connections.
	EventStatusUpdate = "status:update"

	// EventMessagesRead is the read receipt delivered to the original sender.
	EventMessagesRead = "messages:read"

	// EventForceDisconnect is sent to a superseded connection just before it is closed.
	EventForceDisconnect = "force-disconnect"
)

// Envelope is the wire frame wrapping every event in both directions.
// Data stays raw on the inbound path so payloads can be forwarded untouched.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// messagePayload extracts only the routing field of a direct message; the
// rest of the payload is opaque to the hub.
type messagePayload struct {
	DestinatarioID string `json:"destinatarioId"`
}

// typingPayload is the inbound payload of typing:start / typing:stop.
type typingPayload struct {
	DestinatarioID string `json:"destinatarioId"`
	UserID         string `json:"userId"`
}

// statusChangePayload is the inbound payload of status:change.
type statusChangePayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// markReadPayload is the inbound payload of messages:mark-read.
// RemetenteID is the original sender who receives the receipt;
// DestinatarioID is the reader.
type markReadPayload struct {
	RemetenteID    string `json:"remetenteId"`
	DestinatarioID string `json:"destinatarioId"`
}

// emitPayload is the inbound payload of emit:to-room / emit:broadcast.
type emitPayload struct {
	Room    string          `json:"room,omitempty"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TypingUpdatePayload is the outbound payload of typing:update.
type TypingUpdatePayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// StatusUpdatePayload is the outbound payload of status:update.
// LastSeenTimestamp is Unix milliseconds.
type StatusUpdatePayload struct {
	UserID            string `json:"userId"`
	Status            string `json:"status"`
	LastSeenTimestamp int64  `json:"lastSeenTimestamp"`
}

// ReadReceiptPayload is the outbound payload of messages:read; UserID is the
// user who read the messages.
type ReadReceiptPayload struct {
	UserID string `json:"userId"`
}

// ForceDisconnectPayload is the outbound payload of force-disconnect.
type ForceDisconnectPayload struct {
	Reason string `json:"reason"`
}

// User statuses announced via status:update on join and disconnect.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// EncodeEvent marshals an event name and payload into a wire frame.
func EncodeEvent(event string, data any) ([]byte, error) {
	frame := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{
		Event: event,
		Data:  data,
	}

	return json.Marshal(frame)
}

// nowMillis is the clock used for lastSeenTimestamp values; overridable in tests.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
