/*
Package hub contains the core logic of the presence and message-relay hub.

This file defines Client, the WebSocket-backed implementation of Conn. It
owns the underlying connection and runs the two pump goroutines: ReadPump
decodes inbound envelopes and feeds the hub dispatcher, WritePump drains the
buffered outbound queue and keeps the heartbeat alive. The hub's keep-alive
settings (ping interval / pong timeout) govern dead-peer detection.
*/
package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// timeout for a single write to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// sendQueueSize is the per-connection outbound buffer; delivery is
	// fire-and-forget, a full queue drops the frame.
	sendQueueSize = 256

	// WsCloseCodeSuperseded is the custom WebSocket close code (4000-4999
	// range) signaling that the session was replaced by a new connection.
	WsCloseCodeSuperseded = 4001
)

var (
	errSendQueueFull = errors.New("client send queue full")
	errSendClosed    = errors.New("client send queue closed")
)

// Client is one live WebSocket connection attached to the hub.
type Client struct {
	id         string
	remoteAddr string

	conn *websocket.Conn
	hub  *Hub
	sess *Session

	// send queues encoded frames for WritePump.
	send chan []byte

	mu         sync.RWMutex
	closed     bool
	closeFrame []byte

	logger zerolog.Logger
}

// NewClient wraps an upgraded WebSocket connection and attaches it to the
// hub. The caller must start WritePump in a goroutine and then run ReadPump,
// which blocks until the connection dies.
func NewClient(h *Hub, wsConn *websocket.Conn) *Client {
	id := uuid.New().String()

	c := &Client{
		id:         id,
		remoteAddr: wsConn.RemoteAddr().String(),
		conn:       wsConn,
		hub:        h,
		send:       make(chan []byte, sendQueueSize),
		logger: h.logger.With().
			Str("conn_id", id).
			Str("remote_addr", wsConn.RemoteAddr().String()).
			Logger(),
	}

	c.sess = h.Attach(c)

	return c
}

// ID returns the unique connection identifier.
func (c *Client) ID() string {
	return c.id
}

// RemoteAddr returns the peer address, for diagnostics only.
func (c *Client) RemoteAddr() string {
	return c.remoteAddr
}

// SendFrame enqueues an encoded frame without blocking. Frames are dropped
// with an error when the queue is full or already closed.
func (c *Client) SendFrame(frame []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return errSendClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return errSendQueueFull
	}
}

// closeSend closes the outbound queue exactly once, which makes WritePump
// write a close frame and tear the connection down.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Kick closes the connection with the custom superseded close code.
// The close frame is staged and the outbound queue shut, so WritePump (the
// single writer) delivers any queued frames, then the close frame. The read
// pump notices the closure and performs the actual cleanup.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSuperseded).
		Str("reason", reason).
		Msg("Kicking connection")

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.closeFrame = websocket.FormatCloseMessage(WsCloseCodeSuperseded, reason)
		close(c.send)
	}
	c.mu.Unlock()
}

// pendingCloseFrame returns the staged close frame, or an empty close when
// the connection is going away without a specific code.
func (c *Client) pendingCloseFrame() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closeFrame != nil {
		return c.closeFrame
	}
	return []byte{}
}

// ReadPump reads inbound frames until the connection dies, dispatching each
// decoded envelope to the hub. It blocks and must run on the connection's
// handler goroutine; cleanup happens on exit.
func (c *Client) ReadPump() {
	reason := "connection closed"

	defer func() {
		c.hub.Detach(c.sess, reason)
		c.closeSend()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in ReadPump")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(c.hub.pingTimeout)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		reason = "read deadline setup failed"
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pingTimeout))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close")
			}
			reason = err.Error()
			break
		}

		c.processInbound(frame)
	}
}

// processInbound decodes one wire frame and hands it to the dispatcher.
// Invalid frames are dropped; they never fail the connection.
func (c *Client) processInbound(frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	if env.Event == "" {
		c.logger.Warn().Msg("Client sent frame without event name")
		return
	}

	c.hub.Dispatch(c.sess, env.Event, env.Data)
}

// WritePump drains the outbound queue to the connection and sends periodic
// pings. It exits when the queue is closed or a write fails, closing the
// connection either way.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.pingInterval)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, c.pendingCloseFrame()); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close frame")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing frame")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}
