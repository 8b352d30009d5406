/*
Package handler provides the HTTP surface of the presence hub.

This file contains the WebSocket entry point: per-IP rate limiting, the
upgrade itself, and the hand-off of the upgraded connection to the hub's
client pumps.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"presencehub/internal/app/hub"
	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/limiter"
	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/resp"
)

// HandleWebSocket upgrades the request to a WebSocket session and runs the
// connection's pumps. The call blocks in ReadPump until the connection dies;
// cleanup (presence, membership) is driven from there.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the handshake error (including origin rejection).
			logx.Warn("Failed to upgrade connection to WebSocket.", "error", err.Error())
			return
		}

		client := hub.NewClient(deps.Hub, conn)

		go client.WritePump()
		client.ReadPump()
	}
}
