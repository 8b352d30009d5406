/*
Package handler provides the HTTP surface of the presence hub.

This file defines the main Router: the control-plane endpoints (health,
status, event injection), the WebSocket entry point, and the middleware
stack (CORS, request logging, recovery, per-IP rate limiting).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"presencehub/internal/pkg/limiter"
	"presencehub/internal/pkg/logx"
)

const (
	// WebSocket upgrade attempts allowed per IP.
	wsRate  = 1
	wsBurst = 10

	// Control-plane /emit calls allowed per IP.
	emitRate  = 5
	emitBurst = 20
)

// Router builds the HTTP routing table: CORS and logging middleware, the
// control-plane endpoints, and the WebSocket upgrade route.
func Router(deps *AppDeps) http.Handler {
	wsLimiter := limiter.NewIPRateLimiter(rate.Limit(wsRate), wsBurst)
	emitLimiter := limiter.NewIPRateLimiter(rate.Limit(emitRate), emitBurst)

	r := chi.NewRouter()

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if deps.Config.OriginAllowed(origin) {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := deps.Config.AllowedOrigins
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth(deps))
	r.Get("/ping", HandleHealth(deps))
	r.Get("/status", HandleStatus(deps))

	r.Post("/emit", emitLimiter.Middleware(HandleEmit(deps)).ServeHTTP)

	r.Get("/ws", HandleWebSocket(wsUpgrader, wsLimiter, deps))

	return r
}
