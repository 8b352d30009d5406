/*
Package handler provides the HTTP surface of the presence hub.

This file contains the control-plane handlers: the health/ping probes, the
status report, and the event-injection endpoint used by external backends
to route events into the hub.
*/
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"presencehub/internal/app/hub"
	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/req"
	"presencehub/internal/pkg/resp"
)

// healthResponse is the body of GET /health and GET /ping.
type healthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Connections int    `json:"connections"`
}

// statusResponse is the body of GET /status.
type statusResponse struct {
	Status        string   `json:"status"`
	Port          int      `json:"port"`
	Environment   string   `json:"environment"`
	Connections   int      `json:"connections"`
	OnlineUserIDs []string `json:"onlineUserIds"`
}

// emitRequest is the body of POST /emit. Data is forwarded opaquely.
type emitRequest struct {
	Room  string          `json:"room"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// emitResponse is the success body of POST /emit, echoing the routed target.
type emitResponse struct {
	Success   bool   `json:"success"`
	Room      string `json:"room"`
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
}

// HandleHealth reports liveness plus the current connection count.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondJSON(w, r, http.StatusOK, healthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
			Connections: deps.Hub.ConnectionCount(),
		})
	}
}

// HandleStatus reports the process configuration alongside a snapshot of the
// online user set.
func HandleStatus(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		online := deps.Hub.OnlineUsers()
		if online == nil {
			online = []string{}
		}

		resp.RespondJSON(w, r, http.StatusOK, statusResponse{
			Status:        "ok",
			Port:          deps.Config.Port,
			Environment:   deps.Config.Environment,
			Connections:   deps.Hub.ConnectionCount(),
			OnlineUserIDs: online,
		})
	}
}

// HandleEmit validates an injected event and routes it to the named room.
// A missing room or event name is a validation failure; nothing is delivered
// and the client receives a 400.
func HandleEmit(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body emitRequest

		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		if body.Room == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingField, "room"))
			return
		}

		if body.Event == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingField, "event"))
			return
		}

		deps.Hub.Deliver(hub.ToRoom(body.Room), body.Event, body.Data)

		resp.RespondJSON(w, r, http.StatusOK, emitResponse{
			Success:   true,
			Room:      body.Room,
			Event:     body.Event,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}
