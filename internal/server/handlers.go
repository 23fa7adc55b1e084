// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and hub statistics.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// HealthResponse is the body returned by the health endpoint.
const HealthResponse = "Chat server is running!"

// WebSocketHandler upgrades GET requests to WebSocket connections and hands
// the resulting client to the hub.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	origins := newOriginPolicy(hub.log, hub.config.Origins())
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origins.check,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)
		if !hub.Register(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
		}
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, HealthResponse)
}

// StatsHandler reports connection, user and room counts as JSON.
func StatsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := hub.Stats(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			hub.log.Warn("Error writing stats response", "error", err)
		}
	}
}
