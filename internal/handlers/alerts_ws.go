package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/biciguard/biciguard-backend/internal/services"
)

var alertUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// AlertsHandler streams panic alerts to operator dashboards over WebSocket.
type AlertsHandler struct {
	hub *services.AlertHub
}

func NewAlertsHandler(hub *services.AlertHub) *AlertsHandler {
	return &AlertsHandler{hub: hub}
}

// Stream upgrades the connection and forwards every emergency event until
// the client disconnects.
func (h *AlertsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := alertUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	// Writer goroutine: forward hub events to this connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}()

	// Reader loop: we expect no client messages, but reading keeps pings
	// flowing and detects disconnects.
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})
	for {
		select {
		case <-done:
			return
		default:
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}
