// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mhowell/story-poker/coordinator"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer; accept any origin here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub   *notify.Hub
	coord *coordinator.Coordinator
}

func NewWSHandler(hub *notify.Hub, coord *coordinator.Coordinator) *WSHandler {
	return &WSHandler{hub: hub, coord: coord}
}

// Subscribe handles GET /sessions/:id/ws
// Upgrades to a websocket and streams session events until the client
// disconnects. The connection is read-only for the client; incoming
// messages are discarded.
func (h *WSHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := h.coord.Session(id); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "session_id", id)
		return
	}

	h.hub.AddConnection(id, conn)
	defer h.hub.RemoveConnection(id, conn)

	// Drain client frames; exit on close or error.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
