// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mhowell/story-poker/domain"
)

// Hub fans session events out to websocket subscribers. Connections
// are grouped by session ID; a write failure drops the connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*websocket.Conn]bool
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// AddConnection subscribes conn to events for the given session.
func (h *Hub) AddConnection(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[sessionID] == nil {
		h.connections[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.connections[sessionID][conn] = true

	h.logger.Info("websocket client connected",
		"session_id", sessionID,
		"total_connections", len(h.connections[sessionID]))
}

// RemoveConnection unsubscribes conn and closes it.
func (h *Hub) RemoveConnection(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.connections[sessionID]; ok {
		if conns[conn] {
			delete(conns, conn)
			conn.Close()
		}
		if len(conns) == 0 {
			delete(h.connections, sessionID)
		}
	}

	h.logger.Info("websocket client disconnected", "session_id", sessionID)
}

// Publish sends the event to every subscriber of its session. Dead
// connections are pruned as they fail.
func (h *Hub) Publish(event domain.Event) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.connections[event.SessionID]))
	for conn := range h.connections[event.SessionID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	var failed []*websocket.Conn
	for _, conn := range conns {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warn("failed to send event, dropping connection",
				"session_id", event.SessionID,
				"event", event.Type,
				"error", err)
			failed = append(failed, conn)
		}
	}
	for _, conn := range failed {
		h.RemoveConnection(event.SessionID, conn)
	}

	h.logger.Debug("event published",
		"session_id", event.SessionID,
		"event", event.Type,
		"subscribers", len(conns)-len(failed))
}

// SubscriberCount reports the number of open connections for a session.
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}
