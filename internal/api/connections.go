package api

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Connections tracks open chat WebSockets so they can be closed on shutdown;
// http.Server.Shutdown does not touch hijacked connections.
type Connections struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewConnections creates an empty registry.
func NewConnections() *Connections {
	return &Connections{active: make(map[string]*websocket.Conn)}
}

// Register adds conn under connID.
func (c *Connections) Register(connID string, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[connID] = conn
}

// Unregister removes connID if it still maps to conn.
func (c *Connections) Unregister(connID string, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.active[connID]; ok && current == conn {
		delete(c.active, connID)
	}
}

// Len returns the number of open connections.
func (c *Connections) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.active)
}

// CloseAll closes every open connection with StatusGoingAway.
func (c *Connections) CloseAll(reason string) {
	c.mu.Lock()
	conns := c.active
	c.active = make(map[string]*websocket.Conn)
	c.mu.Unlock()

	for id, conn := range conns {
		if err := conn.Close(websocket.StatusGoingAway, reason); err != nil {
			slog.Debug("Failed to close chat connection", "conn_id", id, "error", err)
		}
	}
	if len(conns) > 0 {
		slog.Info("Chat connections closed", "count", len(conns))
	}
}
