package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/ashureev/house-assist/internal/middleware"
)

const msgTooManyRequests = "too many requests"

// Limiter decides whether a client may send another message.
// *middleware.RateLimiter implements it.
type Limiter interface {
	Allow(key string) bool
}

// WebSocketHandler serves chat over a WebSocket. Each text frame carries one
// chat request and receives exactly one JSON reply frame.
type WebSocketHandler struct {
	chat          *ChatHandler
	conns         *Connections
	limiter       Limiter
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a WebSocketHandler that answers through chat and
// registers every open connection in conns. Each frame is charged to the
// client's limiter bucket, the same one its HTTP requests use; a nil limiter
// disables throttling.
func NewWebSocketHandler(chat *ChatHandler, conns *Connections, limiter Limiter, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{chat: chat, conns: conns, limiter: limiter, allowedOrigin: allowedOrigin, isDev: isDev}
}

type wsError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	connID := uuid.NewString()
	logger := h.chat.logger.With("conn_id", connID)

	if !h.checkOrigin(r) {
		logger.Warn("WebSocket origin rejected", "origin", r.Header.Get("Origin"), "allowed", h.allowedOrigin)
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			logger.Debug("Failed to close websocket", "error", closeErr)
		}
	}()
	ws.SetReadLimit(h.chat.maxBodyBytes)

	h.conns.Register(connID, ws)
	defer h.conns.Unregister(connID, ws)

	logger.Info("Chat connection opened", "ip", r.RemoteAddr)
	h.readLoop(r.Context(), ws, connID, middleware.ClientKey(r), logger)
	logger.Info("Chat connection closed")
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, connID, clientKey string, logger *slog.Logger) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				logger.Debug("WebSocket closed by client")
			} else {
				logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var reply interface{}
		var req chatRequest
		switch {
		case h.limiter != nil && !h.limiter.Allow(clientKey):
			logger.Warn("rate limit exceeded", "client", clientKey, "path", "/ws/chat")
			reply = wsError{Status: "error", Message: msgTooManyRequests}
		case typ != websocket.MessageText:
			reply = wsError{Status: "error", Message: msgInvalidBody}
		case json.Unmarshal(data, &req) != nil:
			reply = wsError{Status: "error", Message: msgInvalidBody}
		default:
			status, result, message := h.chat.answer(ctx, req, connID)
			if status == http.StatusOK {
				reply = result
			} else {
				reply = wsError{Status: "error", Message: message}
			}
		}

		if err := writeJSON(ctx, ws, reply); err != nil {
			logger.Warn("WebSocket write error", "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
