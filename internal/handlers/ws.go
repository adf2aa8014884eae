package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/laranacanta/backend/internal/hub"
	"github.com/laranacanta/backend/internal/logging"
	"github.com/laranacanta/backend/internal/services"
)

// WSHandler upgrades live connections and joins them to their table room.
type WSHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
	auth     *services.AuthService
}

// NewWSHandler creates a WSHandler bound to the given hub and auth service.
func NewWSHandler(h *hub.Hub, auth *services.AuthService) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The socket is gated by the session token, not the Origin header;
			// browsers cannot set Authorization on websocket requests anyway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hub:  h,
		auth: auth,
	}
}

// Serve authenticates the token from the query string, upgrades the
// connection, and joins it to the room of the caller's table. The client
// receives a private joined_successfully ack and then every event published
// to that room for as long as the connection lives.
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventMissingAuth, "missing token on websocket connect")
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	claims, err := h.auth.Verify(token)
	if err != nil {
		logging.LogSecurityEvent(r.Context(), logging.SecurityEventInvalidJWT, "invalid token on websocket connect")
		writeError(w, http.StatusForbidden, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		slog.Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := hub.NewClient(h.hub, conn, hub.RoomID(claims.TableID), claims.UserID, claims.Nickname)
	h.hub.Join(client)
	client.Run()
}
