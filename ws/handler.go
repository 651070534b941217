package ws

import (
	"net/http"

	"collabhub_backend/internal/auth"
	"collabhub_backend/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware gates the rest of the API; the token check
		// below is the real gate here.
		return true
	},
}

type Handler struct {
	manager *Manager
	tokens  *auth.TokenManager
}

func NewHandler(manager *Manager, tokens *auth.TokenManager) *Handler {
	return &Handler{manager: manager, tokens: tokens}
}

// ServeWS upgrades the connection. Browsers cannot set headers on
// websocket dials, so the access token arrives as a query parameter.
func (h *Handler) ServeWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims, err := h.tokens.Parse(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		UserID:  claims.UserID,
		Conn:    conn,
		Send:    make(chan Event, 64),
		manager: h.manager,
	}

	h.manager.register <- client

	go client.readPump()
	go client.writePump()
}
