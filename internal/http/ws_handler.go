package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"artmarket/internal/ws"
)

// WSHandler hace el upgrade a websocket para el usuario autenticado.
type WSHandler struct {
	logger   *zap.Logger
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *zap.Logger, hub *ws.Hub) *WSHandler {
	return &WSHandler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// SameSite=Strict en las cookies ya corta el cross-site; el
			// proxy inverso fija el Origin permitido.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve maneja GET /ws.
func (h *WSHandler) Serve(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err), zap.String("user_id", user.ID))
		return
	}
	h.hub.Register(user.ID, conn)
}
