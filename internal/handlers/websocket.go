package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ride-admin-backend/internal/services"
)

// WebSocketHandler attaches an admin to the live ride event feed
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.HandleWebSocket(hub, c.Writer, c.Request, c.GetUint("userId"))
	}
}
