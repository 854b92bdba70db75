package notification

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/notifications", h.PullNotifications)
}

// RegisterRoutes mounts the websocket endpoint. It authenticates on its own.
func (h *WSHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws", h.HandleWebSocket)
}
