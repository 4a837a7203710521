package websocket

import (
	"github.com/gin-gonic/gin"

	"go-order-hub/internal/infrastructure/hub"
	"go-order-hub/internal/infrastructure/logger"
)

// InitWebSocketRouter initializes WebSocket routes
func InitWebSocketRouter(logger logger.Logger, hubInstance *hub.Hub, opts hub.ConnectionOptions, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(hubInstance, opts, logger)

	rg.GET("/ws", wsHandler.Connect)
	rg.GET("/ws/connections", wsHandler.GetConnections)
}
