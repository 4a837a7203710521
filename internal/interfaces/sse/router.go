package sse

import (
	"github.com/gin-gonic/gin"

	"go-order-hub/internal/infrastructure/hub"
	"go-order-hub/internal/infrastructure/logger"
)

func InitSSERouter(logger logger.Logger, hubInstance *hub.Hub, opts hub.ConnectionOptions, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(hubInstance, opts, logger)

	updates := rg.Group("/api/updates")
	updates.GET("", SSEHeadersMiddleware(), sseHandler.Connect)
	updates.GET("/connections", sseHandler.GetConnections)
}

// SSEHeadersMiddleware keeps proxies and browsers from caching or buffering
// the stream. The content type is set once streaming starts so early errors
// still go out as JSON.
func SSEHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store")
		c.Header("X-Accel-Buffering", "no")
		c.Next()
	}
}
