package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-order-hub/internal/application/facade"
	"go-order-hub/internal/config"
	"go-order-hub/internal/infrastructure/export"
	"go-order-hub/internal/infrastructure/hub"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/interfaces/rest/middleware"
	v1 "go-order-hub/internal/interfaces/rest/v1"
	"go-order-hub/internal/interfaces/sse"
	"go-order-hub/internal/interfaces/websocket"
)

func InitRouter(
	cfg *config.Config,
	hubInstance *hub.Hub,
	orders *facade.OrderApplicationService,
	log logger.Logger,
) http.Handler {
	if cfg.Logger.Level != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	rootGroup := router.Group("")

	// Health check endpoint
	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"hub_running": hubInstance.IsRunning(),
			"connections": hubInstance.ConnectionCount(),
		})
	})

	connOpts := hub.ConnectionOptions{
		SendBuffer: cfg.Hub.SendBuffer,
		KeepAlive:  cfg.Hub.KeepAliveInterval,
	}

	v1.InitOrderRouter(log, orders, orders, export.New(), rootGroup)
	sse.InitSSERouter(log, hubInstance, connOpts, rootGroup)
	websocket.InitWebSocketRouter(log, hubInstance, connOpts, rootGroup)

	return router
}
