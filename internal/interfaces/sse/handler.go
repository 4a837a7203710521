package sse

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-order-hub/internal/infrastructure/hub"
	"go-order-hub/internal/infrastructure/logger"
)

type ServerSentEventHandler struct {
	hub    *hub.Hub
	opts   hub.ConnectionOptions
	logger logger.Logger
}

func NewServerSentEventHandler(hubInstance *hub.Hub, opts hub.ConnectionOptions, logger logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:    hubInstance,
		opts:   opts,
		logger: logger.WithField("handler", "sse"),
	}
}

// Connect subscribes the caller to change notifications and streams them
// until the client disconnects or the hub drops the connection.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("Hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	connID := "sse-" + uuid.NewString()
	conn := hub.NewSSEConnection(c.Request.Context(), connID, c.Writer, h.opts, h.logger)

	if err := h.hub.Register(conn); err != nil {
		h.logger.Errorf("Failed to register connection: %v", err)
		_ = conn.Close()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register connection",
		})
		return
	}

	if err := conn.Serve(); err != nil {
		h.logger.Infof("SSE connection %s ended: %v", connID, err)
	}
	h.hub.Unregister(connID)
}

// GetConnections returns information about connected subscribers.
func (h *ServerSentEventHandler) GetConnections(c *gin.Context) {
	connections := h.hub.GetConnections()
	connectionInfo := make([]gin.H, len(connections))

	for i, conn := range connections {
		connectionInfo[i] = gin.H{
			"id":     conn.ID(),
			"type":   conn.Type(),
			"closed": conn.IsClosed(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       connectionInfo,
		"hub_running":       h.hub.IsRunning(),
	})
}
