package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"go-order-hub/internal/infrastructure/logger"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 54 * time.Second // less than the pong timeout
)

// WebSocketConnection implements the Connection interface for WebSocket
// connections. Serve owns every data write; the read pump only watches for
// the peer going away.
type WebSocketConnection struct {
	*outbox

	conn   *websocket.Conn
	logger logger.Logger
}

// NewWebSocketConnection creates a new WebSocket connection and starts its read pump.
func NewWebSocketConnection(
	id string,
	conn *websocket.Conn,
	opts ConnectionOptions,
	logger logger.Logger,
) *WebSocketConnection {
	opts = opts.withDefaults()

	wsConn := &WebSocketConnection{
		outbox: newOutbox(context.Background(), id, opts.SendBuffer),
		conn:   conn,
		logger: logger.WithField("connection_id", id),
	}

	wsConn.setupWebSocket()
	go wsConn.readPump()

	return wsConn
}

// Type returns the connection type
func (c *WebSocketConnection) Type() string {
	return "websocket"
}

// Close marks the connection closed; Serve sends the close frame.
func (c *WebSocketConnection) Close() error {
	if c.shutdown() {
		c.logger.Debug("WebSocket connection closed")
	}
	return nil
}

func (c *WebSocketConnection) setupWebSocket() {
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})
}

// Serve drains the outbox to the socket and pings the peer until the
// connection closes or a write fails.
func (c *WebSocketConnection) Serve() error {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.queue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Warnf("Failed to write message: %v", err)
				return fmt.Errorf("write event: %w", err)
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(wsWriteTimeout),
			)
			return nil
		}
	}
}

// readPump discards client messages and closes the connection when the
// peer disconnects.
func (c *WebSocketConnection) readPump() {
	defer c.Close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Warnf("WebSocket error: %v", err)
			}
			return
		}
	}
}
