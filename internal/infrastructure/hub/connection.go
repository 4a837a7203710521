package hub

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"go-order-hub/internal/infrastructure/logger"
)

var keepAliveFrame = []byte(": keepalive\n\n")

// SSEConnection implements the Connection interface for Server-Sent Events.
// All writes to the response happen on the goroutine running Serve.
type SSEConnection struct {
	*outbox

	writer    http.ResponseWriter
	keepAlive time.Duration

	logger logger.Logger
}

// NewSSEConnection creates a new SSE connection bound to the request context.
func NewSSEConnection(
	ctx context.Context,
	id string,
	w http.ResponseWriter,
	opts ConnectionOptions,
	logger logger.Logger,
) *SSEConnection {
	opts = opts.withDefaults()

	return &SSEConnection{
		outbox:    newOutbox(ctx, id, opts.SendBuffer),
		writer:    w,
		keepAlive: opts.KeepAlive,
		logger:    logger.WithField("connection_id", id),
	}
}

// Type returns the connection type
func (c *SSEConnection) Type() string {
	return "sse"
}

// Close gracefully closes the connection
func (c *SSEConnection) Close() error {
	if c.shutdown() {
		c.logger.Debug("SSE connection closed")
	}
	return nil
}

// Serve streams queued events to the client until the connection closes or a
// write fails. It blocks for the lifetime of the stream.
func (c *SSEConnection) Serve() error {
	defer c.Close()

	c.setupSSEHeaders()
	c.writer.WriteHeader(http.StatusOK)
	c.flush()

	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case payload := <-c.queue:
			if err := c.write(formatSSEFrame(payload)); err != nil {
				return fmt.Errorf("write event: %w", err)
			}

		case <-ticker.C:
			if err := c.write(keepAliveFrame); err != nil {
				return fmt.Errorf("write keep-alive: %w", err)
			}

		case <-c.ctx.Done():
			return nil
		}
	}
}

func (c *SSEConnection) write(frame []byte) error {
	if _, err := c.writer.Write(frame); err != nil {
		c.logger.Warnf("Failed to write to SSE stream: %v", err)
		return err
	}
	c.flush()
	return nil
}

func (c *SSEConnection) flush() {
	if flusher, ok := c.writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

// setupSSEHeaders sets up the proper headers for SSE connection
func (c *SSEConnection) setupSSEHeaders() {
	h := c.writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache, no-store")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // For nginx
}

// formatSSEFrame wraps a serialized event as "data: <payload>\n\n". Payloads
// spanning several lines get one data field per line.
func formatSSEFrame(payload []byte) []byte {
	var buf bytes.Buffer
	for _, line := range bytes.Split(bytes.TrimRight(payload, "\r\n"), []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(bytes.TrimSuffix(line, []byte("\r")))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
