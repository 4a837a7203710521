package hub

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHubNotRunning    = errors.New("hub is not running")
	ErrConnectionClosed = errors.New("connection is closed")
	ErrSlowConnection   = errors.New("connection send buffer is full")
)

// Connection represents any type of subscriber connection (SSE, WebSocket, etc.)
type Connection interface {
	ID() string
	Type() string
	// Send enqueues an already serialized event without blocking.
	// It fails with ErrConnectionClosed or ErrSlowConnection.
	Send(payload []byte) error
	Close() error
	IsClosed() bool
	// Context is done once the underlying transport is gone.
	Context() context.Context
}

// ConnectionOptions tunes the per-connection outbox and keep-alive.
type ConnectionOptions struct {
	SendBuffer int
	KeepAlive  time.Duration
}

func (o ConnectionOptions) withDefaults() ConnectionOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 16
	}
	if o.KeepAlive <= 0 {
		o.KeepAlive = 15 * time.Second
	}
	return o
}
