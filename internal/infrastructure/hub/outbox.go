package hub

import (
	"context"
	"sync"
)

// outbox is the bounded queue between Hub.Broadcast and the goroutine that
// owns a connection's transport. The queue is never closed, so a late Send
// after Close cannot panic.
type outbox struct {
	id    string
	queue chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex
}

func newOutbox(ctx context.Context, id string, size int) *outbox {
	octx, cancel := context.WithCancel(ctx)
	return &outbox{
		id:     id,
		queue:  make(chan []byte, size),
		ctx:    octx,
		cancel: cancel,
	}
}

// ID returns unique connection identifier
func (o *outbox) ID() string {
	return o.id
}

func (o *outbox) Send(payload []byte) error {
	o.closedMu.RLock()
	defer o.closedMu.RUnlock()

	if o.closed || o.ctx.Err() != nil {
		return ErrConnectionClosed
	}

	select {
	case o.queue <- payload:
		return nil
	default:
		return ErrSlowConnection
	}
}

// IsClosed returns true if connection is closed
func (o *outbox) IsClosed() bool {
	o.closedMu.RLock()
	defer o.closedMu.RUnlock()
	return o.closed || o.ctx.Err() != nil
}

// Context returns the connection's context (for cancellation)
func (o *outbox) Context() context.Context {
	return o.ctx
}

// shutdown marks the outbox closed and reports whether this call did it.
func (o *outbox) shutdown() bool {
	o.closedMu.Lock()
	defer o.closedMu.Unlock()

	if o.closed {
		return false
	}
	o.closed = true
	o.cancel()
	return true
}
