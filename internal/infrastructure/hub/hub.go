package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/port/outbound"
)

// Hub keeps the set of live subscriber connections and fans change events
// out to them. A failing subscriber is dropped without affecting the others.
type Hub struct {
	connections   map[string]Connection
	connectionsMu sync.RWMutex

	// broadcastMu serializes broadcasts so every subscriber sees events in
	// the order Broadcast was called.
	broadcastMu sync.Mutex

	running   bool
	runningMu sync.RWMutex

	logger          logger.Logger
	cleanupInterval time.Duration
	welcome         []byte

	ctx      context.Context
	cancel   context.CancelFunc
	watchers sync.WaitGroup
}

var _ outbound.ChangeNotifier = (*Hub)(nil)

type Option func(*Hub)

// WithCleanupInterval sets how often connections already observed closed are swept.
func WithCleanupInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.cleanupInterval = d
		}
	}
}

// New creates a new Hub instance
func New(logger logger.Logger, opts ...Option) *Hub {
	welcome, _ := ConnectedEvent().Encode()

	h := &Hub{
		connections:     make(map[string]Connection),
		logger:          logger.WithField("component", "hub"),
		cleanupInterval: 30 * time.Second,
		welcome:         welcome,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start starts the hub and its cleanup loop.
func (h *Hub) Start(ctx context.Context) error {
	h.runningMu.Lock()
	defer h.runningMu.Unlock()

	if h.running {
		return fmt.Errorf("hub is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.running = true

	go h.run(h.ctx)

	h.logger.Info("Hub started successfully")
	return nil
}

// Stop gracefully stops the hub and disconnects all connections
func (h *Hub) Stop(ctx context.Context) error {
	h.runningMu.Lock()
	if !h.running {
		h.runningMu.Unlock()
		return nil
	}
	h.running = false
	h.cancel()

	h.connectionsMu.Lock()
	for _, conn := range h.connections {
		if err := conn.Close(); err != nil {
			h.logger.Errorf("Failed to close connection %s: %v", conn.ID(), err)
		}
	}
	h.connections = make(map[string]Connection)
	h.connectionsMu.Unlock()
	h.runningMu.Unlock()

	done := make(chan struct{})
	go func() {
		h.watchers.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("Hub stopped successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop hub: %w", ctx.Err())
	}
}

// IsRunning returns true if the hub is currently running
func (h *Hub) IsRunning() bool {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()
	return h.running
}

// Register sends the welcome event to conn and adds it to the broadcast set.
// The connection is unregistered as soon as its context is done.
func (h *Hub) Register(conn Connection) error {
	h.runningMu.RLock()
	defer h.runningMu.RUnlock()

	if !h.running {
		return ErrHubNotRunning
	}

	if err := conn.Send(h.welcome); err != nil {
		return fmt.Errorf("send welcome to %s: %w", conn.ID(), err)
	}

	h.connectionsMu.Lock()
	h.connections[conn.ID()] = conn
	total := len(h.connections)
	h.connectionsMu.Unlock()

	h.logger.Infof("Connection %s registered (type: %s, total: %d)", conn.ID(), conn.Type(), total)

	h.watchers.Add(1)
	go h.watch(h.ctx, conn)

	return nil
}

func (h *Hub) watch(ctx context.Context, conn Connection) {
	defer h.watchers.Done()

	select {
	case <-conn.Context().Done():
		h.Unregister(conn.ID())
	case <-ctx.Done():
	}
}

// Unregister removes a connection from the hub and closes it. Removing an
// unknown or already removed connection is a no-op.
func (h *Hub) Unregister(connID string) {
	h.connectionsMu.Lock()
	conn, exists := h.connections[connID]
	if exists {
		delete(h.connections, connID)
	}
	h.connectionsMu.Unlock()

	if !exists {
		return
	}

	if err := conn.Close(); err != nil {
		h.logger.Warnf("Failed to close connection %s: %v", connID, err)
	}
	h.logger.Infof("Connection %s unregistered", connID)
}

// GetConnection returns a connection by ID
func (h *Hub) GetConnection(connID string) (Connection, bool) {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	conn, exists := h.connections[connID]
	return conn, exists
}

// GetConnections returns a snapshot of all active connections
func (h *Hub) GetConnections() []Connection {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	connections := make([]Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		connections = append(connections, conn)
	}
	return connections
}

// GetConnectionsByType returns connections of a specific type
func (h *Hub) GetConnectionsByType(connType string) []Connection {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()

	var connections []Connection
	for _, conn := range h.connections {
		if conn.Type() == connType {
			connections = append(connections, conn)
		}
	}
	return connections
}

// ConnectionCount returns the number of active connections
func (h *Hub) ConnectionCount() int {
	h.connectionsMu.RLock()
	defer h.connectionsMu.RUnlock()
	return len(h.connections)
}

// Broadcast serializes event once and enqueues it to every connection
// registered at call time. Closed or failing connections are removed; no
// error ever reaches the caller. It returns the number of successful enqueues.
func (h *Hub) Broadcast(event Event) int {
	payload, err := event.Encode()
	if err != nil {
		h.logger.Errorf("Failed to encode %s event: %v", event.Type, err)
		return 0
	}

	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()

	connections := h.GetConnections()
	delivered := 0

	for _, conn := range connections {
		if conn.IsClosed() {
			h.logger.Debugf("Dropping closed connection %s", conn.ID())
			h.Unregister(conn.ID())
			continue
		}

		if err := conn.Send(payload); err != nil {
			h.logger.Warnf("Failed to send %s event to connection %s: %v", event.Type, conn.ID(), err)
			h.Unregister(conn.ID())
			continue
		}
		delivered++
	}

	h.logger.Debugf("Broadcasted %s event to %d/%d connections", event.Type, delivered, len(connections))
	return delivered
}

// NotifyChange broadcasts an update event.
func (h *Hub) NotifyChange(_ context.Context) {
	h.Broadcast(UpdateEvent())
}

// run periodically sweeps connections whose transport already closed.
func (h *Hub) run(ctx context.Context) {
	ticker := time.NewTicker(h.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.cleanupClosedConnections()

		case <-ctx.Done():
			h.logger.Info("Hub run loop stopped")
			return
		}
	}
}

// cleanupClosedConnections removes connections that have been closed
func (h *Hub) cleanupClosedConnections() {
	for _, conn := range h.GetConnections() {
		if conn.IsClosed() {
			h.Unregister(conn.ID())
			h.logger.Infof("Cleaned up closed connection %s", conn.ID())
		}
	}
}
