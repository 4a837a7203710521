package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-order-hub/internal/infrastructure/logger"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()

	h := New(logger.NewNop(), WithCleanupInterval(time.Hour))
	require.NoError(t, h.Start(context.Background()))
	t.Cleanup(func() { _ = h.Stop(context.Background()) })
	return h
}

func TestHub_StartStop(t *testing.T) {
	h := New(logger.NewNop())
	ctx := context.Background()

	require.NoError(t, h.Start(ctx))
	assert.True(t, h.IsRunning())
	assert.Error(t, h.Start(ctx), "second start must fail")

	require.NoError(t, h.Stop(ctx))
	assert.False(t, h.IsRunning())
	require.NoError(t, h.Stop(ctx), "stop is idempotent")
}

func TestHub_RegisterRequiresRunningHub(t *testing.T) {
	h := New(logger.NewNop())
	conn := newFakeConnection("c1", 0)

	assert.ErrorIs(t, h.Register(conn), ErrHubNotRunning)
	assert.Empty(t, conn.types())
}

func TestHub_RegisterSendsWelcomeFirst(t *testing.T) {
	h := newRunningHub(t)
	conn := newFakeConnection("c1", 0)

	require.NoError(t, h.Register(conn))
	h.Broadcast(UpdateEvent())

	assert.Equal(t, 1, h.ConnectionCount())
	assert.Equal(t, []EventType{EventConnected, EventUpdate}, conn.types())

	got, ok := h.GetConnection("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())
}

func TestHub_RegisterFailsWhenWelcomeCannotBeSent(t *testing.T) {
	h := newRunningHub(t)
	conn := newFakeConnection("c1", 1)

	assert.Error(t, h.Register(conn))
	assert.Zero(t, h.ConnectionCount())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := newRunningHub(t)
	conn := newFakeConnection("c1", 0)
	require.NoError(t, h.Register(conn))

	h.Unregister("c1")
	h.Unregister("c1")
	h.Unregister("never-registered")

	assert.Zero(t, h.ConnectionCount())
	assert.True(t, conn.IsClosed())

	assert.Zero(t, h.Broadcast(UpdateEvent()))
	assert.Equal(t, []EventType{EventConnected}, conn.types())
}

func TestHub_BroadcastDeliversInOrderToEverySubscriber(t *testing.T) {
	h := newRunningHub(t)

	const subscribers, events = 5, 10
	conns := make([]*fakeConnection, subscribers)
	for i := range conns {
		conns[i] = newFakeConnection(fmt.Sprintf("c%d", i), 0)
		require.NoError(t, h.Register(conns[i]))
	}

	for n := 0; n < events; n++ {
		assert.Equal(t, subscribers, h.Broadcast(UpdateEvent()))
	}

	for _, c := range conns {
		types := c.types()
		require.Len(t, types, events+1)
		assert.Equal(t, EventConnected, types[0])
		for _, typ := range types[1:] {
			assert.Equal(t, EventUpdate, typ)
		}
	}
}

func TestHub_FailingSubscriberIsIsolatedAndRemoved(t *testing.T) {
	h := newRunningHub(t)

	// The welcome is send #1, so failAt=4 fails on the third broadcast.
	bad := newFakeConnection("bad", 4)
	good := []*fakeConnection{newFakeConnection("g1", 0), newFakeConnection("g2", 0)}
	require.NoError(t, h.Register(good[0]))
	require.NoError(t, h.Register(bad))
	require.NoError(t, h.Register(good[1]))

	const events = 6
	for n := 0; n < events; n++ {
		h.Broadcast(UpdateEvent())
	}

	assert.Len(t, bad.types(), 3, "welcome plus the two broadcasts before the failure")
	assert.True(t, bad.IsClosed())
	_, stillThere := h.GetConnection("bad")
	assert.False(t, stillThere)

	for _, c := range good {
		assert.Len(t, c.types(), events+1)
	}
	assert.Equal(t, 2, h.ConnectionCount())
}

func TestHub_BroadcastDropsClosedConnections(t *testing.T) {
	h := newRunningHub(t)
	conn := newFakeConnection("c1", 0)
	require.NoError(t, h.Register(conn))

	conn.markClosed()
	assert.Zero(t, h.Broadcast(UpdateEvent()))
	assert.Zero(t, h.ConnectionCount())
	assert.Equal(t, []EventType{EventConnected}, conn.types())
}

func TestHub_TransportCloseUnregisters(t *testing.T) {
	h := newRunningHub(t)
	conn := newFakeConnection("c1", 0)
	require.NoError(t, h.Register(conn))

	conn.cancel()

	assert.Eventually(t, func() bool { return h.ConnectionCount() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestHub_CleanupSweepsClosedConnections(t *testing.T) {
	h := New(logger.NewNop(), WithCleanupInterval(10*time.Millisecond))
	require.NoError(t, h.Start(context.Background()))
	defer h.Stop(context.Background())

	conn := newFakeConnection("c1", 0)
	require.NoError(t, h.Register(conn))
	conn.markClosed()

	assert.Eventually(t, func() bool { return h.ConnectionCount() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesConnections(t *testing.T) {
	h := New(logger.NewNop())
	require.NoError(t, h.Start(context.Background()))

	conn := newFakeConnection("c1", 0)
	require.NoError(t, h.Register(conn))

	require.NoError(t, h.Stop(context.Background()))
	assert.True(t, conn.IsClosed())
	assert.Zero(t, h.ConnectionCount())
}

func TestHub_SlowConnectionIsDropped(t *testing.T) {
	h := newRunningHub(t)

	// Nobody drains this outbox: the welcome fills it.
	conn := NewSSEConnection(context.Background(), "slow", newSyncRecorder(),
		ConnectionOptions{SendBuffer: 1, KeepAlive: time.Hour}, logger.NewNop())
	fast := newFakeConnection("fast", 0)
	require.NoError(t, h.Register(conn))
	require.NoError(t, h.Register(fast))

	assert.Equal(t, 1, h.Broadcast(UpdateEvent()))
	assert.True(t, conn.IsClosed())
	assert.Equal(t, 1, h.ConnectionCount())
	assert.Len(t, fast.types(), 2)
}

func TestHub_NotifyChangeBroadcastsUpdate(t *testing.T) {
	h := newRunningHub(t)
	conn := newFakeConnection("c1", 0)
	require.NoError(t, h.Register(conn))

	h.NotifyChange(context.Background())
	assert.Equal(t, []EventType{EventConnected, EventUpdate}, conn.types())
}

func TestHub_ConcurrentRegisterUnregisterBroadcast(t *testing.T) {
	h := newRunningHub(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				conn := newFakeConnection(id, 0)
				if err := h.Register(conn); err != nil {
					t.Errorf("register %s: %v", id, err)
					return
				}
				if i%2 == 0 {
					h.Unregister(id)
				} else {
					conn.cancel()
				}
			}
		}(w)
	}
	for b := 0; b < 4; b++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Broadcast(UpdateEvent())
			}
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return h.ConnectionCount() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestHub_NoDeliveryAfterUnregister(t *testing.T) {
	h := newRunningHub(t)

	conns := make([]*fakeConnection, 20)
	for i := range conns {
		conns[i] = newFakeConnection(fmt.Sprintf("c%d", i), 0)
		require.NoError(t, h.Register(conns[i]))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(UpdateEvent())
		}
	}()

	counts := make([]int, len(conns))
	for i, c := range conns {
		h.Unregister(c.ID())
		counts[i] = len(c.types())
	}
	wg.Wait()

	for i, c := range conns {
		assert.Equal(t, counts[i], len(c.types()), "connection %s received after unregister", c.ID())
	}
}

// fakeConnection records delivered events. When failAt is positive, the
// failAt-th Send and every later one fail.
type fakeConnection struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	failAt int

	mu       sync.Mutex
	sends    int
	closed   bool
	received []Event
}

func newFakeConnection(id string, failAt int) *fakeConnection {
	ctx, cancel := context.WithCancel(context.Background())
	return &fakeConnection{id: id, ctx: ctx, cancel: cancel, failAt: failAt}
}

func (f *fakeConnection) ID() string   { return f.id }
func (f *fakeConnection) Type() string { return "fake" }

func (f *fakeConnection) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrConnectionClosed
	}
	f.sends++
	if f.failAt > 0 && f.sends >= f.failAt {
		return errors.New("broken pipe")
	}

	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	f.received = append(f.received, e)
	return nil
}

func (f *fakeConnection) Close() error {
	f.markClosed()
	f.cancel()
	return nil
}

func (f *fakeConnection) markClosed() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConnection) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConnection) Context() context.Context { return f.ctx }

func (f *fakeConnection) types() []EventType {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]EventType, len(f.received))
	for i, e := range f.received {
		types[i] = e.Type
	}
	return types
}
