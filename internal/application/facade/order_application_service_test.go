package facade

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-order-hub/internal/config"
	"go-order-hub/internal/domain"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/infrastructure/store"
)

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) NotifyChange(context.Context) { n.calls.Add(1) }

func newTestService(t *testing.T) (*OrderApplicationService, *countingNotifier) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo, err := store.NewFromDB(context.Background(), db, config.DriverSQLite, logger.NewNop())
	require.NoError(t, err)

	notifier := &countingNotifier{}
	return NewOrderApplicationService(repo, notifier, logger.NewNop()), notifier
}

func acme() domain.NewOrder {
	return domain.NewOrder{
		CustomerName:   "Acme",
		NumberOfCrates: 10,
		Price:          52000,
		DueTime:        time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreate_StoresPendingAndNotifiesOnce(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, acme())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, domain.StatusPending, first.Status)
	assert.Equal(t, int32(1), notifier.calls.Load())

	second, err := svc.Create(ctx, acme())
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)
	assert.Equal(t, int32(2), notifier.calls.Load())
}

func TestCreate_InvalidOrderDoesNotNotify(t *testing.T) {
	svc, notifier := newTestService(t)

	in := acme()
	in.NumberOfCrates = 0
	_, err := svc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrInvalidOrder)
	assert.Zero(t, notifier.calls.Load())

	orders, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestToggleStatus_EachToggleNotifies(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, acme())
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, toggled.Status)

	toggled, err = svc.ToggleStatus(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, toggled.Status)

	stored, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, int32(3), notifier.calls.Load())
}

func TestUpdate_PartialMerge(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, acme())
	require.NoError(t, err)

	price := int64(60000)
	completed := domain.StatusCompleted
	updated, err := svc.Update(ctx, o.ID, domain.OrderPatch{Price: &price, Status: &completed})
	require.NoError(t, err)

	assert.Equal(t, "Acme", updated.CustomerName)
	assert.Equal(t, int64(60000), updated.Price)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	assert.Equal(t, int32(2), notifier.calls.Load())
}

func TestUpdate_FailuresDoNotNotify(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, acme())
	require.NoError(t, err)
	before := notifier.calls.Load()

	_, err = svc.Update(ctx, o.ID, domain.OrderPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	bad := domain.Status("shipped")
	_, err = svc.Update(ctx, o.ID, domain.OrderPatch{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidOrder)

	name := "Globex"
	_, err = svc.Update(ctx, 999, domain.OrderPatch{CustomerName: &name})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = svc.ToggleStatus(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	assert.Equal(t, before, notifier.calls.Load())
}

func TestDelete(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, acme())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, o.ID))
	assert.Equal(t, int32(2), notifier.calls.Load())

	assert.ErrorIs(t, svc.Delete(ctx, o.ID), domain.ErrOrderNotFound)
	assert.Equal(t, int32(2), notifier.calls.Load())
}

func TestStatistics(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, price := range []int64{52000, 8000} {
		in := acme()
		in.Price = price
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	_, err := svc.ToggleStatus(ctx, 1)
	require.NoError(t, err)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Statistics{TotalOrders: 2, TotalRevenue: 60000, PendingOrders: 1}, *stats)
}

func TestBackfill_NothingToDo(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, acme())
	require.NoError(t, err)

	result, err := svc.Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.OrdersUpdated)
	assert.Equal(t, int64(1), result.TotalOrders)
	assert.Equal(t, int32(1), notifier.calls.Load())
}
