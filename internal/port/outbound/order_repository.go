package outbound

import (
	"context"

	"go-order-hub/internal/domain"
)

// OrderRepository persists orders and hands out their sequential ids.
type OrderRepository interface {
	// Create assigns the next sequence value to o.ID and stores it atomically.
	Create(ctx context.Context, o *domain.Order) error
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	// Update loads the order, lets mutate change it and writes it back in one transaction.
	Update(ctx context.Context, id int64, mutate func(o *domain.Order) error) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*domain.Statistics, error)
	BackfillStatus(ctx context.Context) (int64, error)
	SyncSequence(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

// ChangeNotifier is told once after every successful write.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context)
}
