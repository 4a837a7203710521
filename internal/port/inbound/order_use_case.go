package inbound

import (
	"context"

	"go-order-hub/internal/domain"
)

// OrderUseCase is what the REST and CLI layers drive.
type OrderUseCase interface {
	Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, id int64, patch domain.OrderPatch) (*domain.Order, error)
	ToggleStatus(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	Backfill(ctx context.Context) (*domain.BackfillResult, error)
}

// StatisticsUseCase serves the dashboard aggregates.
type StatisticsUseCase interface {
	Statistics(ctx context.Context) (*domain.Statistics, error)
}
