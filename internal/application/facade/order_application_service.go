package facade

import (
	"context"
	"fmt"
	"time"

	"go-order-hub/internal/domain"
	"go-order-hub/internal/infrastructure/logger"
	"go-order-hub/internal/port/inbound"
	"go-order-hub/internal/port/outbound"
)

// OrderApplicationService runs order use cases against the repository and
// signals the change notifier once per successful write.
type OrderApplicationService struct {
	repo     outbound.OrderRepository
	notifier outbound.ChangeNotifier
	logger   logger.Logger
	now      func() time.Time
}

var (
	_ inbound.OrderUseCase      = (*OrderApplicationService)(nil)
	_ inbound.StatisticsUseCase = (*OrderApplicationService)(nil)
)

func NewOrderApplicationService(
	repo outbound.OrderRepository,
	notifier outbound.ChangeNotifier,
	logger logger.Logger,
) *OrderApplicationService {
	return &OrderApplicationService{
		repo:     repo,
		notifier: notifier,
		logger:   logger.WithField("service", "orders"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderApplicationService) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	order := in.Build(s.now())
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Infof("Order %d created for %s", order.ID, order.CustomerName)
	s.notifier.NotifyChange(ctx)
	return order, nil
}

func (s *OrderApplicationService) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *OrderApplicationService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *OrderApplicationService) Update(ctx context.Context, id int64, patch domain.OrderPatch) (*domain.Order, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidOrder)
	}

	order, err := s.repo.Update(ctx, id, func(o *domain.Order) error {
		return patch.Apply(o, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Order %d updated", id)
	s.notifier.NotifyChange(ctx)
	return order, nil
}

func (s *OrderApplicationService) ToggleStatus(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.repo.Update(ctx, id, func(o *domain.Order) error {
		next := o.Status.Toggle()
		return domain.OrderPatch{Status: &next}.Apply(o, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Order %d is now %s", id, order.Status)
	s.notifier.NotifyChange(ctx)
	return order, nil
}

func (s *OrderApplicationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infof("Order %d deleted", id)
	s.notifier.NotifyChange(ctx)
	return nil
}

// Backfill gives legacy orders a pending status and realigns the id
// sequence with the stored rows.
func (s *OrderApplicationService) Backfill(ctx context.Context) (*domain.BackfillResult, error) {
	updated, err := s.repo.BackfillStatus(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SyncSequence(ctx); err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	if updated > 0 {
		s.notifier.NotifyChange(ctx)
	}
	s.logger.Infof("Backfill updated %d of %d orders", updated, total)

	return &domain.BackfillResult{
		Message:       "Migration completed successfully",
		OrdersUpdated: updated,
		TotalOrders:   total,
	}, nil
}

func (s *OrderApplicationService) Statistics(ctx context.Context) (*domain.Statistics, error) {
	return s.repo.Statistics(ctx)
}
