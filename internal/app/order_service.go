package app

import (
	"context"

	"github.com/tanihub/agristore-api/internal/clock"
	"github.com/tanihub/agristore-api/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order, expected domain.OrderStatus) error
}

// OrderService drives the forward delivery flow and serves order reads.
type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		clock: clk,
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// AdvanceStatus applies one delivery-flow transition to the order. Targets
// outside the forward pipeline are refused here regardless of the transition
// table: entering cancelled or return_accepted without the approval workflow
// would commit the status with none of its ledger and voucher effects. The
// order row is locked for the duration and the write is conditional on the
// status read under the lock, so two concurrent transitions on the same order
// cannot both apply.
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID string, target domain.OrderStatus, actor domain.Actor) (domain.Order, error) {
	if !target.Known() {
		return domain.Order{}, domain.ErrInvalidStatus
	}
	if !target.DeliveryFlow() {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		expected := order.Status
		applied, err := order.Transition(target, actor)
		if err != nil {
			return err
		}
		if applied {
			order.UpdatedAt = s.clock.Now()
			if err := s.repo.UpdateOrder(txCtx, order, expected); err != nil {
				return err
			}
		}

		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}
