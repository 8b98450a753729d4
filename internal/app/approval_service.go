package app

import (
	"context"

	"github.com/tanihub/agristore-api/internal/clock"
	"github.com/tanihub/agristore-api/internal/domain"
)

// Decision is an admin verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision maps a wire string onto the closed decision set.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove:
		return DecisionApprove, nil
	case DecisionReject:
		return DecisionReject, nil
	}
	return "", domain.ErrInvalidDecision
}

type ApprovalRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrder(ctx context.Context, order domain.Order, expected domain.OrderStatus) error
	DecrementVoucherUses(ctx context.Context, code string) error
}

// Restocker is the ledger surface the workflow needs on approval.
type Restocker interface {
	RecordMovement(ctx context.Context, in RecordMovementInput) (domain.StockMovement, error)
}

// ApprovalService wraps customer-submitted cancellation/return requests and
// admin decisions. An approval commits the status change, the restock
// movements and the voucher decrement as one transaction: if any step fails
// nothing is observable.
type ApprovalService struct {
	repo   ApprovalRepository
	ledger Restocker
	clock  clock.Clock
}

func NewApprovalService(repo ApprovalRepository, ledger Restocker, clk clock.Clock) *ApprovalService {
	return &ApprovalService{
		repo:   repo,
		ledger: ledger,
		clock:  clk,
	}
}

// RequestCancellation records a customer cancellation request on an order in
// processing or shipped and moves it to cancel_requested. Repeating the
// request while it is pending is a no-op.
func (s *ApprovalService) RequestCancellation(ctx context.Context, orderID, reason string) (domain.Order, error) {
	if reason == "" {
		return domain.Order{}, domain.ErrReasonRequired
	}

	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		expected := order.Status
		applied, err := order.Transition(domain.StatusCancelRequested, domain.ActorCustomer)
		if err != nil {
			return err
		}
		if applied {
			now := s.clock.Now()
			order.CancelRequest = &domain.CancelRequest{Reason: reason, RequestedAt: now}
			order.UpdatedAt = now
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

// RequestReturn records a customer return request on a completed order and
// moves it to return_requested.
func (s *ApprovalService) RequestReturn(ctx context.Context, orderID, reason string, media []string) (domain.Order, error) {
	if reason == "" {
		return domain.Order{}, domain.ErrReasonRequired
	}

	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		expected := order.Status
		applied, err := order.Transition(domain.StatusReturnRequested, domain.ActorCustomer)
		if err != nil {
			return err
		}
		if applied {
			now := s.clock.Now()
			order.ReturnRequest = &domain.ReturnRequest{Reason: reason, Media: media, RequestedAt: now}
			order.UpdatedAt = now
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

// DecisionResult reports the order after a decision. Applied is false when
// the decision had already been applied and the call was a retry.
type DecisionResult struct {
	Order   domain.Order
	Applied bool
}

// DecideCancellation approves or rejects a pending cancellation. Approval
// cancels the order, restocks every line and releases the voucher use;
// rejection resumes the pipeline at the status captured when the request was
// made.
func (s *ApprovalService) DecideCancellation(ctx context.Context, orderID string, decision Decision) (DecisionResult, error) {
	return s.decide(ctx, orderID, decision, func(order domain.Order) (domain.OrderStatus, error) {
		if decision == DecisionApprove {
			return domain.StatusCancelled, nil
		}
		if order.Status != domain.StatusCancelRequested || order.PreviousStatus == "" {
			return "", domain.ErrInvalidTransition
		}
		return order.PreviousStatus, nil
	}, domain.ReasonCancellation)
}

// DecideReturn approves or rejects a pending return. Approval restocks every
// line and releases the voucher use; rejection is terminal.
func (s *ApprovalService) DecideReturn(ctx context.Context, orderID string, decision Decision) (DecisionResult, error) {
	return s.decide(ctx, orderID, decision, func(domain.Order) (domain.OrderStatus, error) {
		if decision == DecisionApprove {
			return domain.StatusReturnAccepted, nil
		}
		return domain.StatusReturnRejected, nil
	}, domain.ReasonReturn)
}

func (s *ApprovalService) decide(
	ctx context.Context,
	orderID string,
	decision Decision,
	target func(domain.Order) (domain.OrderStatus, error),
	restockReason domain.MovementReason,
) (DecisionResult, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return DecisionResult{}, domain.ErrInvalidDecision
	}

	var result DecisionResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}

		targetStatus, err := target(order)
		if err != nil {
			return err
		}

		expected := order.Status
		applied, err := order.Transition(targetStatus, domain.ActorAdmin)
		if err != nil {
			return err
		}
		if applied {
			order.UpdatedAt = s.clock.Now()
			if err := s.repo.UpdateOrder(txCtx, order, expected); err != nil {
				return err
			}
			if decision == DecisionApprove {
				if err := s.restock(txCtx, order, restockReason); err != nil {
					return err
				}
				if order.VoucherCode != "" {
					if err := s.repo.DecrementVoucherUses(txCtx, order.VoucherCode); err != nil {
						return err
					}
				}
			}
		}

		result = DecisionResult{Order: order, Applied: applied}
		return nil
	})
	if err != nil {
		return DecisionResult{}, err
	}
	return result, nil
}

// restock issues one in-movement per distinct product, quantities summed
// across lines.
func (s *ApprovalService) restock(ctx context.Context, order domain.Order, reason domain.MovementReason) error {
	quantities := make(map[string]int, len(order.Items))
	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		if _, seen := quantities[item.ProductID]; !seen {
			productIDs = append(productIDs, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	for _, productID := range productIDs {
		_, err := s.ledger.RecordMovement(ctx, RecordMovementInput{
			ProductID: productID,
			Type:      domain.MovementIn,
			Quantity:  quantities[productID],
			Reason:    reason,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
