package app

import (
	"context"

	"github.com/tanihub/agristore-api/internal/clock"
	"github.com/tanihub/agristore-api/internal/domain"
)

type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error)
	InsertMovement(ctx context.Context, movement domain.StockMovement) error
	SetProductStock(ctx context.Context, productID string, stock int) error
	ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error)
}

// LedgerService owns the append-only stock ledger. Every stock change goes
// through RecordMovement so the movement chain and the product's stock field
// never diverge.
type LedgerService struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewLedgerService(repo LedgerRepository, clk clock.Clock) *LedgerService {
	return &LedgerService{
		repo:  repo,
		clock: clk,
	}
}

type RecordMovementInput struct {
	ProductID string
	Type      domain.MovementType
	Quantity  int
	Reason    domain.MovementReason
}

// RecordMovement appends one movement and updates the product stock in the
// same transaction. When called inside an enclosing transaction the append
// joins it, so callers can make a movement part of a larger atomic unit.
func (s *LedgerService) RecordMovement(ctx context.Context, in RecordMovementInput) (domain.StockMovement, error) {
	if in.Quantity <= 0 {
		return domain.StockMovement{}, domain.ErrInvalidQuantity
	}
	if !in.Type.Known() || !in.Reason.Known() {
		return domain.StockMovement{}, domain.ErrInvalidMovement
	}

	var result domain.StockMovement

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.repo.GetProductForUpdate(txCtx, in.ProductID)
		if err != nil {
			return err
		}

		current := product.Stock + in.Quantity
		if in.Type == domain.MovementOut {
			current = product.Stock - in.Quantity
		}
		if current < 0 {
			return domain.ErrInsufficientStock
		}

		movement := domain.StockMovement{
			ID:            newID(),
			ProductID:     product.ID,
			ProductName:   product.Name,
			Type:          in.Type,
			Quantity:      in.Quantity,
			Reason:        in.Reason,
			PreviousStock: product.Stock,
			CurrentStock:  current,
			CreatedAt:     s.clock.Now(),
		}

		if err := s.repo.InsertMovement(txCtx, movement); err != nil {
			return err
		}
		if err := s.repo.SetProductStock(txCtx, product.ID, current); err != nil {
			return err
		}

		result = movement
		return nil
	})
	if err != nil {
		return domain.StockMovement{}, err
	}
	return result, nil
}

// ListMovements returns the ledger for one product, or the whole ledger when
// productID is empty, in chain order.
func (s *LedgerService) ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error) {
	return s.repo.ListMovements(ctx, productID)
}
