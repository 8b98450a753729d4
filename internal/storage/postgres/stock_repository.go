package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tanihub/agristore-api/internal/domain"
)

type StockRepository struct {
	pool *pgxpool.Pool
}

func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

func (r *StockRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetProductForUpdate locks the product row so concurrent movements on the
// same product serialize and the previous/current stock chain stays intact.
func (r *StockRepository) GetProductForUpdate(ctx context.Context, productID string) (domain.Product, error) {
	const query = `SELECT id, name, stock, created_at, updated_at FROM products WHERE id = $1 FOR UPDATE`

	var p domain.Product
	err := r.queryRow(ctx, query, productID).
		Scan(&p.ID, &p.Name, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *StockRepository) InsertMovement(ctx context.Context, movement domain.StockMovement) error {
	const stmt = `
INSERT INTO stock_movements (id, product_id, product_name, movement_type, quantity, reason, previous_stock, current_stock, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		movement.ID,
		movement.ProductID,
		movement.ProductName,
		string(movement.Type),
		movement.Quantity,
		string(movement.Reason),
		movement.PreviousStock,
		movement.CurrentStock,
		movement.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

func (r *StockRepository) SetProductStock(ctx context.Context, productID string, stock int) error {
	const stmt = `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, productID, stock)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// ListMovements returns movements in chain order. An empty productID lists
// the whole ledger.
func (r *StockRepository) ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error) {
	const base = `
SELECT id, product_id, product_name, movement_type, quantity, reason, previous_stock, current_stock, created_at
FROM stock_movements`

	var (
		rows pgx.Rows
		err  error
	)
	if productID == "" {
		rows, err = r.query(ctx, base+` ORDER BY created_at ASC, id ASC`)
	} else {
		rows, err = r.query(ctx, base+` WHERE product_id = $1 ORDER BY created_at ASC, id ASC`, productID)
	}
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		var movementType, reason string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &movementType, &m.Quantity, &reason, &m.PreviousStock, &m.CurrentStock, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = domain.MovementType(movementType)
		m.Reason = domain.MovementReason(reason)
		movements = append(movements, m)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate stock movements: %w", rows.Err())
	}
	return movements, nil
}

func (r *StockRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *StockRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *StockRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
