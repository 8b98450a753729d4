package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tanihub/agristore-api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

const orderColumns = `
id, status, previous_status,
subtotal::text, discount::text, total_price::text, voucher_code,
cancel_reason, cancel_requested_at,
return_reason, return_requested_at, return_media,
created_at, updated_at`

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, false)
}

// GetOrderForUpdate loads the order and its items holding a row lock, so any
// other transition on the same order waits until this transaction ends.
func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return r.getOrder(ctx, orderID, true)
}

func (r *OrderRepository) getOrder(ctx context.Context, orderID string, forUpdate bool) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		o                              domain.Order
		status                         string
		subtotal, discount, totalPrice string
		previousStatus, voucherCode    *string
		cancelReason, returnReason     *string
		cancelRequestedAt              *time.Time
		returnRequestedAt              *time.Time
		returnMedia                    []string
	)

	err := r.queryRow(ctx, query, orderID).Scan(
		&o.ID, &status, &previousStatus,
		&subtotal, &discount, &totalPrice, &voucherCode,
		&cancelReason, &cancelRequestedAt,
		&returnReason, &returnRequestedAt, &returnMedia,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	o.Status = domain.OrderStatus(status)
	if previousStatus != nil {
		o.PreviousStatus = domain.OrderStatus(*previousStatus)
	}
	if voucherCode != nil {
		o.VoucherCode = *voucherCode
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return domain.Order{}, fmt.Errorf("parse subtotal: %w", err)
	}
	if o.Discount, err = decimal.NewFromString(discount); err != nil {
		return domain.Order{}, fmt.Errorf("parse discount: %w", err)
	}
	if o.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return domain.Order{}, fmt.Errorf("parse total price: %w", err)
	}
	if cancelReason != nil && cancelRequestedAt != nil {
		o.CancelRequest = &domain.CancelRequest{Reason: *cancelReason, RequestedAt: *cancelRequestedAt}
	}
	if returnReason != nil && returnRequestedAt != nil {
		o.ReturnRequest = &domain.ReturnRequest{Reason: *returnReason, Media: returnMedia, RequestedAt: *returnRequestedAt}
	}

	items, err := r.getItems(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) getItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT product_id, product_name, unit_price::text, quantity
FROM order_items
WHERE order_id = $1
ORDER BY created_at ASC, id ASC`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var unitPrice string
		if err := rows.Scan(&item.ProductID, &item.ProductName, &unitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parse unit price: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate order items: %w", rows.Err())
	}
	return items, nil
}

// UpdateOrder persists the order's mutable lifecycle fields. The write is
// conditional on the status the caller read; zero rows affected means a
// concurrent transition won and the caller must reload.
func (r *OrderRepository) UpdateOrder(ctx context.Context, order domain.Order, expected domain.OrderStatus) error {
	const stmt = `
UPDATE orders
SET status = $2,
    previous_status = $3,
    cancel_reason = $4,
    cancel_requested_at = $5,
    return_reason = $6,
    return_requested_at = $7,
    return_media = $8,
    updated_at = $9
WHERE id = $1 AND status = $10`

	var previousStatus *string
	if order.PreviousStatus != "" {
		s := string(order.PreviousStatus)
		previousStatus = &s
	}
	var cancelReason *string
	var cancelRequestedAt *time.Time
	if order.CancelRequest != nil {
		cancelReason = &order.CancelRequest.Reason
		cancelRequestedAt = &order.CancelRequest.RequestedAt
	}
	var returnReason *string
	var returnRequestedAt *time.Time
	var returnMedia []string
	if order.ReturnRequest != nil {
		returnReason = &order.ReturnRequest.Reason
		returnRequestedAt = &order.ReturnRequest.RequestedAt
		returnMedia = order.ReturnRequest.Media
	}

	tag, err := r.exec(ctx, stmt,
		order.ID,
		string(order.Status),
		previousStatus,
		cancelReason,
		cancelRequestedAt,
		returnReason,
		returnRequestedAt,
		returnMedia,
		order.UpdatedAt,
		string(expected),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleOrder
	}
	return nil
}

// DecrementVoucherUses releases one use of a voucher when a discounted order
// is reversed. A voucher already at zero uses is left unchanged.
func (r *OrderRepository) DecrementVoucherUses(ctx context.Context, code string) error {
	const stmt = `UPDATE vouchers SET current_uses = current_uses - 1 WHERE code = $1 AND current_uses > 0`

	tag, err := r.exec(ctx, stmt, code)
	if err != nil {
		return fmt.Errorf("decrement voucher uses: %w", err)
	}
	if tag.RowsAffected() == 0 {
		const existsQuery = `SELECT EXISTS (SELECT 1 FROM vouchers WHERE code = $1)`
		var exists bool
		if err := r.queryRow(ctx, existsQuery, code).Scan(&exists); err != nil {
			return fmt.Errorf("check voucher: %w", err)
		}
		if !exists {
			return domain.ErrVoucherNotFound
		}
	}
	return nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
