package domain

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrVoucherNotFound   = errors.New("voucher not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("actor not allowed for this transition")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStaleOrder        = errors.New("order modified concurrently")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidDecision   = errors.New("unknown decision")
	ErrInvalidMovement   = errors.New("unknown movement type or reason")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrReasonRequired    = errors.New("reason required")
	ErrInvalidID         = errors.New("invalid id")
)
