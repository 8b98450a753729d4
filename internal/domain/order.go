package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed vocabulary for an order's lifecycle state.
type OrderStatus string

const (
	StatusProcessing      OrderStatus = "processing"
	StatusShipped         OrderStatus = "shipped"
	StatusArrived         OrderStatus = "arrived"
	StatusCompleted       OrderStatus = "completed"
	StatusCancelRequested OrderStatus = "cancel_requested"
	StatusCancelled       OrderStatus = "cancelled"
	StatusReturnRequested OrderStatus = "return_requested"
	StatusReturnAccepted  OrderStatus = "return_accepted"
	StatusReturnRejected  OrderStatus = "return_rejected"
)

// OrderStatuses lists every recognized status.
var OrderStatuses = []OrderStatus{
	StatusProcessing,
	StatusShipped,
	StatusArrived,
	StatusCompleted,
	StatusCancelRequested,
	StatusCancelled,
	StatusReturnRequested,
	StatusReturnAccepted,
	StatusReturnRejected,
}

// ParseOrderStatus maps a wire string onto the closed status set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Known() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// DeliveryFlow reports whether the status belongs to the forward delivery
// pipeline. Requested and terminal states are excluded: they are reachable
// only through the approval workflow, which carries the restock and voucher
// effects a direct status write would skip.
func (s OrderStatus) DeliveryFlow() bool {
	switch s {
	case StatusShipped, StatusArrived, StatusCompleted:
		return true
	}
	return false
}

func (s OrderStatus) Known() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Actor identifies who is driving a transition.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
)

// OrderItem is one line of an order, immutable after creation.
type OrderItem struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// CancelRequest is a customer's pending cancellation request.
type CancelRequest struct {
	Reason      string
	RequestedAt time.Time
}

// ReturnRequest is a customer's pending return request with attachments.
type ReturnRequest struct {
	Reason      string
	Media       []string
	RequestedAt time.Time
}

// Order is a customer purchase with a lifecycle status. It is created at
// checkout, mutated only through Transition, and never deleted.
type Order struct {
	ID     string
	Status OrderStatus
	// PreviousStatus is captured when the order enters a pending-approval
	// state and restored when a cancellation is rejected.
	PreviousStatus OrderStatus
	Items          []OrderItem
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	TotalPrice     decimal.Decimal
	VoucherCode    string
	CancelRequest  *CancelRequest
	ReturnRequest  *ReturnRequest
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
