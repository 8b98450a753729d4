package domain

import "time"

// MovementType tells whether a movement adds to or removes from stock.
type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

func (t MovementType) Known() bool {
	return t == MovementIn || t == MovementOut
}

// MovementReason records why stock changed.
type MovementReason string

const (
	ReasonPurchase     MovementReason = "purchase"
	ReasonSale         MovementReason = "sale"
	ReasonReturn       MovementReason = "return"
	ReasonCancellation MovementReason = "cancellation"
	ReasonAdjustment   MovementReason = "adjustment"
)

func (r MovementReason) Known() bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonReturn, ReasonCancellation, ReasonAdjustment:
		return true
	}
	return false
}

// StockMovement is one immutable ledger entry. Movements are never edited or
// removed; corrections are made via a new adjustment movement.
//
// Ordering a product's movements by CreatedAt, each PreviousStock equals the
// prior movement's CurrentStock.
type StockMovement struct {
	ID            string
	ProductID     string
	ProductName   string
	Type          MovementType
	Quantity      int
	Reason        MovementReason
	PreviousStock int
	CurrentStock  int
	CreatedAt     time.Time
}
