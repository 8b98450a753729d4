package domain

import "time"

// Product carries the tracked inventory for one catalog item. Only Stock is
// mutated by this service, and only together with a ledger append.
type Product struct {
	ID        string
	Name      string
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
