package domain

import "github.com/shopspring/decimal"

// Voucher is a discount code. Only CurrentUses is mutated here: it is
// decremented exactly once when a discounted order is reversed.
type Voucher struct {
	Code        string
	Discount    decimal.Decimal
	CurrentUses int
}
