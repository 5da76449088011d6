package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one purchase joined with its total paid amount.
// Corresponds to a row of the v_orders_enriched view.
type Order struct {
	OrderID           string          // unique order identifier
	CustomerID        string          // opaque customer identifier, shared across orders
	PurchaseTimestamp time.Time       // instant of purchase
	PaidAmount        decimal.Decimal // total paid across all payments, >= 0
}

// Valid reports whether the order satisfies the row contract.
// Invalid rows are skipped (and counted) by the feature engine,
// never rejected wholesale.
func (o *Order) Valid() bool {
	if o == nil {
		return false
	}
	if o.OrderID == "" || o.CustomerID == "" {
		return false
	}
	if o.PurchaseTimestamp.IsZero() {
		return false
	}
	return !o.PaidAmount.IsNegative()
}
