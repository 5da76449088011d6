package domain

import "github.com/shopspring/decimal"

// CustomerFeatureRecord holds per-customer velocity features for one
// pipeline run, anchored at a single reference instant. One record is
// produced per distinct customer present in the input.
type CustomerFeatureRecord struct {
	CustomerID string

	// Rolling-window counts over [ref-W, ref], boundaries closed on
	// both ends. The 1d order set is a subset of the 7d set, which is
	// a subset of the 30d set.
	Orders1d  int
	Orders7d  int
	Orders30d int

	// Paid-amount sums over the same windows.
	Value1d  decimal.Decimal
	Value7d  decimal.Decimal
	Value30d decimal.Decimal

	// Window value / window count; zero when the count is zero.
	AvgTicket7d  decimal.Decimal
	AvgTicket30d decimal.Decimal

	// Mean hours between consecutive orders, nil for customers with
	// fewer than two orders. Nil is deliberate: zero would falsely
	// signal instant repurchase.
	InterpurchaseHours *float64

	// Set by the scorer.
	FlagHighValue7d     bool
	FlagHighVelocity24h bool
	VelocityScore       int
}
