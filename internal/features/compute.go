package features

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fraud-velocity-lab/internal/domain"
)

// Canonical rolling-window widths. The output column set is fixed to
// these three windows for downstream diffability.
const (
	WindowDay   = 24 * time.Hour
	WindowWeek  = 7 * 24 * time.Hour
	WindowMonth = 30 * 24 * time.Hour
)

// sortChronological orders a customer's orders by purchase timestamp
// ASC, order ID ASC. The order ID tie-break keeps repeated runs on
// identical input byte-identical even when timestamps collide.
func sortChronological(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].PurchaseTimestamp.Equal(orders[j].PurchaseTimestamp) {
			return orders[i].PurchaseTimestamp.Before(orders[j].PurchaseTimestamp)
		}
		return orders[i].OrderID < orders[j].OrderID
	})
}

// inWindow reports whether ts falls in [ref-width, ref]. Both
// boundaries are closed; every window shares this single predicate so
// the 1d/7d/30d order sets nest by construction.
func inWindow(ts, ref time.Time, width time.Duration) bool {
	if ts.After(ref) {
		return false
	}
	return !ts.Before(ref.Add(-width))
}

// windowStats counts orders and sums paid amounts over [ref-width, ref].
func windowStats(orders []*domain.Order, ref time.Time, width time.Duration) (int, decimal.Decimal) {
	count := 0
	sum := decimal.Zero
	for _, o := range orders {
		if inWindow(o.PurchaseTimestamp, ref, width) {
			count++
			sum = sum.Add(o.PaidAmount)
		}
	}
	return count, sum
}

// avgTicket divides a window value by its order count, returning zero
// (not an error) for an empty window.
func avgTicket(value decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromInt(int64(count)))
}

// interpurchaseHours returns the mean number of hours between
// consecutive orders, or nil for fewer than two orders. Orders must be
// pre-sorted chronologically. Nil is the sentinel for "undefined":
// zero would falsely signal instant repurchase.
func interpurchaseHours(orders []*domain.Order) *float64 {
	if len(orders) < 2 {
		return nil
	}

	sum := 0.0
	for i := 1; i < len(orders); i++ {
		gap := orders[i].PurchaseTimestamp.Sub(orders[i-1].PurchaseTimestamp)
		sum += gap.Hours()
	}

	mean := sum / float64(len(orders)-1)
	return &mean
}

// computeCustomerRecord builds the feature record for one customer
// from that customer's orders, anchored at ref. Orders must be
// pre-sorted chronologically.
func computeCustomerRecord(customerID string, orders []*domain.Order, ref time.Time) domain.CustomerFeatureRecord {
	orders1d, value1d := windowStats(orders, ref, WindowDay)
	orders7d, value7d := windowStats(orders, ref, WindowWeek)
	orders30d, value30d := windowStats(orders, ref, WindowMonth)

	return domain.CustomerFeatureRecord{
		CustomerID:         customerID,
		Orders1d:           orders1d,
		Orders7d:           orders7d,
		Orders30d:          orders30d,
		Value1d:            value1d,
		Value7d:            value7d,
		Value30d:           value30d,
		AvgTicket7d:        avgTicket(value7d, orders7d),
		AvgTicket30d:       avgTicket(value30d, orders30d),
		InterpurchaseHours: interpurchaseHours(orders),
	}
}
