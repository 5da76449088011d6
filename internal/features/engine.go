// Package features computes per-customer velocity features from a
// materialized order row-set: rolling-window counts and value sums,
// average tickets, and the mean interpurchase interval.
package features

import (
	"sort"
	"time"

	"fraud-velocity-lab/internal/domain"
)

// Result is the output of one engine pass.
type Result struct {
	// Records holds one feature record per distinct customer present
	// in the valid input, sorted by customer ID.
	Records []domain.CustomerFeatureRecord

	// RefInstant is the instant all windows were anchored at.
	RefInstant time.Time

	// SkippedRows counts malformed input rows that were rejected.
	// Surfaced so the caller can judge whether the skip rate is
	// acceptable; a minority of bad rows never aborts the run.
	SkippedRows int
}

// Compute derives one CustomerFeatureRecord per distinct customer in
// orders, anchored at refInstant. A zero refInstant means "use the
// maximum purchase timestamp observed in the valid input".
//
// Malformed rows (missing ids, negative amount, zero timestamp) are
// skipped and counted. Empty input yields an empty result, not an
// error. Orders dated after the reference instant are tolerated: they
// fall outside every window but still participate in interpurchase
// ordering.
func Compute(orders []*domain.Order, refInstant time.Time) Result {
	valid := make([]*domain.Order, 0, len(orders))
	skipped := 0
	for _, o := range orders {
		if !o.Valid() {
			skipped++
			continue
		}
		valid = append(valid, o)
	}

	if refInstant.IsZero() {
		for _, o := range valid {
			if o.PurchaseTimestamp.After(refInstant) {
				refInstant = o.PurchaseTimestamp
			}
		}
	}

	byCustomer := make(map[string][]*domain.Order)
	for _, o := range valid {
		byCustomer[o.CustomerID] = append(byCustomer[o.CustomerID], o)
	}

	customerIDs := make([]string, 0, len(byCustomer))
	for id := range byCustomer {
		customerIDs = append(customerIDs, id)
	}
	sort.Strings(customerIDs)

	records := make([]domain.CustomerFeatureRecord, 0, len(customerIDs))
	for _, id := range customerIDs {
		customerOrders := byCustomer[id]
		sortChronological(customerOrders)
		records = append(records, computeCustomerRecord(id, customerOrders, refInstant))
	}

	return Result{
		Records:     records,
		RefInstant:  refInstant,
		SkippedRows: skipped,
	}
}
