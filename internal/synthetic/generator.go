// Package synthetic generates seeded demo order data so the pipeline
// can run without a database.
package synthetic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"fraud-velocity-lab/internal/domain"
)

// Generator produces a deterministic synthetic order history: each
// customer places between 1 and 11 orders spread uniformly over the
// configured day span, with amounts uniform in [20, 800].
type Generator struct {
	customers int
	spanDays  int
	seed      int64
	now       func() time.Time
}

// NewGenerator creates a generator for the given population and span.
// The same seed always yields the same orders relative to the clock.
func NewGenerator(customers, spanDays int, seed int64) *Generator {
	return &Generator{
		customers: customers,
		spanDays:  spanDays,
		seed:      seed,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the synthetic order set anchored at the generator's
// clock.
func (g *Generator) Generate() []*domain.Order {
	rng := rand.New(rand.NewSource(g.seed))
	now := g.now()

	var orders []*domain.Order
	orderSeq := 1
	for i := 0; i < g.customers; i++ {
		customerID := fmt.Sprintf("C%04d", i)
		n := 1 + rng.Intn(11)
		for j := 0; j < n; j++ {
			deltaDays := rng.Intn(g.spanDays)
			deltaSecs := rng.Intn(24 * 3600)
			ts := now.AddDate(0, 0, -deltaDays).Add(-time.Duration(deltaSecs) * time.Second)

			cents := 2000 + rng.Intn(78001) // 20.00 .. 800.00
			amount := decimal.New(int64(cents), -2)

			orders = append(orders, &domain.Order{
				OrderID:           fmt.Sprintf("O%06d", orderSeq),
				CustomerID:        customerID,
				PurchaseTimestamp: ts,
				PaidAmount:        amount,
			})
			orderSeq++
		}
	}

	return orders
}

// LoadOrders satisfies the pipeline's order source contract.
func (g *Generator) LoadOrders(_ context.Context) ([]*domain.Order, error) {
	return g.Generate(), nil
}
