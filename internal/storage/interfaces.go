package storage

import (
	"context"
	"time"

	"fraud-velocity-lab/internal/domain"
)

// OrderStore materializes the order row contract consumed by the
// feature engine. Implementations exist for memory, Postgres and
// ClickHouse; the engine depends only on the returned row-set, never
// on how it was produced.
type OrderStore interface {
	// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
	Insert(ctx context.Context, o *domain.Order) error

	// InsertBulk adds multiple orders atomically. Fails the entire
	// batch on any duplicate.
	InsertBulk(ctx context.Context, orders []*domain.Order) error

	// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// GetByCustomerID retrieves all orders for a customer, ordered by
	// purchase_timestamp ASC, order_id ASC.
	GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Order, error)

	// GetSince retrieves all orders with purchase_timestamp >= since
	// (inclusive), ordered by purchase_timestamp ASC, order_id ASC.
	GetSince(ctx context.Context, since time.Time) ([]*domain.Order, error)
}
