package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fraud-velocity-lab/internal/domain"
	"fraud-velocity-lab/internal/storage"
)

// OrderStore implements storage.OrderStore using ClickHouse.
//
// The warehouse schema is denormalized: each row already carries the
// order's payment total, so no join view is needed on this backend.
// MergeTree does not enforce uniqueness, so duplicates are detected
// with explicit existence checks before insert.
type OrderStore struct {
	conn *Conn
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(conn *Conn) *OrderStore {
	return &OrderStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
func (s *OrderStore) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil || o.OrderID == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertBulk(ctx, []*domain.Order{o})
}

// InsertBulk adds multiple orders. Fails the entire batch on any
// duplicate, including intra-batch duplicates.
func (s *OrderStore) InsertBulk(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if o == nil || o.OrderID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[o.OrderID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[o.OrderID] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, o := range orders {
		exists, err := s.exists(ctx, o.OrderID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO orders_enriched (
			order_id, customer_unique_id, order_purchase_timestamp, payment_total
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range orders {
		err = batch.Append(
			o.OrderID, o.CustomerID, o.PurchaseTimestamp, o.PaidAmount,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `
		SELECT order_id, customer_unique_id, order_purchase_timestamp, payment_total
		FROM orders_enriched
		WHERE order_id = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, storage.ErrNotFound
	}
	return orders[0], nil
}

// GetByCustomerID retrieves all orders for a customer, ordered by
// purchase_timestamp ASC, order_id ASC.
func (s *OrderStore) GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Order, error) {
	query := `
		SELECT order_id, customer_unique_id, order_purchase_timestamp, payment_total
		FROM orders_enriched
		WHERE customer_unique_id = ?
		ORDER BY order_purchase_timestamp ASC, order_id ASC
	`

	rows, err := s.conn.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// GetSince retrieves all orders with purchase_timestamp >= since,
// ordered by purchase_timestamp ASC, order_id ASC.
func (s *OrderStore) GetSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	query := `
		SELECT order_id, customer_unique_id, order_purchase_timestamp, payment_total
		FROM orders_enriched
		WHERE order_purchase_timestamp >= ?
		ORDER BY order_purchase_timestamp ASC, order_id ASC
	`

	rows, err := s.conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query orders since: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// exists checks whether an order_id is already stored.
func (s *OrderStore) exists(ctx context.Context, orderID string) (bool, error) {
	query := `SELECT count() FROM orders_enriched WHERE order_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, orderID).Scan(&count); err != nil {
		return false, fmt.Errorf("count orders: %w", err)
	}
	return count > 0, nil
}

func scanOrders(rows driver.Rows) ([]*domain.Order, error) {
	var result []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderID, &o.CustomerID, &o.PurchaseTimestamp, &o.PaidAmount); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		result = append(result, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return result, nil
}
