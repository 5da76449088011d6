package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fraud-velocity-lab/internal/domain"
	"fraud-velocity-lab/internal/storage"
)

// OrderStore implements storage.OrderStore using PostgreSQL.
//
// Orders and their payments live in separate base tables; reads go
// through the v_orders_enriched view, which joins each order with the
// sum of its payments. The view keeps the payment pre-aggregation in
// SQL so the engine only ever sees the flat order row contract.
type OrderStore struct {
	pool *Pool
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore(pool *Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OrderStore = (*OrderStore)(nil)

// EnsureViews creates or replaces the auxiliary views:
//   - v_order_payment_total: SUM(payment_value) per order
//   - v_orders_enriched: orders joined with their payment total
//
// Idempotent; called once at startup before any read.
func (s *OrderStore) EnsureViews(ctx context.Context) error {
	const createPaymentTotal = `
		CREATE OR REPLACE VIEW v_order_payment_total AS
		SELECT
			op.order_id,
			SUM(op.payment_value) AS payment_total
		FROM order_payments op
		GROUP BY op.order_id
	`

	const createOrdersEnriched = `
		CREATE OR REPLACE VIEW v_orders_enriched AS
		SELECT
			o.order_id,
			o.customer_unique_id,
			o.order_purchase_timestamp,
			pt.payment_total
		FROM orders o
		INNER JOIN v_order_payment_total pt USING (order_id)
	`

	if _, err := s.pool.Exec(ctx, createPaymentTotal); err != nil {
		return fmt.Errorf("create v_order_payment_total: %w", err)
	}
	if _, err := s.pool.Exec(ctx, createOrdersEnriched); err != nil {
		return fmt.Errorf("create v_orders_enriched: %w", err)
	}
	return nil
}

// Insert adds a new order with a single payment row carrying its full
// paid amount. Returns ErrDuplicateKey if order_id exists.
func (s *OrderStore) Insert(ctx context.Context, o *domain.Order) error {
	if o == nil || o.OrderID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertOrderTx(ctx, tx, o); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InsertBulk adds multiple orders atomically. Fails the entire batch on
// any duplicate.
func (s *OrderStore) InsertBulk(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range orders {
		if o == nil || o.OrderID == "" {
			return storage.ErrInvalidInput
		}
		if err := insertOrderTx(ctx, tx, o); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertOrderTx(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	const insertOrder = `
		INSERT INTO orders (order_id, customer_unique_id, order_purchase_timestamp)
		VALUES ($1, $2, $3)
	`
	const insertPayment = `
		INSERT INTO order_payments (order_id, payment_sequential, payment_value)
		VALUES ($1, 1, $2)
	`

	if _, err := tx.Exec(ctx, insertOrder, o.OrderID, o.CustomerID, o.PurchaseTimestamp); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert order: %w", err)
	}
	if _, err := tx.Exec(ctx, insertPayment, o.OrderID, o.PaidAmount); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert order payment: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	const query = `
		SELECT order_id, customer_unique_id, order_purchase_timestamp, payment_total
		FROM v_orders_enriched
		WHERE order_id = $1
	`

	row := s.pool.QueryRow(ctx, query, orderID)

	var o domain.Order
	if err := row.Scan(&o.OrderID, &o.CustomerID, &o.PurchaseTimestamp, &o.PaidAmount); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return &o, nil
}

// GetByCustomerID retrieves all orders for a customer, ordered by
// purchase_timestamp ASC, order_id ASC.
func (s *OrderStore) GetByCustomerID(ctx context.Context, customerID string) ([]*domain.Order, error) {
	const query = `
		SELECT order_id, customer_unique_id, order_purchase_timestamp, payment_total
		FROM v_orders_enriched
		WHERE customer_unique_id = $1
		ORDER BY order_purchase_timestamp ASC, order_id ASC
	`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("query orders by customer: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// GetSince retrieves all orders with purchase_timestamp >= since,
// ordered by purchase_timestamp ASC, order_id ASC.
func (s *OrderStore) GetSince(ctx context.Context, since time.Time) ([]*domain.Order, error) {
	const query = `
		SELECT order_id, customer_unique_id, order_purchase_timestamp, payment_total
		FROM v_orders_enriched
		WHERE order_purchase_timestamp >= $1
		ORDER BY order_purchase_timestamp ASC, order_id ASC
	`

	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query orders since: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]*domain.Order, error) {
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
