package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-velocity-lab/internal/domain"
	"fraud-velocity-lab/internal/storage"
)

var baseTS = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newOrder(id, customer string, ts time.Time, amount string) *domain.Order {
	return &domain.Order{
		OrderID:           id,
		CustomerID:        customer,
		PurchaseTimestamp: ts,
		PaidAmount:        decimal.RequireFromString(amount),
	}
}

func TestOrderStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newOrder("o1", "c1", baseTS, "123.45")))

	got, err := store.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CustomerID)
	assert.True(t, got.PurchaseTimestamp.Equal(baseTS))
	// The view sums payment rows back into the paid amount.
	assert.True(t, got.PaidAmount.Equal(decimal.RequireFromString("123.45")),
		"expected paid amount 123.45, got %s", got.PaidAmount)
}

func TestOrderStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newOrder("o1", "c1", baseTS, "10.00")))

	err := store.Insert(ctx, newOrder("o1", "c2", baseTS, "20.00"))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestOrderStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOrderStore_InsertBulkAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newOrder("o1", "c1", baseTS, "10.00")))

	// Second batch collides with the existing row and must roll back
	// entirely.
	err := store.InsertBulk(ctx, []*domain.Order{
		newOrder("o2", "c1", baseTS, "10.00"),
		newOrder("o1", "c1", baseTS, "10.00"),
	})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "o2")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOrderStore_GetSince(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Order{
		newOrder("old", "c1", baseTS.Add(-72*time.Hour), "10.00"),
		newOrder("boundary", "c1", baseTS, "20.00"),
		newOrder("new", "c2", baseTS.Add(time.Hour), "30.00"),
	}))

	orders, err := store.GetSince(ctx, baseTS)
	require.NoError(t, err)

	require.Len(t, orders, 2, "cutoff is inclusive")
	assert.Equal(t, "boundary", orders[0].OrderID)
	assert.Equal(t, "new", orders[1].OrderID)
}

func TestOrderStore_GetByCustomerIDOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	// o2 and o3 share a timestamp; order id breaks the tie.
	require.NoError(t, store.InsertBulk(ctx, []*domain.Order{
		newOrder("o3", "c1", baseTS.Add(time.Hour), "10.00"),
		newOrder("o2", "c1", baseTS.Add(time.Hour), "10.00"),
		newOrder("o1", "c1", baseTS, "10.00"),
	}))

	orders, err := store.GetByCustomerID(ctx, "c1")
	require.NoError(t, err)

	require.Len(t, orders, 3)
	for i, want := range []string{"o1", "o2", "o3"} {
		assert.Equal(t, want, orders[i].OrderID, "position %d", i)
	}
}

func TestOrderStore_ViewAggregatesMultiplePayments(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewOrderStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newOrder("o1", "c1", baseTS, "100.00")))

	// A second payment installment for the same order; the view must
	// surface the summed total.
	_, err := pool.Exec(ctx, `
		INSERT INTO order_payments (order_id, payment_sequential, payment_value)
		VALUES ('o1', 2, 50.00)
	`)
	require.NoError(t, err)

	got, err := store.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(decimal.RequireFromString("150.00")),
		"expected summed paid amount 150.00, got %s", got.PaidAmount)
}
