package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fraud-velocity-lab/internal/domain"
	"fraud-velocity-lab/internal/storage"
)

// OrderStore is an in-memory implementation of storage.OrderStore.
// It backs demo mode and unit tests.
type OrderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Order // keyed by order_id
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		data: make(map[string]*domain.Order),
	}
}

var _ storage.OrderStore = (*OrderStore)(nil)

// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
func (s *OrderStore) Insert(_ context.Context, o *domain.Order) error {
	if o == nil || o.OrderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[o.OrderID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *o
	s.data[o.OrderID] = &cp
	return nil
}

// InsertBulk adds multiple orders atomically. Fails the entire batch on
// any duplicate, including intra-batch duplicates.
func (s *OrderStore) InsertBulk(_ context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		if o == nil || o.OrderID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[o.OrderID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[o.OrderID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[o.OrderID] = struct{}{}
	}

	for _, o := range orders {
		cp := *o
		s.data[o.OrderID] = &cp
	}
	return nil
}

// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.data[orderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *o
	return &cp, nil
}

// GetByCustomerID retrieves all orders for a customer, ordered by
// purchase_timestamp ASC, order_id ASC.
func (s *OrderStore) GetByCustomerID(_ context.Context, customerID string) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.data {
		if o.CustomerID == customerID {
			cp := *o
			result = append(result, &cp)
		}
	}

	sortOrders(result)
	return result, nil
}

// GetSince retrieves all orders with purchase_timestamp >= since,
// ordered by purchase_timestamp ASC, order_id ASC.
func (s *OrderStore) GetSince(_ context.Context, since time.Time) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Order
	for _, o := range s.data {
		if !o.PurchaseTimestamp.Before(since) {
			cp := *o
			result = append(result, &cp)
		}
	}

	sortOrders(result)
	return result, nil
}

func sortOrders(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].PurchaseTimestamp.Equal(orders[j].PurchaseTimestamp) {
			return orders[i].PurchaseTimestamp.Before(orders[j].PurchaseTimestamp)
		}
		return orders[i].OrderID < orders[j].OrderID
	})
}
