package pipeline

import (
	"context"
	"time"

	"fraud-velocity-lab/internal/domain"
	"fraud-velocity-lab/internal/storage"
)

// StoreSource adapts a storage.OrderStore into an OrderSource,
// limiting reads to a recent lookback window so the relational modes
// do not drag a merchant's full history into memory.
type StoreSource struct {
	store    storage.OrderStore
	lookback time.Duration
	now      func() time.Time
}

// NewStoreSource creates a source reading orders newer than
// now-lookback from the given store.
func NewStoreSource(store storage.OrderStore, lookback time.Duration) *StoreSource {
	return &StoreSource{
		store:    store,
		lookback: lookback,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic reads.
func (s *StoreSource) WithClock(now func() time.Time) *StoreSource {
	s.now = now
	return s
}

// LoadOrders reads the lookback-bounded order row-set.
func (s *StoreSource) LoadOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.store.GetSince(ctx, s.now().Add(-s.lookback))
}

var _ OrderSource = (*StoreSource)(nil)
