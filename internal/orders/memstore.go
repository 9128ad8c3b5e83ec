package orders

import (
	"context"
	"sync"
	"time"
)

// MemStore is the map-backed Store used by default and in tests. Orders are
// retained forever (history/audit, no expiry). The single mutex serializes
// all mutations, which also gives per-order update ordering.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Order
	byUser map[string][]int64 // insertion order per user
}

func NewMemStore() *MemStore {
	return &MemStore{
		nextID: 1,
		byID:   make(map[int64]Order),
		byUser: make(map[string][]int64),
	}
}

func (s *MemStore) CreateOrder(_ context.Context, in NewOrderInput) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := Order{
		ID:              s.nextID,
		UserID:          in.UserID,
		Items:           append([]OrderItem(nil), in.Items...),
		Subtotal:        in.Subtotal,
		DeliveryFee:     in.DeliveryFee,
		Total:           in.Total,
		Status:          StatusPending,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryTime:    in.DeliveryTime,
		CreatedAt:       time.Now().UTC(),
	}
	s.nextID++
	s.byID[o.ID] = o
	s.byUser[o.UserID] = append(s.byUser[o.UserID], o.ID)
	return copyOrder(o), nil
}

func (s *MemStore) GetOrder(_ context.Context, id int64) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byID[id]
	if !ok {
		return Order{}, &NotFoundError{OrderID: id}
	}
	return copyOrder(o), nil
}

func (s *MemStore) GetOrdersByUser(_ context.Context, userID string) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byUser[userID]
	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyOrder(s.byID[id]))
	}
	return out, nil
}

func (s *MemStore) UpdateOrderStatus(_ context.Context, id int64, status Status) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return Order{}, &NotFoundError{OrderID: id}
	}
	o.Status = status
	s.byID[id] = o
	return copyOrder(o), nil
}

// copyOrder detaches the items slice so callers cannot mutate stored state.
func copyOrder(o Order) Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}
