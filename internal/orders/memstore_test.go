package orders

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func testInput(userID string) NewOrderInput {
	return NewOrderInput{
		UserID: userID,
		Items: []OrderItem{
			{ID: 1, Name: "Old Fashioned", Price: 14, BarName: "The Nightcap Lounge", ImageURL: "https://img.example/of.jpg", Quantity: 2},
		},
		Subtotal:        28,
		DeliveryFee:     4.99,
		Total:           32.99,
		DeliveryAddress: "12 Harbor St",
		DeliveryTime:    time.Now().Add(45 * time.Minute).UTC(),
	}
}

func TestMemStore_CreateGetRoundTrip(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	in := testInput("u-1")
	created, err := s.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("first id = %d, want 1", created.ID)
	}
	if created.Status != StatusPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("createdAt not set")
	}

	got, err := s.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, created) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, created)
	}

	// idempotent reads
	again, err := s.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if !reflect.DeepEqual(again, got) {
		t.Fatalf("repeated get differs")
	}
}

func TestMemStore_MonotonicIDs(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	var last int64
	for i := 0; i < 5; i++ {
		o, err := s.CreateOrder(ctx, testInput("u-1"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if o.ID <= last {
			t.Fatalf("id %d not greater than %d", o.ID, last)
		}
		last = o.ID
	}
}

func TestMemStore_GetOrdersByUser(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	a1, _ := s.CreateOrder(ctx, testInput("alice"))
	_, _ = s.CreateOrder(ctx, testInput("bob"))
	a2, _ := s.CreateOrder(ctx, testInput("alice"))

	list, err := s.GetOrdersByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != a1.ID || list[1].ID != a2.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	empty, err := s.GetOrdersByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("list nobody: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %+v", empty)
	}
}

func TestMemStore_NotFound(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	var nf *NotFoundError
	if _, err := s.GetOrder(ctx, 99); !errors.As(err, &nf) {
		t.Fatalf("get missing: %v", err)
	}
	if _, err := s.UpdateOrderStatus(ctx, 99, StatusConfirmed); !errors.As(err, &nf) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestMemStore_UpdateStatus(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	o, _ := s.CreateOrder(ctx, testInput("u-1"))

	upd, err := s.UpdateOrderStatus(ctx, o.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Status != StatusConfirmed {
		t.Fatalf("status = %s", upd.Status)
	}
	got, _ := s.GetOrder(ctx, o.ID)
	if got.Status != StatusConfirmed {
		t.Fatalf("persisted status = %s", got.Status)
	}
}

func TestMemStore_ReadIsolation(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	o, _ := s.CreateOrder(ctx, testInput("u-1"))

	got, _ := s.GetOrder(ctx, o.ID)
	got.Items[0].Quantity = 99

	fresh, _ := s.GetOrder(ctx, o.ID)
	if fresh.Items[0].Quantity != 2 {
		t.Fatalf("stored items mutated through a read copy")
	}
}
