package orders

import "context"

// Store is the persistence boundary. Implementations must serialize
// concurrent UpdateOrderStatus calls for the same order id; the store does
// not validate transition legality, that is layered on top by Lifecycle.
//
// Lookups return *NotFoundError for unknown ids. CreateOrder assumes
// pre-validated input (the REST layer owns schema validation) and assigns
// ID, StatusPending and CreatedAt.
type Store interface {
	CreateOrder(ctx context.Context, in NewOrderInput) (Order, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status Status) (Order, error)
}
