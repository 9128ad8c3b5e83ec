package orders

import "time"

// OrderItem is a line on the customer's order. Items arrive fully priced
// from the client cart and are immutable once the order is accepted.
type OrderItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	BarName  string  `json:"barName"`
	ImageURL string  `json:"imageUrl"`
	Quantity int     `json:"quantity"`
}

// Order is the central entity. Monetary values are decimal currency units;
// total = subtotal + deliveryFee (tax, if any, is folded into subtotal by
// the caller before persistence). Status is mutable only through the
// Lifecycle manager; everything else is immutable after creation.
type Order struct {
	ID              int64       `json:"id"`
	UserID          string      `json:"userId"`
	Items           []OrderItem `json:"items"`
	Subtotal        float64     `json:"subtotal"`
	DeliveryFee     float64     `json:"deliveryFee"`
	Total           float64     `json:"total"`
	Status          Status      `json:"status"`
	DeliveryAddress string      `json:"deliveryAddress"`
	DeliveryTime    time.Time   `json:"deliveryTime"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// NewOrderInput is what the store receives from the REST layer. The REST
// layer owns validation; the store assigns ID, Status and CreatedAt.
type NewOrderInput struct {
	UserID          string
	Items           []OrderItem
	Subtotal        float64
	DeliveryFee     float64
	Total           float64
	DeliveryAddress string
	DeliveryTime    time.Time
}
