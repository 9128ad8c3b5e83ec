package hub

import "github.com/nightcaplab/cocktail-courier/internal/orders"

// Wire contract of the tracking channel. The shapes are fixed: clients send
// register frames, the hub only ever sends orderUpdate frames.

const (
	msgTypeRegister    = "register"
	msgTypeOrderUpdate = "orderUpdate"
)

type registerMsg struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	OrderID int64  `json:"orderId"`
}

type orderUpdateMsg struct {
	Type  string       `json:"type"`
	Order orders.Order `json:"order"`
}
