package redisx

import "time"

const (
	// Cache of the full order JSON served by GET /api/orders/{id}:
	// order:%d -> Order
	KeyOrder = "order:%d"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
