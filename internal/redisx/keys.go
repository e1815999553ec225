package redisx

import "time"

const (
	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Latest observed order status: market:order:{order_id}:status
	KeyOrderStatus = "market:order:%d:status"
)

var (
	TTLDedup       = 48 * time.Hour
	TTLStatusCache = 24 * time.Hour
)
