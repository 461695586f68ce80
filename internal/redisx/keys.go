package redisx

import "time"

const (
	// Cache order tersaji: order:{order_id} -> JSON order lengkap
	KeyOrderCache = "order:%s"

	// Dedup event processing: dedup:{service}:{id}
	KeyDedup = "dedup:%s:%s"

	// Cooldown alert low-stock: alert:cooldown:{shop_id}:{product_id}
	KeyAlertCooldown = "alert:cooldown:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
