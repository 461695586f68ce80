package market

import (
	"encoding/json"
	"time"
)

const (
	EventAlertPending = "InventoryAlertPending"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "market-api"
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type AlertPendingPayload struct {
	AlertID   string `json:"alert_id"`
	ShopID    string `json:"shop_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
