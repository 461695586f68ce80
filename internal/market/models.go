package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batas stok rendah: sisa <= 3 memicu alert (lihat engine.go).
const LowStockThreshold = 3

// Cooldown dedup alert per (shop, product).
const AlertCooldown = 3600 * time.Second

type Product struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shop_id"`
	CategoryID  string          `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Lat         *float64        `json:"lat,omitempty"`
	Lng         *float64        `json:"lng,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Order struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	ShopID      string          `json:"shop_id"`
	Status      Status          `json:"status"` // lihat status.go
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderItem     `json:"items,omitempty"`
}

// OrderItem immutable setelah dibuat; UnitPrice = snapshot harga saat order.
type OrderItem struct {
	ID         string          `json:"id"`
	OrderID    string          `json:"order_id"`
	ProductID  string          `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Position   int             `json:"position"` // urutan item dari caller
}

type InventoryAlert struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shop_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product"`
	Quantity    int       `json:"quantity"` // sisa stok saat trigger
	TriggeredAt time.Time `json:"triggered_at"`
	Resolved    bool      `json:"resolved"`
}

// PendingAlert = baris outbox; ditulis dalam transaksi order,
// dipublish & di-dedup oleh pipeline alert setelah commit.
type PendingAlert struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shop_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}
