package market

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store menjalankan satu unit kerja atomik terhadap inventory.
// Implementasi pgx ada di internal/postgres; in-memory di internal/memory.
type Store interface {
	// WithinTx: commit kalau fn nil, rollback total kalau error.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	// LockProduct ambil lock eksklusif row produk; baca state committed terakhir.
	LockProduct(ctx context.Context, productID string) (*Product, error)

	// DecrementQuantity: decrement relatif atomik, gagal kalau bakal negatif.
	// Return sisa quantity hasil baca ulang setelah decrement.
	DecrementQuantity(ctx context.Context, productID string, qty int) (int, error)

	InsertOrder(ctx context.Context, o *Order) error
	InsertOrderItem(ctx context.Context, it *OrderItem) error
	SetOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error
	InsertPendingAlert(ctx context.Context, a *PendingAlert) error
}

// Reader: akses baca untuk API surface (catalog, order, alert list).
type Reader interface {
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListProducts(ctx context.Context) ([]Product, error)
	SearchProducts(ctx context.Context, lat, lng, radiusKm float64, categoryID string) ([]Product, error)
	ListAlerts(ctx context.Context, shopID string) ([]InventoryAlert, error)
}
