package market

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Engine menjalankan order placement sebagai satu transaksi:
// lock produk -> validasi stok -> decrement -> snapshot harga -> item + total.
// Alert low-stock dicatat sebagai baris outbox di transaksi yang sama,
// dedup & materialisasi dilakukan pipeline alert setelah commit.
type Engine struct {
	store Store
	log   *zap.SugaredLogger
	now   func() time.Time
	newID func() string
}

func NewEngine(store Store, log *zap.SugaredLogger) *Engine {
	return &Engine{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// PlaceOrder: all-or-nothing. Gagal di item manapun -> tidak ada order,
// item, decrement, maupun baris alert yang tersisa.
func (e *Engine) PlaceOrder(ctx context.Context, customerID, shopID string, items []ItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
	}

	order := &Order{
		ID:          e.newID(),
		CustomerID:  customerID,
		ShopID:      shopID,
		Status:      StatusPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   e.now(),
	}

	err := e.store.WithinTx(ctx, func(tx Tx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		// Lock semua produk terurut naik by id. Urutan kanonik mencegah
		// deadlock dua order yang menyentuh produk sama dengan urutan kebalikan.
		locked := make(map[string]*Product, len(items))
		for _, id := range lockOrder(items) {
			p, err := tx.LockProduct(ctx, id)
			if err != nil {
				return err
			}
			if p.ShopID != shopID {
				return &WrongShopError{ProductID: p.ID, ShopID: shopID}
			}
			locked[id] = p
		}

		// Proses item tetap pakai urutan caller.
		total := decimal.Zero
		for i, it := range items {
			p := locked[it.ProductID]
			if p.Quantity < it.Quantity {
				return &InsufficientInventoryError{
					ProductID: p.ID, Requested: it.Quantity, Available: p.Quantity,
				}
			}
			left, err := tx.DecrementQuantity(ctx, p.ID, it.Quantity)
			if err != nil {
				return err
			}
			p.Quantity = left // produk sama bisa muncul di lebih dari satu item

			unit := p.Price
			line := unit.Mul(decimal.NewFromInt(int64(it.Quantity)))
			item := OrderItem{
				ID:         e.newID(),
				OrderID:    order.ID,
				ProductID:  p.ID,
				Quantity:   it.Quantity,
				UnitPrice:  unit,
				TotalPrice: line,
				Position:   i,
			}
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
			total = total.Add(line)

			if left <= LowStockThreshold {
				alert := PendingAlert{
					ID:        e.newID(),
					ShopID:    shopID,
					ProductID: p.ID,
					Quantity:  left,
					CreatedAt: e.now(),
				}
				if err := tx.InsertPendingAlert(ctx, &alert); err != nil {
					return err
				}
			}
		}

		order.TotalAmount = total
		return tx.SetOrderTotal(ctx, order.ID, total)
	})
	if err != nil {
		e.log.Infow("order rejected", "customer_id", customerID, "shop_id", shopID, "error", err)
		return nil, err
	}

	e.log.Infow("order placed",
		"order_id", order.ID, "shop_id", shopID, "items", len(order.Items),
		"total", order.TotalAmount.String())
	return order, nil
}

// lockOrder: product id unik, ascending.
func lockOrder(items []ItemInput) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)
	return ids
}
