package postgres

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store implements the inventory store contract on postgres.
// Row lock produk pakai SELECT ... FOR UPDATE; decrement relatif
// dengan guard non-negatif di SQL, bukan read-modify-write.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store { return &Store{Pool: pool} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx market.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return mapLockErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapLockErr(err)
	}
	return nil
}

// mapLockErr: lock wait timeout / deadlock / cancel dari postgres
// jadi ErrLockTimeout yang retryable.
func mapLockErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03", "40P01", "57014": // lock_not_available, deadlock_detected, query_canceled
			return market.ErrLockTimeout
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return market.ErrLockTimeout
	}
	return err
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockProduct(ctx context.Context, productID string) (*market.Product, error) {
	var p market.Product
	err := t.tx.QueryRow(ctx, `
		SELECT id, shop_id, category_id, name, COALESCE(description, ''),
		       price, quantity, created_at, updated_at
		FROM products WHERE id=$1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.ShopID, &p.CategoryID, &p.Name, &p.Description,
			&p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &market.ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) DecrementQuantity(ctx context.Context, productID string, qty int) (int, error) {
	var left int
	err := t.tx.QueryRow(ctx, `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity`, productID, qty).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		// guard kena: baca sisa buat pesan error
		var avail int
		if err2 := t.tx.QueryRow(ctx, `SELECT quantity FROM products WHERE id=$1`, productID).Scan(&avail); err2 != nil {
			if errors.Is(err2, pgx.ErrNoRows) {
				return 0, &market.ProductNotFoundError{ProductID: productID}
			}
			return 0, err2
		}
		return 0, &market.InsufficientInventoryError{
			ProductID: productID, Requested: qty, Available: avail,
		}
	}
	if err != nil {
		return 0, err
	}
	return left, nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *market.Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, shop_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.CustomerID, o.ShopID, string(o.Status), o.TotalAmount, o.CreatedAt)
	return err
}

func (t *pgTx) InsertOrderItem(ctx context.Context, it *market.OrderItem) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_items(id, order_id, product_id, quantity, unit_price, total_price, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.TotalPrice, it.Position)
	return err
}

func (t *pgTx) SetOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE orders SET total_amount=$2 WHERE id=$1`, orderID, total)
	return err
}

func (t *pgTx) InsertPendingAlert(ctx context.Context, a *market.PendingAlert) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO pending_alerts(id, shop_id, product_id, quantity, created_at, published)
		VALUES ($1, $2, $3, $4, $5, false)`,
		a.ID, a.ShopID, a.ProductID, a.Quantity, a.CreatedAt)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}
