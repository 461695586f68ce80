package postgres

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/jackc/pgx/v5"
)

func (s *Store) GetOrder(ctx context.Context, orderID string) (*market.Order, error) {
	var o market.Order
	var status string
	err := s.Pool.QueryRow(ctx, `
		SELECT id, customer_id, shop_id, status, total_amount, created_at
		FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.CustomerID, &o.ShopID, &status, &o.TotalAmount, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, market.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = market.Status(status)

	rows, err := s.Pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, total_price, position
		FROM order_items WHERE order_id=$1 ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it market.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.Position); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]market.Product, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, shop_id, category_id, name, COALESCE(description, ''),
		       price, quantity, ST_Y(location::geometry), ST_X(location::geometry),
		       created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

// SearchProducts: radius km via PostGIS geography, opsional filter kategori.
func (s *Store) SearchProducts(ctx context.Context, lat, lng, radiusKm float64, categoryID string) ([]market.Product, error) {
	q := `
		SELECT id, shop_id, category_id, name, COALESCE(description, ''),
		       price, quantity, ST_Y(location::geometry), ST_X(location::geometry),
		       created_at, updated_at
		FROM products
		WHERE location IS NOT NULL
		  AND ST_DWithin(location::geography, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)`
	args := []any{lng, lat, radiusKm * 1000}
	if categoryID != "" {
		q += ` AND category_id = $4`
		args = append(args, categoryID)
	}
	q += ` ORDER BY name`

	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]market.Product, error) {
	var out []market.Product
	for rows.Next() {
		var p market.Product
		if err := rows.Scan(&p.ID, &p.ShopID, &p.CategoryID, &p.Name, &p.Description,
			&p.Price, &p.Quantity, &p.Lat, &p.Lng, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListAlerts(ctx context.Context, shopID string) ([]market.InventoryAlert, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT a.id, a.shop_id, a.product_id, p.name, a.quantity, a.triggered_at, a.resolved
		FROM inventory_alerts a
		JOIN products p ON p.id = a.product_id
		WHERE a.shop_id = $1 AND NOT a.resolved
		ORDER BY a.triggered_at DESC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.InventoryAlert
	for rows.Next() {
		var a market.InventoryAlert
		if err := rows.Scan(&a.ID, &a.ShopID, &a.ProductID, &a.ProductName,
			&a.Quantity, &a.TriggeredAt, &a.Resolved); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) InsertAlert(ctx context.Context, a *market.InventoryAlert) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO inventory_alerts(id, shop_id, product_id, quantity, triggered_at, resolved)
		VALUES ($1, $2, $3, $4, $5, false)`,
		a.ID, a.ShopID, a.ProductID, a.Quantity, a.TriggeredAt)
	return err
}

func (s *Store) ClaimPending(ctx context.Context, limit int) ([]market.PendingAlert, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, shop_id, product_id, quantity, created_at
		FROM pending_alerts WHERE NOT published
		ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.PendingAlert
	for rows.Next() {
		var a market.PendingAlert
		if err := rows.Scan(&a.ID, &a.ShopID, &a.ProductID, &a.Quantity, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) MarkPublished(ctx context.Context, ids []string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE pending_alerts SET published=true WHERE id = ANY($1)`, ids)
	return err
}
