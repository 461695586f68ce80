// Package memory adalah implementasi in-memory dari kontrak store
// untuk test dan demo lokal. Lock row disimulasikan dengan channel
// kapasitas satu per produk, jadi sifat blocking + timeout-nya
// sama dengan SELECT ... FOR UPDATE di postgres.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/shopspring/decimal"
)

type pendingRow struct {
	alert     market.PendingAlert
	published bool
}

type Store struct {
	mu       sync.Mutex
	products map[string]market.Product
	orders   map[string]market.Order
	pending  []pendingRow
	alerts   []market.InventoryAlert
	rowLocks map[string]chan struct{}
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]market.Product),
		orders:   make(map[string]market.Order),
		rowLocks: make(map[string]chan struct{}),
	}
}

func (s *Store) SeedProduct(p market.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) ProductQuantity(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) PendingAlertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Store) rowLock(id string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.rowLocks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[id] = ch
	}
	return ch
}

// WithinTx: semua write di-stage dulu, baru diterapkan saat fn sukses.
// Error apapun -> stage dibuang, state committed tidak tersentuh.
func (s *Store) WithinTx(ctx context.Context, fn func(tx market.Tx) error) error {
	t := &memTx{
		s:      s,
		held:   make(map[string]chan struct{}),
		deltas: make(map[string]int),
		totals: make(map[string]decimal.Decimal),
	}
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

type memTx struct {
	s      *Store
	held   map[string]chan struct{}
	deltas map[string]int
	orders []market.Order
	items  []market.OrderItem
	totals map[string]decimal.Decimal
	alerts []market.PendingAlert
}

func (t *memTx) release() {
	for _, ch := range t.held {
		<-ch
	}
}

func (t *memTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, d := range t.deltas {
		p := t.s.products[id]
		p.Quantity += d
		t.s.products[id] = p
	}
	for _, o := range t.orders {
		if tot, ok := t.totals[o.ID]; ok {
			o.TotalAmount = tot
		}
		for _, it := range t.items {
			if it.OrderID == o.ID {
				o.Items = append(o.Items, it)
			}
		}
		t.s.orders[o.ID] = o
	}
	for _, a := range t.alerts {
		t.s.pending = append(t.s.pending, pendingRow{alert: a})
	}
}

func (t *memTx) LockProduct(ctx context.Context, productID string) (*market.Product, error) {
	t.s.mu.Lock()
	_, exists := t.s.products[productID]
	t.s.mu.Unlock()
	if !exists {
		return nil, &market.ProductNotFoundError{ProductID: productID}
	}

	if _, held := t.held[productID]; !held {
		ch := t.s.rowLock(productID)
		select {
		case ch <- struct{}{}:
			t.held[productID] = ch
		case <-ctx.Done():
			return nil, market.ErrLockTimeout
		}
	}

	t.s.mu.Lock()
	p := t.s.products[productID]
	t.s.mu.Unlock()
	p.Quantity += t.deltas[productID]
	return &p, nil
}

func (t *memTx) DecrementQuantity(ctx context.Context, productID string, qty int) (int, error) {
	_ = ctx
	t.s.mu.Lock()
	p, exists := t.s.products[productID]
	t.s.mu.Unlock()
	if !exists {
		return 0, &market.ProductNotFoundError{ProductID: productID}
	}
	current := p.Quantity + t.deltas[productID]
	if current < qty {
		return 0, &market.InsufficientInventoryError{
			ProductID: productID, Requested: qty, Available: current,
		}
	}
	t.deltas[productID] -= qty
	return current - qty, nil
}

func (t *memTx) InsertOrder(ctx context.Context, o *market.Order) error {
	_ = ctx
	cp := *o
	cp.Items = nil
	t.orders = append(t.orders, cp)
	return nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, it *market.OrderItem) error {
	_ = ctx
	t.items = append(t.items, *it)
	return nil
}

func (t *memTx) SetOrderTotal(ctx context.Context, orderID string, total decimal.Decimal) error {
	_ = ctx
	t.totals[orderID] = total
	return nil
}

func (t *memTx) InsertPendingAlert(ctx context.Context, a *market.PendingAlert) error {
	_ = ctx
	t.alerts = append(t.alerts, *a)
	return nil
}

// ---- Reader ----

func (s *Store) GetOrder(ctx context.Context, orderID string) (*market.Order, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, market.ErrOrderNotFound
	}
	cp := o
	cp.Items = append([]market.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]market.Product, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]market.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) SearchProducts(ctx context.Context, lat, lng, radiusKm float64, categoryID string) ([]market.Product, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []market.Product
	for _, p := range s.products {
		if p.Lat == nil || p.Lng == nil {
			continue
		}
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if haversineKm(lat, lng, *p.Lat, *p.Lng) <= radiusKm {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const r = 6371.0
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * r * math.Asin(math.Sqrt(a))
}

func (s *Store) ListAlerts(ctx context.Context, shopID string) ([]market.InventoryAlert, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []market.InventoryAlert
	for _, a := range s.alerts {
		if a.ShopID == shopID && !a.Resolved {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TriggeredAt.After(out[j].TriggeredAt) })
	return out, nil
}

// ---- alert pipeline (analog postgres.Store) ----

func (s *Store) InsertAlert(ctx context.Context, a *market.InventoryAlert) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ProductName == "" {
		a.ProductName = s.products[a.ProductID].Name
	}
	s.alerts = append(s.alerts, *a)
	return nil
}

func (s *Store) ClaimPending(ctx context.Context, limit int) ([]market.PendingAlert, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []market.PendingAlert
	for _, row := range s.pending {
		if row.published {
			continue
		}
		out = append(out, row.alert)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	for i := range s.pending {
		if set[s.pending[i].alert.ID] {
			s.pending[i].published = true
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { _ = ctx; return nil }
