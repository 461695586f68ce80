package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-artisan-market/internal/kafka"
	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/ariefcatur/go-artisan-market/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Writer menulis alert yang lolos dedup ke tabel inventory_alerts.
type Writer interface {
	InsertAlert(ctx context.Context, a *market.InventoryAlert) error
}

// Service mengkonsumsi event inventory.alert.pending dan materialisasi
// InventoryAlert, maksimal satu per (shop, product) dalam cooldown window.
// Dedup best-effort via marker redis; alert bersifat advisory, bukan
// data bisnis transaksional.
type Service struct {
	Writer  Writer
	Markers Markers
	Log     *zap.SugaredLogger
	Now     func() time.Time
}

// HandlePending: dipasang sebagai handler consumer.
func (s *Service) HandlePending(ctx context.Context, m kafkago.Message) error {
	var env market.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != market.EventAlertPending {
		return nil // ignore
	}

	// dedup event (relay at-least-once, event_id = id baris outbox)
	dkey := fmt.Sprintf(redisx.KeyDedup, "alerts", env.EventID)
	fresh, err := s.Markers.Acquire(ctx, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}

	p, err := kafkax.UnwrapPayload[market.AlertPendingPayload](env.Payload)
	if err != nil {
		return err
	}

	// cooldown per (shop, product)
	ckey := fmt.Sprintf(redisx.KeyAlertCooldown, p.ShopID, p.ProductID)
	ok, err := s.Markers.Acquire(ctx, ckey, market.AlertCooldown)
	if err != nil {
		return err
	}
	if !ok {
		s.Log.Debugw("alert suppressed", "shop_id", p.ShopID, "product_id", p.ProductID)
		return nil
	}

	alert := market.InventoryAlert{
		ID:          p.AlertID,
		ShopID:      p.ShopID,
		ProductID:   p.ProductID,
		Quantity:    p.Quantity,
		TriggeredAt: s.now(),
	}
	if err := s.Writer.InsertAlert(ctx, &alert); err != nil {
		return err
	}
	s.Log.Infow("low stock alert",
		"shop_id", p.ShopID, "product_id", p.ProductID, "quantity", p.Quantity)
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
