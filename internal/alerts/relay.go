package alerts

import (
	"context"
	"time"

	kafkax "github.com/ariefcatur/go-artisan-market/internal/kafka"
	"github.com/ariefcatur/go-artisan-market/internal/market"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Outbox: sumber baris pending_alerts yang ditulis transaksi order.
type Outbox interface {
	ClaimPending(ctx context.Context, limit int) ([]market.PendingAlert, error)
	MarkPublished(ctx context.Context, ids []string) error
}

type publisher interface {
	Publish(ctx context.Context, msgs ...kafkago.Message) error
}

// Relay: poll outbox -> publish ke kafka -> tandai published.
// At-least-once; consumer dedup via event_id (= id baris outbox),
// jadi republish setelah crash aman.
type Relay struct {
	Outbox   Outbox
	Producer publisher
	Service  string
	Interval time.Duration
	Batch    int
	Log      *zap.SugaredLogger
}

func (r *Relay) Start(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n, err := r.RunOnce(ctx); err != nil {
					r.Log.Warnw("alert relay pass failed", "error", err)
				} else if n > 0 {
					r.Log.Debugw("alerts relayed", "count", n)
				}
			}
		}
	}()
}

// RunOnce relay satu batch; dipisah supaya gampang dites.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	batch := r.Batch
	if batch <= 0 {
		batch = 100
	}
	rows, err := r.Outbox.ClaimPending(ctx, batch)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(rows))
	msgs := make([]kafkago.Message, 0, len(rows))
	for _, row := range rows {
		ev := market.Envelope{
			EventID:       row.ID, // stabil antar publish ulang
			EventType:     market.EventAlertPending,
			EventVersion:  1,
			OccurredAt:    row.CreatedAt,
			Producer:      r.Service,
			CorrelationID: row.ProductID,
			Payload: kafkax.MustMarshal(market.AlertPendingPayload{
				AlertID:   row.ID,
				ShopID:    row.ShopID,
				ProductID: row.ProductID,
				Quantity:  row.Quantity,
			}),
		}
		msgs = append(msgs, kafkago.Message{
			Key:   market.PartitionKey(row.ProductID),
			Value: kafkax.MustMarshal(ev),
			Headers: []kafkago.Header{
				{Key: "x-event-type", Value: []byte(market.EventAlertPending)},
				{Key: "x-event-version", Value: []byte("1")},
			},
		})
		ids = append(ids, row.ID)
	}
	// mark published hanya kalau broker sudah ack seluruh batch
	if err := r.Producer.Publish(ctx, msgs...); err != nil {
		return 0, err
	}
	if err := r.Outbox.MarkPublished(ctx, ids); err != nil {
		return 0, err
	}
	return len(rows), nil
}
