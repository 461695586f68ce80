package alerts

import (
	"context"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/go-artisan-market/internal/kafka"
	"github.com/ariefcatur/go-artisan-market/internal/logx"
	"github.com/ariefcatur/go-artisan-market/internal/market"
	"github.com/ariefcatur/go-artisan-market/internal/memory"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func pendingMessage(eventID, shopID, productID string, qty int) kafkago.Message {
	ev := market.Envelope{
		EventID:      eventID,
		EventType:    market.EventAlertPending,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload: kafkax.MustMarshal(market.AlertPendingPayload{
			AlertID: eventID, ShopID: shopID, ProductID: productID, Quantity: qty,
		}),
	}
	return kafkago.Message{Key: market.PartitionKey(productID), Value: kafkax.MustMarshal(ev)}
}

func newService(store *memory.Store) (*Service, *MemoryMarkers, *time.Time) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	markers := NewMemoryMarkers()
	markers.Now = func() time.Time { return now }
	svc := &Service{
		Writer:  store,
		Markers: markers,
		Log:     logx.Nop(),
		Now:     func() time.Time { return now },
	}
	return svc, markers, &now
}

func TestHandlePending_CooldownSuppressesDuplicates(t *testing.T) {
	store := memory.NewStore()
	svc, _, now := newService(store)
	ctx := context.Background()

	// crossing pertama: alert dibuat
	require.NoError(t, svc.HandlePending(ctx, pendingMessage("ev-1", "s-1", "p-1", 2)))
	alerts, err := store.ListAlerts(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].Quantity)

	// crossing kedua dalam cooldown: suppressed
	require.NoError(t, svc.HandlePending(ctx, pendingMessage("ev-2", "s-1", "p-1", 0)))
	alerts, _ = store.ListAlerts(ctx, "s-1")
	assert.Len(t, alerts, 1, "alert kedua dalam cooldown harus di-suppress")

	// setelah cooldown lewat: boleh alert lagi
	*now = now.Add(market.AlertCooldown + time.Minute)
	require.NoError(t, svc.HandlePending(ctx, pendingMessage("ev-3", "s-1", "p-1", 1)))
	alerts, _ = store.ListAlerts(ctx, "s-1")
	assert.Len(t, alerts, 2)
}

func TestHandlePending_EventIDDedup(t *testing.T) {
	store := memory.NewStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	m := pendingMessage("ev-1", "s-1", "p-1", 3)
	require.NoError(t, svc.HandlePending(ctx, m))
	require.NoError(t, svc.HandlePending(ctx, m)) // redelivery

	alerts, err := store.ListAlerts(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestHandlePending_SeparatePairsIndependent(t *testing.T) {
	store := memory.NewStore()
	svc, _, _ := newService(store)
	ctx := context.Background()

	require.NoError(t, svc.HandlePending(ctx, pendingMessage("ev-1", "s-1", "p-1", 2)))
	require.NoError(t, svc.HandlePending(ctx, pendingMessage("ev-2", "s-1", "p-2", 3)))
	require.NoError(t, svc.HandlePending(ctx, pendingMessage("ev-3", "s-2", "p-1", 1)))

	a1, _ := store.ListAlerts(ctx, "s-1")
	assert.Len(t, a1, 2)
	a2, _ := store.ListAlerts(ctx, "s-2")
	assert.Len(t, a2, 1)
}

func TestHandlePending_IgnoresOtherEventTypes(t *testing.T) {
	store := memory.NewStore()
	svc, _, _ := newService(store)

	ev := market.Envelope{EventID: "ev-x", EventType: "SomethingElse", Payload: []byte(`{}`)}
	m := kafkago.Message{Value: kafkax.MustMarshal(ev)}
	require.NoError(t, svc.HandlePending(context.Background(), m))

	alerts, _ := store.ListAlerts(context.Background(), "s-1")
	assert.Empty(t, alerts)
}

// End-to-end: dua order berurutan yang sama-sama nembus threshold
// menghasilkan tepat satu InventoryAlert dalam cooldown window.
func TestPipeline_TwoCrossingsOneAlert(t *testing.T) {
	store := memory.NewStore()
	store.SeedProduct(market.Product{
		ID: "p-1", ShopID: "s-1", Name: "Canvas",
		Price: requireDecimal(t, "200.00"), Quantity: 5,
	})
	eng := market.NewEngine(store, logx.Nop())
	ctx := context.Background()

	_, err := eng.PlaceOrder(ctx, "c-1", "s-1", []market.ItemInput{{ProductID: "p-1", Quantity: 3}})
	require.NoError(t, err)
	_, err = eng.PlaceOrder(ctx, "c-1", "s-1", []market.ItemInput{{ProductID: "p-1", Quantity: 2}})
	require.NoError(t, err)

	// relay outbox -> "kafka" -> consumer handler
	pub := &capturePublisher{}
	relay := &Relay{Outbox: store, Producer: pub, Service: "test-api", Log: logx.Nop()}
	_, err = relay.RunOnce(ctx)
	require.NoError(t, err)
	require.Len(t, pub.msgs, 2, "dua crossing = dua baris outbox")

	svc, _, _ := newService(store)
	for _, m := range pub.msgs {
		require.NoError(t, svc.HandlePending(ctx, m))
	}

	alerts, err := store.ListAlerts(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, alerts, 1, "dedup: tepat satu alert per (shop, product) dalam cooldown")
	assert.Equal(t, "p-1", alerts[0].ProductID)
	assert.Equal(t, 2, alerts[0].Quantity, "alert pertama fire saat sisa 2")
	assert.Equal(t, "Canvas", alerts[0].ProductName)
}
