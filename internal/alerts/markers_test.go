package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMarkersTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := NewMemoryMarkers()
	m.Now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := m.Acquire(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "marker pertama harus kepasang")

	ok, err = m.Acquire(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "masih dalam TTL")

	now = now.Add(59 * time.Minute)
	ok, _ = m.Acquire(ctx, "k", time.Hour)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute) // lewat TTL
	ok, err = m.Acquire(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	// key lain independen
	ok, _ = m.Acquire(ctx, "lain", time.Hour)
	assert.True(t, ok)
}
