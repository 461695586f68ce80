package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Markers: penanda dedup berumur pendek. Acquire true artinya marker
// baru kepasang (caller boleh jalan), false artinya masih ada marker live.
type Markers interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisMarkers pakai SET NX + TTL, atomik di sisi redis.
type RedisMarkers struct {
	R *redis.Client
}

func (m *RedisMarkers) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return m.R.SetNX(ctx, key, "1", ttl).Result()
}

// MemoryMarkers untuk test; clock bisa disuntik biar TTL deterministik.
type MemoryMarkers struct {
	mu  sync.Mutex
	m   map[string]time.Time // key -> expiry
	Now func() time.Time
}

func NewMemoryMarkers() *MemoryMarkers {
	return &MemoryMarkers{m: make(map[string]time.Time), Now: time.Now}
}

func (m *MemoryMarkers) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	if exp, ok := m.m[key]; ok && exp.After(now) {
		return false, nil
	}
	m.m[key] = now.Add(ttl)
	return true, nil
}
