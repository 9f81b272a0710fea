package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implements Client on top of go-cache.
type memoryClient struct {
	prefix string
	c      *gocache.Cache

	// go-cache has no create-or-increment primitive, so counters are
	// serialized through this mutex.
	incrMu sync.Mutex
}

// NewMemory creates an in-process cache client.
func NewMemory(prefix string) Client {
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (m *memoryClient) key(k string) string {
	if m.prefix == "" {
		return k
	}
	return m.prefix + ":" + k
}

func (m *memoryClient) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.c.Get(m.key(key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(m.key(key), value, ttl)
	return nil
}

func (m *memoryClient) Delete(ctx context.Context, key string) error {
	m.c.Delete(m.key(key))
	return nil
}

func (m *memoryClient) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.incrMu.Lock()
	defer m.incrMu.Unlock()

	k := m.key(key)
	if v, exp, ok := m.c.GetWithExpiration(k); ok {
		if n, ok := v.(int64); ok {
			n++
			// Keep the window anchored at first increment.
			remaining := gocache.NoExpiration
			if !exp.IsZero() {
				remaining = time.Until(exp)
			}
			m.c.Set(k, n, remaining)
			return n, nil
		}
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(k, int64(1), ttl)
	return 1, nil
}

func (m *memoryClient) Ping(ctx context.Context) error { return nil }

func (m *memoryClient) Close() error {
	m.c.Flush()
	return nil
}
