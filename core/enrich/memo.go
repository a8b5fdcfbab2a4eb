package enrich

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is one memoized lookup result.
type entry[V any] struct {
	value V
	built time.Time
}

// Memo remembers lookup results for a short time and collapses concurrent
// lookups of the same key into one outbound call.
type Memo[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	sf      singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

// NewMemo creates a memo. A zero ttl disables remembering but still
// collapses concurrent calls.
func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memo[V]) fresh(key string) (V, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || m.ttl == 0 || m.now().Sub(e.built) > m.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Do returns the remembered value for key or calls fetch. Only successful
// results are remembered.
func (m *Memo[V]) Do(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := m.fresh(key); ok {
		return v, nil
	}

	res, err, _ := m.sf.Do(key, func() (any, error) {
		// Double-check after acquiring singleflight lock
		if v, ok := m.fresh(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		if m.ttl > 0 {
			m.mu.Lock()
			m.entries[key] = entry[V]{value: v, built: m.now()}
			m.mu.Unlock()
		}
		return v, nil
	})
	v, _ := res.(V)
	return v, err
}

// Forget drops every remembered value.
func (m *Memo[V]) Forget() {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
}
