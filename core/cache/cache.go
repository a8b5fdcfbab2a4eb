package cache

import (
	"context"
	"errors"
	"maps"
	"sync/atomic"
	"time"

	"pwsi/core/metrics"

	"golang.org/x/sync/semaphore"
)

// Cache mirrors one table in memory. Published maps are never modified:
// every mutation works on a staged copy that replaces the current one only
// when the mutation function succeeds, so lock-free readers always see a
// consistent snapshot.
type Cache[K comparable, R any, V any] struct {
	name   string
	lock   *semaphore.Weighted
	data   atomic.Pointer[map[K]R]
	view   atomic.Pointer[V]
	resort func(map[K]R) V
}

// New creates an empty cache. resort derives the read view from the records
// and must not modify them.
func New[K comparable, R any, V any](name string, resort func(map[K]R) V) *Cache[K, R, V] {
	c := &Cache[K, R, V]{
		name:   name,
		lock:   semaphore.NewWeighted(1),
		resort: resort,
	}
	c.publish(map[K]R{})
	return c
}

// Name returns the resource name the cache was created for.
func (c *Cache[K, R, V]) Name() string {
	return c.name
}

// Load replaces the cache contents with whatever fetch returns. It is used
// at setup and by reset; on error the previous contents stay in place.
func (c *Cache[K, R, V]) Load(ctx context.Context, fetch func(ctx context.Context) (map[K]R, error)) error {
	return c.Mutate(ctx, func(ctx context.Context, staged map[K]R) error {
		fresh, err := fetch(ctx)
		if err != nil {
			return err
		}
		clear(staged)
		maps.Copy(staged, fresh)
		return nil
	})
}

// View returns the last derived view without taking the lock.
func (c *Cache[K, R, V]) View() V {
	if v := c.view.Load(); v != nil {
		return *v
	}
	var zero V
	return zero
}

// Snapshot returns the current records without taking the lock. The map is
// shared and must be treated as read-only.
func (c *Cache[K, R, V]) Snapshot() map[K]R {
	if d := c.data.Load(); d != nil {
		return *d
	}
	return nil
}

// Get returns one record without taking the lock.
func (c *Cache[K, R, V]) Get(key K) (R, bool) {
	r, ok := c.Snapshot()[key]
	return r, ok
}

// Len returns the number of cached records.
func (c *Cache[K, R, V]) Len() int {
	return len(c.Snapshot())
}

// Read runs fn on the records while holding the resource lock, so no
// mutation can be in flight.
func (c *Cache[K, R, V]) Read(ctx context.Context, fn func(data map[K]R) error) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.lock.Release(1)
	return fn(c.Snapshot())
}

// Mutate serializes a write. fn receives a private copy of the records and
// a context that is no longer cancellable: once the lock is held the store
// transaction and the cache swap always run to completion. The copy is
// published and the view recomputed only if fn returns nil.
func (c *Cache[K, R, V]) Mutate(ctx context.Context, fn func(ctx context.Context, staged map[K]R) error) error {
	if err := c.acquire(ctx); err != nil {
		metrics.Mutations.WithLabelValues(c.name, metrics.Canceled).Inc()
		return err
	}
	defer c.lock.Release(1)

	staged := maps.Clone(c.Snapshot())
	if staged == nil {
		staged = map[K]R{}
	}
	if err := fn(context.WithoutCancel(ctx), staged); err != nil {
		metrics.Mutations.WithLabelValues(c.name, metrics.Failed).Inc()
		return err
	}
	c.publish(staged)
	metrics.Mutations.WithLabelValues(c.name, metrics.OK).Inc()
	return nil
}

// Dispose drops the records and the view.
func (c *Cache[K, R, V]) Dispose() {
	c.lock.Acquire(context.Background(), 1) //nolint:errcheck // background never fails
	defer c.lock.Release(1)
	c.data.Store(nil)
	c.view.Store(nil)
	metrics.Records.DeleteLabelValues(c.name)
}

func (c *Cache[K, R, V]) acquire(ctx context.Context) error {
	start := time.Now()
	err := c.lock.Acquire(ctx, 1)
	metrics.LockWait.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		return errors.Join(ErrLockCanceled, err)
	}
	return nil
}

func (c *Cache[K, R, V]) publish(data map[K]R) {
	view := c.resort(data)
	c.data.Store(&data)
	c.view.Store(&view)
	metrics.Records.WithLabelValues(c.name).Set(float64(len(data)))
}

// ErrLockCanceled is returned when the caller gave up waiting for the lock.
var ErrLockCanceled = errors.New("canceled while waiting for resource lock")
