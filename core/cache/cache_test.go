package cache_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"pwsi/core/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string
}

func names(data map[int64]item) []string {
	out := make([]string, 0, len(data))
	for _, it := range data {
		out = append(out, it.Name)
	}
	sort.Strings(out)
	return out
}

func newCache() *cache.Cache[int64, item, []string] {
	return cache.New("test", names)
}

func TestLoadAndView(t *testing.T) {
	c := newCache()
	assert.Empty(t, c.View())

	err := c.Load(context.Background(), func(ctx context.Context) (map[int64]item, error) {
		return map[int64]item{1: {"b"}, 2: {"a"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.View())
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "b", got.Name)
}

func TestMutateFailureKeepsState(t *testing.T) {
	c := newCache()
	require.NoError(t, c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]item) error {
		staged[1] = item{"kept"}
		return nil
	}))

	boom := errors.New("store failure")
	err := c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]item) error {
		staged[2] = item{"lost"}
		delete(staged, 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"kept"}, c.View())
	_, ok := c.Get(2)
	assert.False(t, ok)
}

func TestSnapshotIsNotMutatedByWriters(t *testing.T) {
	c := newCache()
	require.NoError(t, c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]item) error {
		staged[1] = item{"one"}
		return nil
	}))
	before := c.Snapshot()

	require.NoError(t, c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]item) error {
		staged[1] = item{"changed"}
		return nil
	}))
	assert.Equal(t, "one", before[1].Name)
	assert.Equal(t, "changed", c.Snapshot()[1].Name)
}

func TestMutateIgnoresCancellationOnceLocked(t *testing.T) {
	c := newCache()
	ctx, cancel := context.WithCancel(context.Background())

	err := c.Mutate(ctx, func(inner context.Context, staged map[int64]item) error {
		cancel()
		assert.NoError(t, inner.Err())
		staged[1] = item{"done"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"done"}, c.View())
}

func TestMutateCanceledWhileWaiting(t *testing.T) {
	c := newCache()
	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]item) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Mutate(ctx, func(ctx context.Context, staged map[int64]item) error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, cache.ErrLockCanceled)
	close(release)
}

func TestMutateSerializesWriters(t *testing.T) {
	c := cache.New("counter", func(data map[int64]int) int { return data[0] })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]int) error {
				staged[0]++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.View())
}

func TestReadHoldsLock(t *testing.T) {
	c := newCache()
	var seen int
	err := c.Read(context.Background(), func(data map[int64]item) error {
		seen = len(data)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seen)
}

func TestDispose(t *testing.T) {
	c := newCache()
	require.NoError(t, c.Mutate(context.Background(), func(ctx context.Context, staged map[int64]item) error {
		staged[1] = item{"x"}
		return nil
	}))
	c.Dispose()
	assert.Nil(t, c.View())
	assert.Equal(t, 0, c.Len())
}
