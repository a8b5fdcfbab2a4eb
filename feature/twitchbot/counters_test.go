package twitchbot

import (
	"context"
	"testing"
	"time"

	"pwsi/core/apperr"
	"pwsi/core/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCounterSet(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	c := NewCounters(db, registry.CounterDeath, 30*time.Second, zap.NewNop())
	require.NoError(t, c.Setup(ctx))

	tests := []struct {
		req  CounterSet
		want Outcome
	}{
		{CounterSet{Name: "elden ring", Value: -1}, Skipped},
		{CounterSet{Name: "elden ring", Value: 3}, Created},
		{CounterSet{Name: "elden ring", Value: 10}, Changed},
		{CounterSet{Name: "hollow knight", Value: 0}, Created},
		{CounterSet{Name: "hollow knight", Value: -5}, Removed},
	}
	for _, tt := range tests {
		got, err := c.Set(ctx, tt.req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.req.Name)
	}

	v, ok := c.Value("elden ring")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, []string{"elden ring"}, c.Names())

	_, err := c.Set(ctx, CounterSet{Value: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCounterIncrementDelay(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	c := NewCounters(db, registry.Counter, 30*time.Second, zap.NewNop())
	require.NoError(t, c.Setup(ctx))

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	_, err := c.Increment(ctx, "missing", 1, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = c.Set(ctx, CounterSet{Name: "jumps", Value: 0})
	require.NoError(t, err)

	v, err := c.Increment(ctx, "jumps", 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock = clock.Add(10 * time.Second)
	_, err = c.Increment(ctx, "jumps", 1, true)
	assert.ErrorIs(t, err, apperr.ErrTooFrequent)

	v, err = c.Increment(ctx, "jumps", 4, false)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	clock = clock.Add(31 * time.Second)
	v, err = c.Increment(ctx, "jumps", 1, true)
	require.NoError(t, err)
	assert.Equal(t, 6, v)

	reloaded := NewCounters(db, registry.Counter, 30*time.Second, zap.NewNop())
	require.NoError(t, reloaded.Setup(ctx))
	v, _ = reloaded.Value("jumps")
	assert.Equal(t, 6, v)
}

func TestCounterTypesAreIsolated(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	global := NewCounters(db, registry.CounterGlobal, 0, zap.NewNop())
	deaths := NewCounters(db, registry.CounterDeath, 0, zap.NewNop())
	require.NoError(t, global.Setup(ctx))
	require.NoError(t, deaths.Setup(ctx))

	_, err := global.Set(ctx, CounterSet{Name: "rabbits", Value: 7})
	require.NoError(t, err)
	_, err = deaths.Set(ctx, CounterSet{Name: "rabbits", Value: 2})
	require.NoError(t, err)

	require.NoError(t, deaths.Reset(ctx))
	assert.Empty(t, deaths.GetAll())

	reloaded := NewCounters(db, registry.CounterGlobal, 0, zap.NewNop())
	require.NoError(t, reloaded.Setup(ctx))
	assert.Equal(t, map[string]int{"rabbits": 7}, reloaded.GetAll())
}
