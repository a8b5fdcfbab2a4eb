package twitchbot

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pwsi/core/apperr"
	"pwsi/core/cache"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func counts(data map[string]Counter) map[string]int {
	out := make(map[string]int, len(data))
	for name, c := range data {
		out[name] = c.Value
	}
	return out
}

// Counters holds every counter of one type.
type Counters struct {
	db     *gorm.DB
	logger *zap.Logger
	kind   string
	delay  time.Duration
	cache  *cache.Cache[string, Counter, map[string]int]
	now    func() time.Time
}

// NewCounters creates the counters of resource name. Delayed increments
// closer than delay to the previous one are refused.
func NewCounters(db *gorm.DB, name registry.Name, delay time.Duration, logger *zap.Logger) *Counters {
	return &Counters{
		db:     db,
		logger: logger,
		kind:   CounterTypes[name],
		delay:  delay,
		cache:  cache.New(string(name), counts),
		now:    time.Now,
	}
}

func (c *Counters) scope(tx *gorm.DB) *gorm.DB {
	return tx.Where("type = ?", c.kind)
}

// Setup loads the counters into the cache.
func (c *Counters) Setup(ctx context.Context) error {
	err := c.cache.Load(ctx, func(ctx context.Context) (map[string]Counter, error) {
		var rows []Counter
		if err := c.scope(c.db.WithContext(ctx)).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load %s counters: %w", c.kind, err)
		}
		data := make(map[string]Counter, len(rows))
		for _, r := range rows {
			data[r.Name] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	c.logger.Info("Twitch bot counters loaded", zap.String("type", c.kind), zap.Int("count", c.cache.Len()))
	return nil
}

// Reset removes the counters of this type.
func (c *Counters) Reset(ctx context.Context) error {
	return c.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Counter) error {
		if err := c.scope(c.db.WithContext(ctx)).Delete(&Counter{}).Error; err != nil {
			return fmt.Errorf("reset %s counters: %w", c.kind, err)
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the counts by name.
func (c *Counters) Snapshot() any { return c.cache.View() }

// Dispose drops the cached records.
func (c *Counters) Dispose() { c.cache.Dispose() }

// GetAll returns the counts by name.
func (c *Counters) GetAll() map[string]int { return c.cache.View() }

// Value returns the count of name.
func (c *Counters) Value(name string) (int, bool) {
	v, ok := c.cache.View()[name]
	return v, ok
}

// Names returns the counter names sorted.
func (c *Counters) Names() []string {
	view := c.cache.View()
	out := make([]string, 0, len(view))
	for name := range view {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Set creates or overwrites a counter. A negative value removes it.
func (c *Counters) Set(ctx context.Context, req CounterSet) (Outcome, error) {
	if req.Name == "" {
		return "", fmt.Errorf("counter name is required: %w", apperr.ErrValidation)
	}
	var outcome Outcome
	err := c.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Counter) error {
		rec, exists := staged[req.Name]
		db := c.db.WithContext(ctx)
		switch {
		case !exists && req.Value < 0:
			outcome = Skipped
			return nil
		case !exists:
			rec = Counter{Name: req.Name, Type: c.kind, Value: req.Value}
			if err := db.Create(&rec).Error; err != nil {
				return fmt.Errorf("create counter %s: %w", req.Name, err)
			}
			staged[req.Name] = rec
			outcome = Created
		case req.Value < 0:
			if err := c.scope(db).Where("name = ?", req.Name).Delete(&Counter{}).Error; err != nil {
				return fmt.Errorf("delete counter %s: %w", req.Name, err)
			}
			delete(staged, req.Name)
			outcome = Removed
		default:
			if err := c.scope(db.Model(&Counter{})).Where("name = ?", req.Name).Update("value", req.Value).Error; err != nil {
				return fmt.Errorf("set counter %s: %w", req.Name, err)
			}
			rec.Value = req.Value
			staged[req.Name] = rec
			outcome = Changed
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// Increment adds by to the counter and returns the new count. With delayed
// set, a change within the delay of the previous one is refused.
func (c *Counters) Increment(ctx context.Context, name string, by int, delayed bool) (int, error) {
	var count int
	err := c.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Counter) error {
		rec, ok := staged[name]
		if !ok {
			return fmt.Errorf("counter %s: %w", name, apperr.ErrNotFound)
		}
		now := c.now().UTC()
		if delayed && rec.Updated != nil && now.Sub(*rec.Updated) < c.delay {
			return fmt.Errorf("counter %s changed %s ago: %w", name, now.Sub(*rec.Updated).Round(time.Second), apperr.ErrTooFrequent)
		}

		rec.Value += by
		rec.Updated = &now
		err := c.scope(c.db.WithContext(ctx).Model(&Counter{})).
			Where("name = ?", name).
			Updates(map[string]any{"value": rec.Value, "updated": now}).Error
		if err != nil {
			return fmt.Errorf("increment counter %s: %w", name, err)
		}
		staged[name] = rec
		count = rec.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
