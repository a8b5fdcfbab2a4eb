package twitchbot

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Values is the read view of one list.
type Values struct {
	byID  map[int64]string
	order []string
	set   map[string]int64
}

// MarshalJSON writes the list as an id to value object.
func (v Values) MarshalJSON() ([]byte, error) {
	if v.byID == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.byID)
}

func values(data map[int64]Item) Values {
	v := Values{
		byID:  make(map[int64]string, len(data)),
		order: make([]string, 0, len(data)),
		set:   make(map[string]int64, len(data)),
	}
	ids := make([]int64, 0, len(data))
	for id, it := range data {
		v.byID[id] = it.Value
		v.set[it.Value] = id
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		v.order = append(v.order, data[id].Value)
	}
	return v
}

// List is one category of the shared lists table.
type List struct {
	db       *gorm.DB
	logger   *zap.Logger
	category string
	cache    *cache.Cache[int64, Item, Values]
	pick     func(n int) int
}

// NewList creates the list stored under the category of name.
func NewList(db *gorm.DB, name registry.Name, logger *zap.Logger) *List {
	return &List{
		db:       db,
		logger:   logger,
		category: string(name),
		cache:    cache.New(string(name), values),
		pick:     rand.IntN,
	}
}

func (l *List) scope(tx *gorm.DB) *gorm.DB {
	return tx.Where("category = ?", l.category)
}

// Setup loads the category into the cache.
func (l *List) Setup(ctx context.Context) error {
	err := l.cache.Load(ctx, func(ctx context.Context) (map[int64]Item, error) {
		var rows []Item
		if err := l.scope(l.db.WithContext(ctx)).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", l.category, err)
		}
		data := make(map[int64]Item, len(rows))
		for _, r := range rows {
			data[r.ID] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	l.logger.Info("Twitch bot list loaded", zap.String("category", l.category), zap.Int("count", l.cache.Len()))
	return nil
}

// Reset removes the category. Other lists sharing the table stay.
func (l *List) Reset(ctx context.Context) error {
	return l.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		if err := l.scope(l.db.WithContext(ctx)).Delete(&Item{}).Error; err != nil {
			return fmt.Errorf("reset %s: %w", l.category, err)
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the values by id.
func (l *List) Snapshot() any { return l.cache.View() }

// Dispose drops the cached records.
func (l *List) Dispose() { l.cache.Dispose() }

// GetAll returns the values by id.
func (l *List) GetAll() Values { return l.cache.View() }

// Random returns one of the values, or "" for an empty list.
func (l *List) Random() string {
	v := l.cache.View()
	if len(v.order) == 0 {
		return ""
	}
	return v.order[l.pick(len(v.order))]
}

// Has reports whether value is in the list.
func (l *List) Has(value string) bool {
	_, ok := l.cache.View().set[value]
	return ok
}

// Add inserts every value not yet in the list.
func (l *List) Add(ctx context.Context, items []NewItem) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := checkValue(it.Value); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(items))
	err := l.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		taken := index(staged)
		return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := taken[it.Value]; ok {
					ids[i] = batch.Rejected
					continue
				}
				rec := Item{Value: it.Value, Category: l.category}
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert %s value: %w", l.category, err)
				}
				staged[rec.ID] = rec
				taken[rec.Value] = rec.ID
				ids[i] = rec.ID
			}
			return batch.Added(ids)
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update replaces values. A value held by another item is rejected.
func (l *List) Update(ctx context.Context, patches []ItemPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}
	for _, p := range patches {
		if err := checkValue(p.Value); err != nil {
			return nil, err
		}
	}

	results := make([]string, len(patches))
	err := l.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		taken := index(staged)
		return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				if owner, ok := taken[p.Value]; ok && owner != p.ID {
					results[i] = batch.NameNotUnique
					continue
				}
				if err := tx.Model(&Item{ID: p.ID}).Update("value", p.Value).Error; err != nil {
					return fmt.Errorf("update %s value %d: %w", l.category, p.ID, err)
				}
				delete(taken, rec.Value)
				rec.Value = p.Value
				taken[rec.Value] = rec.ID
				staged[p.ID] = rec
				results[i] = batch.Updated
			}
			return batch.Changed(results)
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Delete removes the referenced items.
func (l *List) Delete(ctx context.Context, items []DeletedItem) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := l.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				if err := tx.Delete(&Item{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete %s value %d: %w", l.category, it.ID, err)
				}
				delete(staged, it.ID)
				results[i] = true
			}
			return batch.Deleted(results)
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func index(data map[int64]Item) map[string]int64 {
	taken := make(map[string]int64, len(data))
	for id, it := range data {
		taken[it.Value] = id
	}
	return taken
}
