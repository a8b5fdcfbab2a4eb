package lore

import (
	"context"
	"fmt"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/database"
	"pwsi/core/ordering"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var table = ordering.Table{Name: Entry{}.TableName()}

// Service keeps the lore table and its cache in step. The order is global
// across blocks.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[int64, Entry, []Entry]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, cache: cache.New(string(registry.Lore), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Entry, error) {
		var rows []Entry
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load lore: %w", err)
		}
		data := make(map[int64]Entry, len(rows))
		for _, r := range rows {
			data[r.ID] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Lore loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and empties the cache.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Entry) error {
		if err := database.Truncate(s.db.WithContext(ctx), table.Name); err != nil {
			return err
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the sorted list.
func (s *Service) Snapshot() any { return s.cache.View() }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the entries sorted by block then order.
func (s *Service) GetAll() []Entry { return s.cache.View() }

// Add inserts the entries at their requested positions.
func (s *Service) Add(ctx context.Context, items []NewEntry) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Entry) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				plan := ordering.Insert(members(staged), it.Order)
				if err := table.Shift(tx, nil, plan.Shift); err != nil {
					return err
				}
				rec := Entry{Text: it.Text, BlockID: it.BlockID, Order: plan.Position}
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert lore: %w", err)
				}
				ordering.ApplyTo(staged, plan.Changes, setOrder)
				staged[rec.ID] = rec
				ids[i] = rec.ID
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies the patches.
func (s *Service) Update(ctx context.Context, patches []EntryPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Entry) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				cols := p.apply(&rec)
				if p.Order != nil {
					if plan, ok := ordering.Move(members(staged), p.ID, *p.Order); ok {
						if err := table.Shift(tx, nil, plan.Shift); err != nil {
							return err
						}
						ordering.ApplyTo(staged, plan.Changes, setOrder)
						rec.Order = plan.Position
						cols[ordering.OrderColumn] = plan.Position
					}
				}
				if len(cols) > 0 {
					if err := tx.Model(&Entry{ID: p.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update lore %d: %w", p.ID, err)
					}
				}
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

// Delete removes the entries and closes the gaps.
func (s *Service) Delete(ctx context.Context, items []DeletedEntry) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Entry) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				plan := ordering.Remove(members(staged), it.ID)
				if err := tx.Delete(&Entry{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete lore %d: %w", it.ID, err)
				}
				if err := table.Shift(tx, nil, plan.Shift); err != nil {
					return err
				}
				ordering.ApplyTo(staged, plan.Changes, setOrder)
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

func members(data map[int64]Entry) []ordering.Member {
	return ordering.Collect(data, func(e Entry) (int, bool) { return e.Order, true })
}

func setOrder(e *Entry, order int) { e.Order = order }
