package roulette

import (
	"context"
	"fmt"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/database"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service keeps the roulette awards and their cache in step. Award names
// are unique.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[int64, Award, Wheel]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, cache: cache.New(string(registry.Roulette), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Award, error) {
		var rows []Award
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load roulette awards: %w", err)
		}
		data := make(map[int64]Award, len(rows))
		for _, r := range rows {
			data[r.ID] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Roulette loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and empties the cache.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Award) error {
		if err := database.Truncate(s.db.WithContext(ctx), Award{}.TableName()); err != nil {
			return err
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the wheel.
func (s *Service) Snapshot() any { return s.cache.View() }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the wheel.
func (s *Service) GetAll() Wheel { return s.cache.View() }

// Add inserts every award whose name is free.
func (s *Service) Add(ctx context.Context, items []NewAward) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Award) error {
		names := nameIndex(staged)
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, taken := names[it.Name]; taken {
					ids[i] = batch.Rejected
					continue
				}
				rec := it.record()
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert award: %w", err)
				}
				staged[rec.ID] = rec
				names[rec.Name] = rec.ID
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

// Update applies the patches. A name held by another award is rejected.
func (s *Service) Update(ctx context.Context, patches []AwardPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}
	for _, p := range patches {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Award) error {
		names := nameIndex(staged)
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				if p.Name != nil {
					if owner, taken := names[*p.Name]; taken && owner != p.ID {
						results[i] = batch.NameNotUnique
						continue
					}
				}
				oldName := rec.Name
				if cols := p.apply(&rec); len(cols) > 0 {
					if err := tx.Model(&Award{ID: p.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update award %d: %w", p.ID, err)
					}
				}
				delete(names, oldName)
				names[rec.Name] = rec.ID
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

// Delete removes the referenced awards.
func (s *Service) Delete(ctx context.Context, items []DeletedAward) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Award) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				if err := tx.Delete(&Award{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete award %d: %w", it.ID, err)
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

func nameIndex(data map[int64]Award) map[string]int64 {
	names := make(map[string]int64, len(data))
	for id, a := range data {
		names[a.Name] = id
	}
	return names
}
