package challenges

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

// Service keeps the challenges table and its cache in step.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[int64, Challenge, map[string][]Challenge]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, cache: cache.New(string(registry.Challenges), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Challenge, error) {
		var rows []Challenge
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load challenges: %w", err)
		}
		data := make(map[int64]Challenge, len(rows))
		for _, r := range rows {
			data[r.ID] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Challenges loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and empties the cache.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Challenge) error {
		if err := database.Truncate(s.db.WithContext(ctx), Challenge{}.TableName()); err != nil {
			return err
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the challenges by type.
func (s *Service) Snapshot() any { return s.cache.View() }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the challenges by type. When types is not empty only
// those buckets are returned, missing ones as empty lists.
func (s *Service) GetAll(types []string) map[string][]Challenge {
	lists := s.cache.View()
	if len(types) == 0 {
		return lists
	}
	out := make(map[string][]Challenge, len(types))
	for _, t := range types {
		if l, ok := lists[t]; ok {
			out[t] = l
		} else {
			out[t] = []Challenge{}
		}
	}
	return out
}

// Add inserts the challenges.
func (s *Service) Add(ctx context.Context, items []NewChallenge) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Challenge) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				rec := it.record()
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert challenge: %w", err)
				}
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
func (s *Service) Update(ctx context.Context, patches []ChallengePatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Challenge) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				if cols := p.apply(&rec); len(cols) > 0 {
					if err := tx.Model(&Challenge{ID: p.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update challenge %d: %w", p.ID, err)
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

// Delete removes the referenced challenges.
func (s *Service) Delete(ctx context.Context, items []DeletedChallenge) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Challenge) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				if err := tx.Delete(&Challenge{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete challenge %d: %w", it.ID, err)
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
