package credits

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

var table = ordering.Table{Name: Credit{}.TableName()}

// Service keeps the credits table and its cache in step, ordering batches
// in one pass.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[int64, Credit, []Credit]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, cache: cache.New(string(registry.Credits), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Credit, error) {
		var rows []Credit
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load credits: %w", err)
		}
		data := make(map[int64]Credit, len(rows))
		for _, r := range rows {
			data[r.ID] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Credits loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and empties the cache.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Credit) error {
		if err := database.Truncate(s.db.WithContext(ctx), table.Name); err != nil {
			return err
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the records by id.
func (s *Service) Snapshot() any { return s.GetAll(true) }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the credits sorted by order, or by id when raw is set.
func (s *Service) GetAll(rawList bool) []Credit {
	if rawList {
		return raw(s.cache.Snapshot())
	}
	return s.cache.View()
}

// Add inserts every credit, resolving colliding positions in input order.
func (s *Service) Add(ctx context.Context, items []NewCredit) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Credit) error {
		requested := make([]*int, len(items))
		for i, it := range items {
			requested[i] = it.Order
		}
		positions, changes := ordering.InsertBatch(members(staged), requested)

		recs := make([]Credit, len(items))
		for i, it := range items {
			recs[i] = it.record(positions[i])
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&recs).Error; err != nil {
				return fmt.Errorf("insert credits: %w", err)
			}
			return table.Apply(tx, changes)
		})
		if err != nil {
			return err
		}
		ordering.ApplyTo(staged, changes, setOrder)
		for i, r := range recs {
			staged[r.ID] = r
			ids[i] = r.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies the patches and resolves every move of the batch at once.
func (s *Service) Update(ctx context.Context, patches []CreditPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Credit) error {
		type write struct {
			id   int64
			cols map[string]any
		}
		var writes []write
		var moves []ordering.Reorder
		for i, p := range patches {
			rec, ok := staged[p.ID]
			if !ok {
				results[i] = batch.NoElement
				continue
			}
			results[i] = batch.Updated
			if cols := p.apply(&rec); len(cols) > 0 {
				writes = append(writes, write{p.ID, cols})
			}
			staged[p.ID] = rec
			if p.Order != nil {
				moves = append(moves, ordering.Reorder{ID: p.ID, Order: *p.Order})
			}
		}
		if err := batch.Changed(results); err != nil {
			return err
		}
		changes := ordering.Rearrange(members(staged), moves)

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, w := range writes {
				if err := tx.Model(&Credit{ID: w.id}).Updates(w.cols).Error; err != nil {
					return fmt.Errorf("update credit %d: %w", w.id, err)
				}
			}
			return table.Apply(tx, changes)
		})
		if err != nil {
			return err
		}
		ordering.ApplyTo(staged, changes, setOrder)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Delete removes the referenced credits and renumbers the rest.
func (s *Service) Delete(ctx context.Context, items []DeletedCredit) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Credit) error {
		var ids []int64
		for i, it := range items {
			if _, ok := staged[it.ID]; ok {
				results[i] = true
				ids = append(ids, it.ID)
				delete(staged, it.ID)
			}
		}
		if err := batch.Deleted(results); err != nil {
			return err
		}
		changes := ordering.Compact(members(staged))

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id IN ?", ids).Delete(&Credit{}).Error; err != nil {
				return fmt.Errorf("delete credits: %w", err)
			}
			return table.Apply(tx, changes)
		})
		if err != nil {
			return err
		}
		ordering.ApplyTo(staged, changes, setOrder)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func members(data map[int64]Credit) []ordering.Member {
	return ordering.Collect(data, func(c Credit) (int, bool) { return c.Order, true })
}

func setOrder(c *Credit, order int) { c.Order = order }
