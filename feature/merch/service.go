package merch

import (
	"context"
	"fmt"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/database"
	"pwsi/core/ordering"
	"pwsi/core/registry"
	"pwsi/feature/dataparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var table = ordering.Table{Name: Item{}.TableName()}

// Params is where the shop status lives.
type Params interface {
	String(name string) string
	Set(ctx context.Context, p dataparams.Param) error
}

// Service keeps the merch table and its cache in step. Batches are ordered
// in one pass: the whole call writes each changed order once.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	params Params
	cache  *cache.Cache[int64, Item, []Item]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, params Params, logger *zap.Logger) *Service {
	return &Service{db: db, params: params, logger: logger, cache: cache.New(string(registry.Merch), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Item, error) {
		var rows []Item
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load merch: %w", err)
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
	s.logger.Info("Merch loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and clears the shop status.
func (s *Service) Reset(ctx context.Context) error {
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		if err := database.Truncate(s.db.WithContext(ctx), table.Name); err != nil {
			return err
		}
		clear(staged)
		return nil
	})
	if err != nil {
		return err
	}
	return s.SetStatus(ctx, "")
}

// Snapshot returns the sorted list.
func (s *Service) Snapshot() any { return s.cache.View() }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the merch sorted by order.
func (s *Service) GetAll() []Item { return s.cache.View() }

// Status returns the shop status.
func (s *Service) Status() string {
	return s.params.String(dataparams.MerchStatus)
}

// SetStatus changes the shop status.
func (s *Service) SetStatus(ctx context.Context, status string) error {
	return s.params.Set(ctx, dataparams.String(dataparams.MerchStatus, status))
}

// Add inserts every item. Requested positions are honoured in input order;
// missing, out of range or already claimed ones go to the back.
func (s *Service) Add(ctx context.Context, items []NewItem) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	if err := validateNames(items); err != nil {
		return nil, err
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		requested := make([]*int, len(items))
		for i, it := range items {
			requested[i] = it.Order
		}
		positions, changes := ordering.InsertBatch(members(staged), requested)

		recs := make([]Item, len(items))
		for i, it := range items {
			recs[i] = it.record(positions[i])
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&recs).Error; err != nil {
				return fmt.Errorf("insert merch: %w", err)
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

// Update applies the patches. All moves of the batch are resolved together
// and the first request for a position wins.
func (s *Service) Update(ctx context.Context, patches []ItemPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
		var moves []ordering.Reorder
		var touched []int64
		updates := make(map[int64]map[string]any)
		for i, p := range patches {
			rec, ok := staged[p.ID]
			if !ok {
				results[i] = batch.NoElement
				continue
			}
			results[i] = batch.Updated
			cols := p.apply(&rec)
			staged[p.ID] = rec
			if len(cols) > 0 {
				if updates[p.ID] == nil {
					updates[p.ID] = map[string]any{}
					touched = append(touched, p.ID)
				}
				for k, v := range cols {
					updates[p.ID][k] = v
				}
			}
			if p.Order != nil {
				moves = append(moves, ordering.Reorder{ID: p.ID, Order: *p.Order})
			}
		}
		if err := batch.Changed(results); err != nil {
			return err
		}
		changes := ordering.Rearrange(members(staged), moves)

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, id := range touched {
				if err := tx.Model(&Item{ID: id}).Updates(updates[id]).Error; err != nil {
					return fmt.Errorf("update merch %d: %w", id, err)
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

// Delete removes the referenced items and renumbers the rest.
func (s *Service) Delete(ctx context.Context, items []DeletedItem) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Item) error {
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
			if err := tx.Where("id IN ?", ids).Delete(&Item{}).Error; err != nil {
				return fmt.Errorf("delete merch: %w", err)
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

func members(data map[int64]Item) []ordering.Member {
	return ordering.Collect(data, func(it Item) (int, bool) { return it.Order, true })
}

func setOrder(it *Item, order int) { it.Order = order }
