package socials

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

var table = ordering.Table{Name: Social{}.TableName()}

// Service keeps the socials table and its cache in step.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[int64, Social, []Social]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
		cache:  cache.New(string(registry.Socials), resort),
	}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Social, error) {
		var rows []Social
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load socials: %w", err)
		}
		data := make(map[int64]Social, len(rows))
		for _, r := range rows {
			data[r.ID] = r
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Socials loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and empties the cache.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Social) error {
		if err := database.Truncate(s.db.WithContext(ctx), table.Name); err != nil {
			return err
		}
		clear(staged)
		return nil
	})
}

// Snapshot returns the sorted list.
func (s *Service) Snapshot() any {
	return s.cache.View()
}

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the socials sorted by order.
func (s *Service) GetAll() []Social {
	return s.cache.View()
}

// Add inserts every item whose link is not taken yet. Each item gets its
// new id or batch.Rejected.
func (s *Service) Add(ctx context.Context, items []NewSocial) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Social) error {
		links := linkIndex(staged)
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, taken := links[it.Link]; taken {
					ids[i] = batch.Rejected
					continue
				}
				plan := ordering.Insert(members(staged), it.Order)
				if err := table.Shift(tx, nil, plan.Shift); err != nil {
					return err
				}
				rec := it.record(plan.Position)
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert social: %w", err)
				}
				ordering.ApplyTo(staged, plan.Changes, setOrder)
				staged[rec.ID] = rec
				links[rec.Link] = rec.ID
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

// Update applies the patches. An order outside [1, n] leaves the position
// unchanged while the other fields are still written.
func (s *Service) Update(ctx context.Context, patches []SocialPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Social) error {
		links := linkIndex(staged)
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				if p.Link != nil {
					if owner, taken := links[*p.Link]; taken && owner != p.ID {
						results[i] = batch.LinkNotUnique
						continue
					}
				}

				oldLink := rec.Link
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
					if err := tx.Model(&Social{ID: p.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update social %d: %w", p.ID, err)
					}
				}
				delete(links, oldLink)
				links[rec.Link] = rec.ID
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

// Delete removes the referenced socials and closes the order gaps.
func (s *Service) Delete(ctx context.Context, items []DeletedSocial) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Social) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				plan := ordering.Remove(members(staged), it.ID)
				if err := tx.Delete(&Social{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete social %d: %w", it.ID, err)
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

func members(data map[int64]Social) []ordering.Member {
	return ordering.Collect(data, func(r Social) (int, bool) { return r.Order, true })
}

func setOrder(r *Social, order int) { r.Order = order }

func linkIndex(data map[int64]Social) map[string]int64 {
	links := make(map[string]int64, len(data))
	for id, r := range data {
		links[r.Link] = id
	}
	return links
}
