package marathons

import (
	"context"
	"fmt"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/database"
	"pwsi/core/enrich"
	"pwsi/core/enrich/steam"
	"pwsi/core/ordering"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var table = ordering.Table{Name: Entry{}.TableName(), Partition: "marathon_id"}

// Prober resolves store data for Steam app ids.
type Prober interface {
	Probe(ctx context.Context, id int64) steam.Info
}

// Service keeps the marathons table and its cache in step. Games are ranked
// inside their marathon, marathons among themselves.
type Service struct {
	db     *gorm.DB
	steam  Prober
	logger *zap.Logger
	cache  *cache.Cache[int64, Entry, []Marathon]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, prober Prober, logger *zap.Logger) *Service {
	return &Service{db: db, steam: prober, logger: logger, cache: cache.New(string(registry.Marathons), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Entry, error) {
		var rows []Entry
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load marathons: %w", err)
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
	s.logger.Info("Marathons loaded", zap.Int("count", s.cache.Len()))
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

// Snapshot returns the grouped view.
func (s *Service) Snapshot() any { return s.cache.View() }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the marathons with their games.
func (s *Service) GetAll() []Marathon { return s.cache.View() }

// Add inserts the entries. Games pointing at a missing marathon, or at
// another game, are rejected. Steam data fills the blank link and picture.
func (s *Service) Add(ctx context.Context, items []NewEntry) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
	}
	for i := range items {
		if items[i].SteamID != nil {
			info := s.steam.Probe(ctx, *items[i].SteamID)
			enrich.FillString(&items[i].Link, info.Link)
			enrich.FillString(&items[i].Picture, info.Picture)
		}
	}

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Entry) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if it.MarathonID != nil && !isMarathon(staged, *it.MarathonID) {
					ids[i] = batch.Rejected
					continue
				}
				plan := ordering.Insert(members(staged, it.MarathonID), it.Order)
				if err := table.Shift(tx, it.MarathonID, plan.Shift); err != nil {
					return err
				}
				ordering.ApplyTo(staged, plan.Changes, setOrder)
				rec := it.record(plan.Position)
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert marathon entry: %w", err)
				}
				staged[rec.ID] = rec
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

// Update applies the patches. A new steam id refreshes link and picture
// unless the patch sets them itself.
func (s *Service) Update(ctx context.Context, patches []EntryPatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}
	for _, p := range patches {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	for i := range patches {
		if patches[i].SteamID != nil {
			info := s.steam.Probe(ctx, *patches[i].SteamID)
			enrich.FillString(&patches[i].Link, info.Link)
			enrich.FillString(&patches[i].Picture, info.Picture)
		}
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
				move := p.MarathonID != nil && !sameParent(rec.MarathonID, p.MarathonID)
				if move && !canAdopt(staged, rec, *p.MarathonID) {
					results[i] = batch.WrongParent
					continue
				}

				cols := p.apply(&rec)
				if move {
					if err := detach(tx, staged, rec); err != nil {
						return err
					}
					parent := *p.MarathonID
					rec.Order = len(members(staged, &parent)) + 1
					rec.MarathonID = &parent
					staged[rec.ID] = rec
					cols["marathon_id"] = parent
					cols[ordering.OrderColumn] = rec.Order
				}
				if p.Order != nil {
					if plan, ok := ordering.Move(members(staged, rec.MarathonID), p.ID, *p.Order); ok {
						if err := table.Shift(tx, rec.MarathonID, plan.Shift); err != nil {
							return err
						}
						ordering.ApplyTo(staged, plan.Changes, setOrder)
						rec.Order = plan.Position
						cols[ordering.OrderColumn] = plan.Position
					}
				}
				if len(cols) > 0 {
					if err := tx.Model(&Entry{ID: p.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update marathon entry %d: %w", p.ID, err)
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

// Delete removes the entries. Deleting a marathon removes its games too.
func (s *Service) Delete(ctx context.Context, items []DeletedEntry) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Entry) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				rec, ok := staged[it.ID]
				if !ok {
					continue
				}
				if err := detach(tx, staged, rec); err != nil {
					return err
				}
				if err := tx.Delete(&Entry{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete marathon entry %d: %w", it.ID, err)
				}
				delete(staged, it.ID)
				if rec.MarathonID == nil {
					if err := tx.Where("marathon_id = ?", it.ID).Delete(&Entry{}).Error; err != nil {
						return fmt.Errorf("delete games of marathon %d: %w", it.ID, err)
					}
					for id, e := range staged {
						if e.MarathonID != nil && *e.MarathonID == it.ID {
							delete(staged, id)
						}
					}
				}
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

func canAdopt(data map[int64]Entry, rec Entry, parent int64) bool {
	if parent == rec.ID || !isMarathon(data, parent) {
		return false
	}
	if rec.MarathonID == nil {
		for _, e := range data {
			if e.MarathonID != nil && *e.MarathonID == rec.ID {
				return false
			}
		}
	}
	return true
}

func detach(tx *gorm.DB, staged map[int64]Entry, rec Entry) error {
	plan := ordering.Remove(members(staged, rec.MarathonID), rec.ID)
	if err := table.Shift(tx, rec.MarathonID, plan.Shift); err != nil {
		return err
	}
	ordering.ApplyTo(staged, plan.Changes, setOrder)
	return nil
}

func isMarathon(data map[int64]Entry, id int64) bool {
	e, ok := data[id]
	return ok && e.MarathonID == nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func members(data map[int64]Entry, parent *int64) []ordering.Member {
	return ordering.Collect(data, func(e Entry) (int, bool) {
		return e.Order, sameParent(e.MarathonID, parent)
	})
}

func setOrder(e *Entry, order int) { e.Order = order }
