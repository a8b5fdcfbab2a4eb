package anime

import (
	"context"
	"fmt"
	"time"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/customers"
	"pwsi/core/database"
	"pwsi/core/enrich"
	"pwsi/core/enrich/mal"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Lookup fetches catalog metadata for a MyAnimeList id.
type Lookup interface {
	Lookup(ctx context.Context, id int64) mal.Info
}

// Service keeps the anime table and its cache in step.
type Service struct {
	db       *gorm.DB
	mal      Lookup
	streamer string
	logger   *zap.Logger
	cache    *cache.Cache[int64, Title, []Item]
	ids      *enrich.Counter
	now      func() time.Time
}

// NewService creates a service with an empty cache. Titles without a
// customer are counted for streamer.
func NewService(db *gorm.DB, lookup Lookup, streamer string, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		mal:      lookup,
		streamer: streamer,
		logger:   logger,
		cache:    cache.New(string(registry.Anime), resort),
		ids:      enrich.NewCounter(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Setup loads the table into the cache and seeds the local id counter.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Title, error) {
		var rows []Title
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load anime: %w", err)
		}
		data := make(map[int64]Title, len(rows))
		for _, r := range rows {
			data[r.ID] = r
			s.ids.See(r.ID)
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Anime loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table, empties the cache and restarts local ids.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Title) error {
		if err := database.Truncate(s.db.WithContext(ctx), Title{}.TableName()); err != nil {
			return err
		}
		clear(staged)
		s.ids.Reset()
		return nil
	})
}

// Snapshot returns every title by id.
func (s *Service) Snapshot() any { return raw(s.cache.Snapshot()) }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the aggregated list, or the plain titles by id when raw is set.
func (s *Service) GetAll(rawList bool) any {
	if rawList {
		return raw(s.cache.Snapshot())
	}
	return s.cache.View()
}

// List returns the aggregated list.
func (s *Service) List() []Item { return s.cache.View() }

// Customers counts the titles per customer under the resource lock.
func (s *Service) Customers(ctx context.Context) (customers.Report, error) {
	var report customers.Report
	err := s.cache.Read(ctx, func(data map[int64]Title) error {
		entries := make([]customers.Entry, 0, len(data))
		for _, t := range data {
			entries = append(entries, customers.Entry{
				OrderBy: t.OrderBy,
				Title:   customers.Title(t.Status, t.Series, &t.Name),
			})
		}
		report = customers.Build(s.streamer, entries)
		return nil
	})
	return report, err
}

// lookup fetches metadata for every catalog id before the lock is taken.
func (s *Service) lookup(ctx context.Context, ids []int64) map[int64]mal.Info {
	infos := make(map[int64]mal.Info)
	for _, id := range ids {
		if _, done := infos[id]; done || !enrich.External(id) {
			continue
		}
		infos[id] = s.mal.Lookup(ctx, id)
	}
	return infos
}

// Add inserts every title whose id is free. Catalog metadata fills the
// fields the caller left blank.
func (s *Service) Add(ctx context.Context, items []NewTitle) ([]int64, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	var catalog []int64
	for _, it := range items {
		if err := it.validate(); err != nil {
			return nil, err
		}
		if it.ID != nil {
			catalog = append(catalog, *it.ID)
		}
	}
	infos := s.lookup(ctx, catalog)

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Title) error {
		now := s.now()
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				var id int64
				if it.ID == nil {
					id = s.ids.NextFree(func(id int64) bool { _, ok := staged[id]; return ok })
				} else {
					id = *it.ID
				}
				if _, taken := staged[id]; taken {
					ids[i] = batch.Rejected
					continue
				}
				s.ids.See(id)
				info := infos[id]
				enrich.FillString(&it.Link, info.Link)
				enrich.FillString(&it.Type, info.Type)
				enrich.FillString(&it.Picture, info.Picture)
				enrich.FillInt(&it.Episodes, info.Episodes)

				rec := it.record(id, now)
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert anime %d: %w", id, err)
				}
				staged[id] = rec
				ids[i] = id
			}
			return batch.Added(ids)
		})
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies the patches. A new catalog id re-reads its metadata for
// every field the patch does not set itself.
func (s *Service) Update(ctx context.Context, patches []TitlePatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}
	var catalog []int64
	for _, p := range patches {
		if p.NewID != nil && *p.NewID > 0 {
			catalog = append(catalog, *p.NewID)
		}
	}
	infos := s.lookup(ctx, catalog)

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Title) error {
		now := s.now()
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				if p.NewID != nil && *p.NewID > 0 {
					if _, taken := staged[*p.NewID]; taken {
						results[i] = batch.IDTaken("anime")
						continue
					}
				}

				if p.NewID != nil && *p.NewID != 0 {
					newID := *p.NewID
					if newID < 0 {
						newID = s.ids.NextFree(func(id int64) bool { _, ok := staged[id]; return ok })
					}
					s.ids.See(newID)
					if err := tx.Model(&Title{}).Where("id = ?", p.ID).Update("id", newID).Error; err != nil {
						return fmt.Errorf("move anime %d to %d: %w", p.ID, newID, err)
					}
					delete(staged, p.ID)
					rec.ID = newID

					info := infos[newID]
					enrich.FillString(&p.Link, info.Link)
					enrich.FillString(&p.Type, info.Type)
					enrich.FillString(&p.Picture, info.Picture)
					if p.Episodes == nil && info.Episodes > 0 {
						episodes := info.Episodes
						p.Episodes = &episodes
					}
				}

				if cols := p.apply(&rec, now); len(cols) > 0 {
					if err := tx.Model(&Title{ID: rec.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update anime %d: %w", rec.ID, err)
					}
				}
				staged[rec.ID] = rec
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

// Delete removes the referenced titles.
func (s *Service) Delete(ctx context.Context, items []DeletedTitle) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Title) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				if err := tx.Delete(&Title{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete anime %d: %w", it.ID, err)
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
