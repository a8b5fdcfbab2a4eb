package games

import (
	"context"
	"fmt"
	"sort"

	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/customers"
	"pwsi/core/database"
	"pwsi/core/enrich"
	"pwsi/core/enrich/steam"
	"pwsi/core/registry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Prober resolves store data for Steam app ids.
type Prober interface {
	Probe(ctx context.Context, id int64) steam.Info
}

// Service keeps the games table and its cache in step.
type Service struct {
	db       *gorm.DB
	steam    Prober
	streamer string
	logger   *zap.Logger
	cache    *cache.Cache[int64, Game, Catalog]
	ids      *enrich.Counter
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, prober Prober, streamer string, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		steam:    prober,
		streamer: streamer,
		logger:   logger,
		cache:    cache.New(string(registry.Games), resort),
		ids:      enrich.NewCounter(),
	}
}

// Setup loads the table into the cache and seeds the local id counter.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Game, error) {
		var rows []Game
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load games: %w", err)
		}
		data := make(map[int64]Game, len(rows))
		for _, r := range rows {
			data[r.ID] = r
			s.ids.See(r.ID)
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Games loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table, empties the cache and restarts local ids.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Game) error {
		if err := database.Truncate(s.db.WithContext(ctx), Game{}.TableName()); err != nil {
			return err
		}
		clear(staged)
		s.ids.Reset()
		return nil
	})
}

// Snapshot returns the games by type.
func (s *Service) Snapshot() any { return s.cache.View().Lists }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the games by type. When types is not empty only those
// buckets are returned, missing ones as empty lists.
func (s *Service) GetAll(types []string) map[string][]Game {
	lists := s.cache.View().Lists
	if len(types) == 0 {
		return lists
	}
	out := make(map[string][]Game, len(types))
	for _, t := range types {
		if l, ok := lists[t]; ok {
			out[t] = l
		} else {
			out[t] = []Game{}
		}
	}
	return out
}

// Genres returns the sorted genres of one type.
func (s *Service) Genres(gameType string) []string {
	if g, ok := s.cache.View().Genres[gameType]; ok {
		return g
	}
	return []string{}
}

// Customers counts the games per customer under the resource lock.
func (s *Service) Customers(ctx context.Context) (customers.Report, error) {
	var report customers.Report
	err := s.cache.Read(ctx, func(data map[int64]Game) error {
		entries := make([]customers.Entry, 0, len(data))
		for _, g := range data {
			entries = append(entries, customers.Entry{
				OrderBy: g.OrderBy,
				Title:   customers.Title(g.Status, g.Subname, &g.Name),
			})
		}
		report = customers.Build(s.streamer, entries)
		return nil
	})
	return report, err
}

func (s *Service) probe(ctx context.Context, ids []int64) map[int64]steam.Info {
	infos := make(map[int64]steam.Info)
	for _, id := range ids {
		if _, done := infos[id]; done || !enrich.External(id) {
			continue
		}
		infos[id] = s.steam.Probe(ctx, id)
	}
	return infos
}

// Add inserts every game whose id is free. Store data fills a blank link
// and picture.
func (s *Service) Add(ctx context.Context, items []NewGame) ([]int64, error) {
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
	infos := s.probe(ctx, catalog)

	ids := make([]int64, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Game) error {
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
				enrich.FillString(&it.Picture, info.Picture)

				rec := it.record(id)
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert game %d: %w", id, err)
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

// Update applies the patches. A new Steam id refreshes link and picture
// unless the patch sets them itself.
func (s *Service) Update(ctx context.Context, patches []GamePatch) ([]string, error) {
	if err := batch.Check(patches); err != nil {
		return nil, err
	}
	var catalog []int64
	for _, p := range patches {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if p.NewID != nil && *p.NewID > 0 {
			catalog = append(catalog, *p.NewID)
		}
	}
	infos := s.probe(ctx, catalog)

	results := make([]string, len(patches))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Game) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range patches {
				rec, ok := staged[p.ID]
				if !ok {
					results[i] = batch.NoElement
					continue
				}
				if p.NewID != nil && *p.NewID > 0 {
					if _, taken := staged[*p.NewID]; taken {
						results[i] = batch.IDTaken("game")
						continue
					}
				}

				if p.NewID != nil && *p.NewID != 0 {
					newID := *p.NewID
					if newID < 0 {
						newID = s.ids.NextFree(func(id int64) bool { _, ok := staged[id]; return ok })
					}
					s.ids.See(newID)
					if err := tx.Model(&Game{}).Where("id = ?", p.ID).Update("id", newID).Error; err != nil {
						return fmt.Errorf("move game %d to %d: %w", p.ID, newID, err)
					}
					delete(staged, p.ID)
					rec.ID = newID

					info := infos[newID]
					enrich.FillString(&p.Link, info.Link)
					enrich.FillString(&p.Picture, info.Picture)
				}

				if cols := p.apply(&rec); len(cols) > 0 {
					if err := tx.Model(&Game{ID: rec.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update game %d: %w", rec.ID, err)
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

// UpdateGenres renames genres across every game.
func (s *Service) UpdateGenres(ctx context.Context, renames []GenreRename) ([]string, error) {
	if err := batch.Check(renames); err != nil {
		return nil, err
	}

	results := make([]string, len(renames))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Game) error {
		genres := map[string]bool{}
		for _, g := range staged {
			genres[g.Genre] = true
		}
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, r := range renames {
				if !genres[r.Name] {
					results[i] = batch.NoElement
					continue
				}
				if genres[r.NewName] {
					results[i] = batch.NameNotUnique
					continue
				}
				if err := tx.Model(&Game{}).Where("genre = ?", r.Name).Update("genre", r.NewName).Error; err != nil {
					return fmt.Errorf("rename genre %q: %w", r.Name, err)
				}
				for id, g := range staged {
					if g.Genre == r.Name {
						g.Genre = r.NewName
						staged[id] = g
					}
				}
				delete(genres, r.Name)
				genres[r.NewName] = true
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

// Delete removes the referenced games.
func (s *Service) Delete(ctx context.Context, items []DeletedGame) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}

	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[int64]Game) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, it := range items {
				if _, ok := staged[it.ID]; !ok {
					continue
				}
				if err := tx.Delete(&Game{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete game %d: %w", it.ID, err)
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

// Types lists the known game types.
func (s *Service) Types() []string {
	lists := s.cache.View().Lists
	out := make([]string, 0, len(lists))
	for t := range lists {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
