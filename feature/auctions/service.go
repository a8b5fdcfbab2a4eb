package auctions

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

var table = ordering.Table{Name: Entry{}.TableName(), Partition: "auction_id"}

// Service keeps the auctions table and its cache in step. Auctions and lots
// share one table; each auction ranks its lots separately.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[int64, Entry, []Auction]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, cache: cache.New(string(registry.Auctions), resort)}
}

// Setup loads the table into the cache.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Load(ctx, func(ctx context.Context) (map[int64]Entry, error) {
		var rows []Entry
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load auctions: %w", err)
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
	s.logger.Info("Auctions loaded", zap.Int("count", s.cache.Len()))
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

// Snapshot returns every entry by id.
func (s *Service) Snapshot() any { return raw(s.cache.Snapshot()) }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the grouped auctions, or the plain rows by id when raw is set.
func (s *Service) GetAll(rawList bool) any {
	if rawList {
		return raw(s.cache.Snapshot())
	}
	return s.cache.View()
}

// Auctions returns the grouped view.
func (s *Service) Auctions() []Auction { return s.cache.View() }

// Add inserts the entries. A lot pointing at a missing auction, or at another
// lot, is rejected.
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
				if it.AuctionID != nil && !isAuction(staged, *it.AuctionID) {
					ids[i] = batch.Rejected
					continue
				}
				order := 0
				if !it.participant() {
					plan := ordering.Insert(members(staged, it.AuctionID), it.Order)
					if err := table.Shift(tx, it.AuctionID, plan.Shift); err != nil {
						return err
					}
					ordering.ApplyTo(staged, plan.Changes, setOrder)
					order = plan.Position
				}
				rec := it.record(order)
				if err := tx.Create(&rec).Error; err != nil {
					return fmt.Errorf("insert auction entry: %w", err)
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

// Update applies the patches. Moving a lot to another auction appends it
// there; an order outside [1, n] of the final partition is ignored.
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
				move := p.AuctionID != nil && !sameParent(rec.AuctionID, p.AuctionID)
				if move && !s.canAdopt(staged, rec, *p.AuctionID) {
					results[i] = batch.WrongParent
					continue
				}

				cols := p.apply(&rec)
				if move {
					if err := s.reparent(tx, staged, &rec, *p.AuctionID); err != nil {
						return err
					}
					cols["auction_id"] = *p.AuctionID
					cols[ordering.OrderColumn] = rec.Order
				}
				if p.Order != nil && rec.Ranked() {
					if plan, ok := ordering.Move(members(staged, rec.AuctionID), p.ID, *p.Order); ok {
						if err := table.Shift(tx, rec.AuctionID, plan.Shift); err != nil {
							return err
						}
						ordering.ApplyTo(staged, plan.Changes, setOrder)
						rec.Order = plan.Position
						cols[ordering.OrderColumn] = plan.Position
					}
				}
				if len(cols) > 0 {
					if err := tx.Model(&Entry{ID: p.ID}).Updates(cols).Error; err != nil {
						return fmt.Errorf("update auction entry %d: %w", p.ID, err)
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

// Delete removes the entries. Deleting an auction removes its lots too.
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
				if err := s.detach(tx, staged, rec); err != nil {
					return err
				}
				if err := tx.Delete(&Entry{}, it.ID).Error; err != nil {
					return fmt.Errorf("delete auction entry %d: %w", it.ID, err)
				}
				delete(staged, it.ID)
				if rec.AuctionID == nil {
					if err := tx.Where("auction_id = ?", it.ID).Delete(&Entry{}).Error; err != nil {
						return fmt.Errorf("delete lots of auction %d: %w", it.ID, err)
					}
					for id, e := range staged {
						if e.AuctionID != nil && *e.AuctionID == it.ID {
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

// canAdopt reports whether rec may become a lot of auction parent.
func (s *Service) canAdopt(data map[int64]Entry, rec Entry, parent int64) bool {
	if parent == rec.ID || !isAuction(data, parent) {
		return false
	}
	if rec.AuctionID == nil {
		for _, e := range data {
			if e.AuctionID != nil && *e.AuctionID == rec.ID {
				return false
			}
		}
	}
	return true
}

// reparent closes the gap rec leaves behind and appends it to parent.
// Participants stay unranked.
func (s *Service) reparent(tx *gorm.DB, staged map[int64]Entry, rec *Entry, parent int64) error {
	if err := s.detach(tx, staged, *rec); err != nil {
		return err
	}
	p := parent
	if rec.Ranked() {
		rec.Order = len(members(staged, &p)) + 1
	}
	rec.AuctionID = &p
	staged[rec.ID] = *rec
	return nil
}

// detach closes the gap a ranked entry leaves in its partition.
func (s *Service) detach(tx *gorm.DB, staged map[int64]Entry, rec Entry) error {
	if !rec.Ranked() {
		return nil
	}
	plan := ordering.Remove(members(staged, rec.AuctionID), rec.ID)
	if err := table.Shift(tx, rec.AuctionID, plan.Shift); err != nil {
		return err
	}
	ordering.ApplyTo(staged, plan.Changes, setOrder)
	return nil
}

func isAuction(data map[int64]Entry, id int64) bool {
	e, ok := data[id]
	return ok && e.AuctionID == nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// members lists the ranked entries of one partition; a nil parent selects
// the auctions themselves.
func members(data map[int64]Entry, parent *int64) []ordering.Member {
	return ordering.Collect(data, func(e Entry) (int, bool) {
		return e.Order, e.Ranked() && sameParent(e.AuctionID, parent)
	})
}

func setOrder(e *Entry, order int) { e.Order = order }
