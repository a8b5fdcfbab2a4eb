package dataparams

import (
	"context"
	"fmt"
	"sort"

	"pwsi/core/apperr"
	"pwsi/core/batch"
	"pwsi/core/cache"
	"pwsi/core/database"
	"pwsi/core/registry"
	"pwsi/core/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service keeps the data params table and its cache in step.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	cache  *cache.Cache[string, Param, View]
}

// NewService creates a service with an empty cache.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger, cache: cache.New(string(registry.DataParams), resort)}
}

// Setup loads the table and inserts the missing defaults.
func (s *Service) Setup(ctx context.Context) error {
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Param) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var rows []Param
			if err := tx.Find(&rows).Error; err != nil {
				return fmt.Errorf("load data params: %w", err)
			}
			clear(staged)
			for _, r := range rows {
				staged[r.Name] = r
			}
			return seed(tx, staged)
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("Data params loaded", zap.Int("count", s.cache.Len()))
	return nil
}

// Reset truncates the table and restores the defaults.
func (s *Service) Reset(ctx context.Context) error {
	return s.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Param) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := database.Truncate(tx, Param{}.TableName()); err != nil {
				return err
			}
			clear(staged)
			return seed(tx, staged)
		})
	})
}

func seed(tx *gorm.DB, staged map[string]Param) error {
	for _, d := range Defaults() {
		if _, ok := staged[d.Name]; ok {
			continue
		}
		if err := tx.Create(&d).Error; err != nil {
			return fmt.Errorf("seed %s: %w", d.Name, err)
		}
		staged[d.Name] = d
	}
	return nil
}

// Snapshot returns the raw rows.
func (s *Service) Snapshot() any { return s.GetAll() }

// Dispose drops the cached records.
func (s *Service) Dispose() { s.cache.Dispose() }

// GetAll returns the raw rows sorted by name.
func (s *Service) GetAll() []Param {
	data := s.cache.Snapshot()
	out := make([]Param, 0, len(data))
	for _, p := range data {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the value of one param.
func (s *Service) Get(name string) (any, bool) {
	v, ok := s.cache.View()[name]
	return v, ok
}

// String returns a param as a string, "" when missing.
func (s *Service) String(name string) string {
	v, _ := s.Get(name)
	return utils.ToString(v)
}

// Bool returns a param as a bool, false when missing.
func (s *Service) Bool(name string) bool {
	v, _ := s.Get(name)
	return utils.ToBool(v)
}

// Int returns a param as an int, 0 when missing.
func (s *Service) Int(name string) int {
	v, _ := s.Get(name)
	return utils.ToInt(v)
}

// Add inserts params with new names. Each item reports whether it was added.
func (s *Service) Add(ctx context.Context, items []Param) ([]bool, error) {
	if err := check(items); err != nil {
		return nil, err
	}
	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Param) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range items {
				if _, ok := staged[p.Name]; ok {
					continue
				}
				if err := tx.Create(&p).Error; err != nil {
					return fmt.Errorf("insert data param %s: %w", p.Name, err)
				}
				staged[p.Name] = p
				results[i] = true
			}
			for _, ok := range results {
				if ok {
					return nil
				}
			}
			return fmt.Errorf("params already exist: %w", apperr.ErrConflict)
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Update replaces the value of existing params.
func (s *Service) Update(ctx context.Context, items []Param) ([]string, error) {
	if err := check(items); err != nil {
		return nil, err
	}
	results := make([]string, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Param) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, p := range items {
				if _, ok := staged[p.Name]; !ok {
					results[i] = batch.NoElement
					continue
				}
				err := tx.Model(&Param{}).Where("name = ?", p.Name).Updates(p.columns()).Error
				if err != nil {
					return fmt.Errorf("update data param %s: %w", p.Name, err)
				}
				staged[p.Name] = p
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

// Set updates a single param.
func (s *Service) Set(ctx context.Context, p Param) error {
	_, err := s.Update(ctx, []Param{p})
	return err
}

// Delete removes params. Defaults are never removed.
func (s *Service) Delete(ctx context.Context, items []ParamName) ([]bool, error) {
	if err := batch.Check(items); err != nil {
		return nil, err
	}
	results := make([]bool, len(items))
	err := s.cache.Mutate(ctx, func(ctx context.Context, staged map[string]Param) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			protected := false
			for i, it := range items {
				if isDefault(it.Name) {
					protected = true
					continue
				}
				if _, ok := staged[it.Name]; !ok {
					continue
				}
				if err := tx.Where("name = ?", it.Name).Delete(&Param{}).Error; err != nil {
					return fmt.Errorf("delete data param %s: %w", it.Name, err)
				}
				delete(staged, it.Name)
				results[i] = true
			}
			err := batch.Deleted(results)
			if err != nil && protected {
				return fmt.Errorf("can't remove params used in code: %w", apperr.ErrConflict)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func check(items []Param) error {
	if err := batch.Check(items); err != nil {
		return err
	}
	for _, p := range items {
		if err := p.validate(); err != nil {
			return err
		}
	}
	return nil
}
