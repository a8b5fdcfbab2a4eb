package admin

import (
	"context"
	"fmt"

	"pwsi/core/apperr"
	"pwsi/core/backup"
	"pwsi/core/registry"

	"go.uber.org/zap"
)

// Backuper writes and lists resource snapshots.
type Backuper interface {
	Run(ctx context.Context) (*backup.Report, error)
	List(ctx context.Context, name registry.Name) ([]string, error)
	Latest(ctx context.Context, name registry.Name) ([]byte, error)
}

// Service runs operations that span every registered resource.
type Service struct {
	registry *registry.Registry
	backups  Backuper
	logger   *zap.Logger
}

// NewService creates an admin service. backups may be nil when no object
// storage is configured.
func NewService(reg *registry.Registry, backups Backuper, logger *zap.Logger) *Service {
	return &Service{registry: reg, backups: backups, logger: logger}
}

// Resources lists the registered resource names.
func (s *Service) Resources() []registry.Name {
	return s.registry.Names()
}

// Reset restores one resource to its defaults.
func (s *Service) Reset(ctx context.Context, name string) error {
	res, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("resource %q: %w", name, apperr.ErrNotFound)
	}
	if err := res.Reset(ctx); err != nil {
		return err
	}
	s.logger.Info("Resource reset", zap.String("resource", name))
	return nil
}

// Backup snapshots every resource.
func (s *Service) Backup(ctx context.Context) (*backup.Report, error) {
	if s.backups == nil {
		return nil, fmt.Errorf("backups are not configured: %w", apperr.ErrUnavailable)
	}
	return s.backups.Run(ctx)
}

func (s *Service) resolve(name string) (registry.Name, error) {
	if s.backups == nil {
		return "", fmt.Errorf("backups are not configured: %w", apperr.ErrUnavailable)
	}
	n, ok := registry.Parse(name)
	if !ok {
		return "", fmt.Errorf("resource %q: %w", name, apperr.ErrNotFound)
	}
	return n, nil
}

// Snapshots lists the stored snapshots of one resource, newest first.
func (s *Service) Snapshots(ctx context.Context, name string) ([]string, error) {
	n, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.backups.List(ctx, n)
}

// Latest returns the newest stored snapshot of one resource as raw JSON.
func (s *Service) Latest(ctx context.Context, name string) ([]byte, error) {
	n, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	return s.backups.Latest(ctx, n)
}
