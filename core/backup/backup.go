package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"pwsi/core/apperr"
	"pwsi/core/registry"
	"pwsi/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Config holds configuration for resource snapshots.
type Config struct {
	// Cron schedules automatic snapshots. Empty disables the scheduler.
	Cron string `mapstructure:"cron" default:""`
	// Prefix is the object key prefix.
	Prefix string `mapstructure:"prefix" default:"snapshots"`
	// Keep is how many snapshots per resource survive pruning (0 keeps all).
	Keep int `mapstructure:"keep" default:"14"`
}

// Source provides the resources to snapshot.
type Source interface {
	Names() []registry.Name
	Lookup(name string) (registry.Resource, bool)
}

// Object is one stored snapshot.
type Object struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
}

// Report summarizes one backup run.
type Report struct {
	Started time.Time `json:"started"`
	Objects []Object  `json:"objects"`
	Pruned  int       `json:"pruned"`
}

// Service writes resource snapshots to object storage.
type Service struct {
	cfg    Config
	source Source
	client storage.Client
	bucket string
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a backup service.
func NewService(cfg Config, source Source, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		source: source,
		client: client,
		bucket: bucket,
		logger: logger,
		now:    time.Now,
	}
}

// Run snapshots every registered resource and prunes old snapshots.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	report := &Report{Started: s.now().UTC()}
	stamp := report.Started.Format("20060102T150405Z")

	for _, name := range s.source.Names() {
		res, ok := s.source.Lookup(string(name))
		if !ok {
			continue
		}
		body, err := json.Marshal(res.Snapshot())
		if err != nil {
			return report, fmt.Errorf("encode %s snapshot: %w", name, err)
		}

		key := path.Join(s.cfg.Prefix, string(name), fmt.Sprintf("%s-%s.json", stamp, uuid.NewString()[:8]))
		info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
			ContentType: "application/json",
		})
		if err != nil {
			return report, fmt.Errorf("upload %s snapshot: %w", name, err)
		}
		report.Objects = append(report.Objects, Object{Resource: string(name), Key: key, Size: info.Size})

		pruned, err := s.prune(ctx, name)
		if err != nil {
			s.logger.Warn("Snapshot pruning failed", zap.String("resource", string(name)), zap.Error(err))
		}
		report.Pruned += pruned
	}

	s.logger.Info("Snapshots written",
		zap.Int("objects", len(report.Objects)),
		zap.Int("pruned", report.Pruned),
	)
	return report, nil
}

// List returns the stored snapshot keys of one resource, newest first.
func (s *Service) List(ctx context.Context, name registry.Name) ([]string, error) {
	prefix := path.Join(s.cfg.Prefix, string(name)) + "/"
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, ".json") {
			keys = append(keys, obj.Key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// Latest returns the body of the newest snapshot of one resource.
func (s *Service) Latest(ctx context.Context, name registry.Name) ([]byte, error) {
	keys, err := s.List(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no snapshot of %s: %w", name, apperr.ErrNotFound)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, keys[0], minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", keys[0], err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", keys[0], err)
	}
	return body, nil
}

func (s *Service) prune(ctx context.Context, name registry.Name) (int, error) {
	if s.cfg.Keep <= 0 {
		return 0, nil
	}
	keys, err := s.List(ctx, name)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys[min(s.cfg.Keep, len(keys)):] {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
