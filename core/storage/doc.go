// Package storage wraps the MinIO client the resource snapshots are written
// with.
//
// The Client interface covers the calls the backup service makes, so tests
// use the mock in core/storage/mocks. EnsureBucket creates the snapshot
// bucket on first start.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
