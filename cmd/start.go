package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pwsi/core/backup"
	"pwsi/core/loader"
	"pwsi/core/server"
	"pwsi/core/storage"
	"pwsi/feature/admin"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateOnStart bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the site API server",
	Long:  `Loads every resource into memory, mounts the features and serves the HTTP API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.logger.Sync()
		logg := rt.logger

		if migrateOnStart {
			if err := rt.db.WithContext(ctx).AutoMigrate(models...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		s, err := buildSite(rt)
		if err != nil {
			return err
		}
		started := time.Now()
		if err := s.registry.SetupAll(ctx); err != nil {
			return fmt.Errorf("load resources: %w", err)
		}
		logg.Info("Resources loaded", zap.Duration("took", time.Since(started)))

		// Snapshots are optional: the API runs without object storage.
		var backups admin.Backuper
		if svc := newBackups(ctx, rt, s); svc != nil {
			if err := svc.Start(ctx); err != nil {
				return err
			}
			backups = svc
		}

		app, router := server.New(rt.cfg.Server, logg)

		mgr := loader.NewManager(logg)
		for _, f := range s.features {
			mgr.Register(f)
		}
		mgr.Register(admin.NewFeature(s.registry, backups, logg))
		if err := mgr.LoadAll(router); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		errs := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			errs <- app.Listen(":" + rt.cfg.Server.Port)
		}()

		select {
		case err := <-errs:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}
		logg.Info("Shutting down server...")
		err = app.ShutdownWithTimeout(10 * time.Second)
		s.registry.DisposeAll()
		return err
	},
}

// newBackups connects to object storage. It returns nil when storage is
// disabled or unreachable.
func newBackups(ctx context.Context, rt *runtime, s *site) *backup.Service {
	cfg := rt.cfg.Storage
	if !cfg.Enabled {
		rt.logger.Info("Snapshot storage disabled")
		return nil
	}
	client, err := storage.NewClient(cfg)
	if err != nil {
		rt.logger.Warn("Snapshot storage unavailable", zap.Error(err))
		return nil
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		rt.logger.Warn("Snapshot storage unavailable", zap.Error(err))
		return nil
	}
	return backup.NewService(rt.cfg.Backup, s.registry, client, cfg.Bucket, rt.logger)
}

func init() {
	startCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "create missing tables and columns before loading")
	RootCmd.AddCommand(startCmd)
}
