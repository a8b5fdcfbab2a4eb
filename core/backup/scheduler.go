package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"
)

// Start runs Run on the configured cron schedule until ctx is done. It is a
// no-op when no cron expression is configured.
func (s *Service) Start(ctx context.Context) error {
	if s.cfg.Cron == "" {
		s.logger.Info("Scheduled snapshots disabled")
		return nil
	}
	if !gronx.IsValid(s.cfg.Cron) {
		return fmt.Errorf("invalid backup cron expression: %s", s.cfg.Cron)
	}

	s.logger.Info("Scheduled snapshots enabled", zap.String("cron", s.cfg.Cron))
	go s.schedule(ctx)
	return nil
}

func (s *Service) schedule(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(s.cfg.Cron, s.now().UTC(), false)
		wait := time.Until(next)
		if err != nil {
			s.logger.Error("Computing next snapshot tick failed", zap.Error(err))
			wait = 30 * time.Second
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Snapshot scheduler stopping")
			return
		case <-time.After(wait):
		}
		if err != nil {
			continue
		}

		if _, err := s.Run(ctx); err != nil {
			s.logger.Error("Scheduled snapshot failed", zap.Error(err))
		}
	}
}
