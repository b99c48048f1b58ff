package app

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/pkg/logger"
)

// startScheduler registers the daily jobs. Jobs run with ctx so they stop at shutdown.
func (a *App) startScheduler(ctx context.Context, cfg config.ScheduleConfig, s *services) *cron.Cron {
	c := cron.New()

	if cfg.Recommendations != "" {
		_, err := c.AddFunc(cfg.Recommendations, func() {
			recs, err := s.recommendation.Generate(ctx)
			if err != nil {
				logger.Log.Error("Scheduled recommendation run failed", zap.Error(err))
				return
			}
			logger.Log.Info("Scheduled recommendation run finished", zap.Int("count", len(recs)))
		})
		if err != nil {
			logger.Log.Warn("Invalid recommendations schedule", zap.String("expr", cfg.Recommendations), zap.Error(err))
		}
	}

	if cfg.Certifications != "" {
		_, err := c.AddFunc(cfg.Certifications, func() {
			views, err := s.certification.Expiring(ctx)
			if err != nil {
				logger.Log.Error("Certification expiry check failed", zap.Error(err))
				return
			}
			for _, v := range views {
				logger.Log.Warn("Certification needs renewal",
					zap.Uint("userId", v.UserID),
					zap.String("name", v.Name),
					zap.String("status", string(v.Status)),
				)
			}
		})
		if err != nil {
			logger.Log.Warn("Invalid certifications schedule", zap.String("expr", cfg.Certifications), zap.Error(err))
		}
	}

	c.Start()
	return c
}
