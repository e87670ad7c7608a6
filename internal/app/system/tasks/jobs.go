// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/foodgestor/internal/app/system/metrics"
	"github.com/dalemusser/foodgestor/internal/domain/models"
	"go.uber.org/zap"
)

// OpenSessions lists register sessions still open that were opened before cutoff.
type OpenSessions interface {
	OpenedBefore(ctx context.Context, cutoff time.Time) ([]models.RegisterSession, error)
}

// NotificationPruner deletes notifications created before cutoff.
type NotificationPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetCodeCleaner unsets reset codes that expired before now.
type ResetCodeCleaner interface {
	ClearExpiredResetCodes(ctx context.Context, now time.Time) (int64, error)
}

// StaleRegisterCheckJob creates a job that reports register sessions left
// open longer than threshold. Sessions are never closed automatically since
// closing needs the counted cash.
func StaleRegisterCheckJob(sessions OpenSessions, logger *zap.Logger, threshold time.Duration) Job {
	return Job{
		Name:     "stale-register-check",
		Schedule: "@hourly",
		Run: func(ctx context.Context) error {
			stale, err := sessions.OpenedBefore(ctx, time.Now().Add(-threshold))
			if err != nil {
				return err
			}
			metrics.StaleRegisters.Set(float64(len(stale)))
			for _, s := range stale {
				logger.Warn("register session open too long",
					zap.String("session_id", s.ID.Hex()),
					zap.String("restaurant_id", s.RestaurantID.Hex()),
					zap.String("cashier", s.CashierName),
					zap.Time("opened_at", s.OpenedAt))
			}
			return nil
		},
	}
}

// NotificationPruneJob creates a job that removes notifications older than retention.
func NotificationPruneJob(store NotificationPruner, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "notification-prune",
		Schedule: "@daily",
		Run: func(ctx context.Context) error {
			count, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned notifications",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}

// ResetCodeCleanupJob creates a job that removes expired password-reset codes.
// ResetPassword already refuses expired codes; this keeps them from lingering.
func ResetCodeCleanupJob(users ResetCodeCleaner, logger *zap.Logger) Job {
	return Job{
		Name:     "reset-code-cleanup",
		Schedule: "@every 15m",
		Run: func(ctx context.Context) error {
			count, err := users.ClearExpiredResetCodes(ctx, time.Now())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleared expired reset codes", zap.Int64("count", count))
			}
			return nil
		},
	}
}
