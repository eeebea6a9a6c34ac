package app

import (
	"context"
	"time"

	"github.com/mx-space/landing/internal/config"
	"github.com/mx-space/landing/internal/modules/auth"
	"github.com/mx-space/landing/internal/modules/backup"
	pkgcron "github.com/mx-space/landing/internal/pkg/cron"
	"go.uber.org/zap"
)

const (
	jobAutoBackup    = "auto_backup"
	jobPurgeSessions = "purge_sessions"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, cfg *config.AppConfig, backups *backup.Service, authSvc *auth.Service, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        jobAutoBackup,
		Description: "snapshot the section collection",
		Interval:    cfg.Backup.Interval,
		Fn: func(ctx context.Context) error {
			item, err := backups.Create(ctx)
			if err != nil {
				cronLogger.Warn("backup failed", zap.Error(err))
				return err
			}
			cronLogger.Info("backup created", zap.String("name", item.Name), zap.String("size", item.SizeText))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        jobPurgeSessions,
		Description: "delete expired and revoked login sessions",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := authSvc.PurgeSessions(ctx)
			if err != nil {
				cronLogger.Warn("purge sessions failed", zap.Error(err))
				return err
			}
			cronLogger.Info("sessions purged", zap.Int64("deleted", n))
			return nil
		},
	})
}
