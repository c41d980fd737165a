package logging

import (
	"log/slog"
	"time"

	"github.com/kakpu/IT-onboarding/internal/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	retentionDays   = 30
	cleanupSchedule = "0 3 * * *"
)

// StartCleanup schedules a daily purge of system_logs older than 30 days.
// Activity logs are append-only and never purged. Stop the returned cron on
// shutdown.
func StartCleanup(db *gorm.DB) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(cleanupSchedule, func() { PurgeSystemLogs(db, time.Now()) }); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// PurgeSystemLogs deletes system logs older than the retention window
// relative to now and returns how many were removed.
func PurgeSystemLogs(db *gorm.DB, now time.Time) int64 {
	cutoff := now.UTC().AddDate(0, 0, -retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error, "action", "log_cleanup")
		return 0
	}
	if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
	return result.RowsAffected
}
