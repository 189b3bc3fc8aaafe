package db

import (
	"context"
	"time"

	"github.com/smith3v/tg-smile-reminder/pkg/logger"
)

const ReminderCleanupInterval = time.Hour

// CleanupFinishedReminders removes delivered and failed reminders that
// finished before cutoff. Pending reminders are never touched.
func CleanupFinishedReminders(cutoff time.Time) (int64, error) {
	if DB == nil {
		return 0, nil
	}
	var deleted int64

	res := DB.Where("delivered_at IS NOT NULL AND delivered_at <= ?", cutoff.UTC()).Delete(&ScheduledReminder{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	res = DB.Where("failed_at IS NOT NULL AND failed_at <= ?", cutoff.UTC()).Delete(&ScheduledReminder{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	return deleted, nil
}

func StartReminderCleanup(ctx context.Context, interval, retention time.Duration) {
	if interval <= 0 {
		interval = ReminderCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			deleted, err := CleanupFinishedReminders(now.Add(-retention))
			if err != nil {
				logger.Error("failed to cleanup finished reminders", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("cleaned up finished reminders", "deleted", deleted)
			}
		}
	}
}
