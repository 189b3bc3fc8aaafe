package notify

import (
	"context"
	"errors"
	"time"

	"github.com/smith3v/tg-smile-reminder/pkg/db"
	"gorm.io/gorm"
)

var ErrReminderNotFound = errors.New("reminder not found")

// Due returns pending reminders whose fire time is at or before now, oldest
// first.
func Due(ctx context.Context, now time.Time, limit int) ([]db.ScheduledReminder, error) {
	var reminders []db.ScheduledReminder
	query := db.DB.WithContext(ctx).
		Where("delivered_at IS NULL AND failed_at IS NULL AND fire_at <= ?", now.UTC()).
		Order("fire_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&reminders).Error
	return reminders, err
}

func MarkDelivered(ctx context.Context, id string, at time.Time) error {
	return db.DB.WithContext(ctx).
		Model(&db.ScheduledReminder{}).
		Where("id = ? AND delivered_at IS NULL AND failed_at IS NULL", id).
		Update("delivered_at", at.UTC()).Error
}

func MarkFailed(ctx context.Context, id string, at time.Time, reason string) error {
	return db.DB.WithContext(ctx).
		Model(&db.ScheduledReminder{}).
		Where("id = ? AND delivered_at IS NULL AND failed_at IS NULL", id).
		Updates(map[string]any{"failed_at": at.UTC(), "failure_reason": reason}).Error
}

// Find looks up a reminder by request id, whatever its state.
func Find(ctx context.Context, id string) (db.ScheduledReminder, error) {
	var r db.ScheduledReminder
	err := db.DB.WithContext(ctx).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r, ErrReminderNotFound
	}
	return r, err
}
