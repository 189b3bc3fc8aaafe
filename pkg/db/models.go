// pkg/db/models.go
package db

import (
	"time"

	"gorm.io/datatypes"
)

// SettingEntry is one flat key-value pair of a user's settings.
type SettingEntry struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;uniqueIndex:idx_setting_user_name"`
	Name      string `gorm:"not null;size:64;uniqueIndex:idx_setting_user_name"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// ScheduledReminder is a reminder registered for delivery at FireAt. It is
// pending until either DeliveredAt or FailedAt is set.
type ScheduledReminder struct {
	ID            string         `gorm:"primaryKey;size:36"`
	UserID        int64          `gorm:"not null;index:idx_reminder_user_pending"`
	ChatID        int64          `gorm:"not null"`
	FireAt        time.Time      `gorm:"not null;index:idx_reminder_due"`
	Title         string         `gorm:"not null"`
	Body          string         `gorm:"not null"`
	Data          datatypes.JSON `gorm:"not null"`
	DeliveredAt   *time.Time     `gorm:"index:idx_reminder_due;index:idx_reminder_user_pending"`
	FailedAt      *time.Time
	FailureReason string `gorm:"not null;default:''"`
	CreatedAt     time.Time
}

func (r ScheduledReminder) Pending() bool {
	return r.DeliveredAt == nil && r.FailedAt == nil
}

// AllModels lists every table AutoMigrate manages.
func AllModels() []any {
	return []any{&SettingEntry{}, &ScheduledReminder{}}
}
