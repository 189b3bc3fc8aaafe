// Package settings is the flat per-user key-value store and the typed
// reminder settings kept in it.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/smith3v/tg-smile-reminder/pkg/db"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	KeySettings    = "settings"
	KeyOnboarded   = "hasOnboarded"
	KeyOnboarding  = "onboarding"
	KeyChatID      = "chatId"
	onboardedValue = "true"

	MinTimezoneOffset = -12
	MaxTimezoneOffset = 14
)

var ErrCorruptSettings = errors.New("stored settings are corrupt")

// Get returns the value stored under key; ok is false when it is absent.
func Get(ctx context.Context, userID int64, key string) (string, bool, error) {
	var entry db.SettingEntry
	err := db.DB.WithContext(ctx).Where("user_id = ? AND name = ?", userID, key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func Set(ctx context.Context, userID int64, key, value string) error {
	entry := db.SettingEntry{UserID: userID, Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	return db.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func Delete(ctx context.Context, userID int64, key string) error {
	return db.DB.WithContext(ctx).Where("user_id = ? AND name = ?", userID, key).Delete(&db.SettingEntry{}).Error
}

// UserSettings is what the settings screen edits.
type UserSettings struct {
	Reminder            reminder.Config `json:"reminder"`
	TimezoneOffsetHours int             `json:"timezoneOffsetHours"`
}

func Defaults() UserSettings {
	return UserSettings{Reminder: reminder.DefaultConfig()}
}

func (s UserSettings) Location() *time.Location {
	if s.TimezoneOffsetHours == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", s.TimezoneOffsetHours), s.TimezoneOffsetHours*60*60)
}

// Load returns the stored settings, or the defaults with found=false.
func Load(ctx context.Context, userID int64) (UserSettings, bool, error) {
	raw, ok, err := Get(ctx, userID, KeySettings)
	if err != nil {
		return UserSettings{}, false, err
	}
	if !ok {
		return Defaults(), false, nil
	}
	var s UserSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Defaults(), false, fmt.Errorf("%w: %v", ErrCorruptSettings, err)
	}
	return s, true, nil
}

func Save(ctx context.Context, userID int64, s UserSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return Set(ctx, userID, KeySettings, string(data))
}

func IsOnboarded(ctx context.Context, userID int64) (bool, error) {
	value, ok, err := Get(ctx, userID, KeyOnboarded)
	if err != nil {
		return false, err
	}
	return ok && value == onboardedValue, nil
}

func MarkOnboarded(ctx context.Context, userID int64) error {
	return Set(ctx, userID, KeyOnboarded, onboardedValue)
}

// ListOnboardedUsers returns the ids of every user that finished onboarding.
func ListOnboardedUsers(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := db.DB.WithContext(ctx).
		Model(&db.SettingEntry{}).
		Where("name = ? AND value = ?", KeyOnboarded, onboardedValue).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// SaveChatID records the chat reminders of the user are delivered to.
func SaveChatID(ctx context.Context, userID, chatID int64) error {
	return Set(ctx, userID, KeyChatID, strconv.FormatInt(chatID, 10))
}

// ChatID returns the recorded reminder chat of the user, or the user's
// private chat when none was recorded.
func ChatID(ctx context.Context, userID int64) (int64, error) {
	raw, ok, err := Get(ctx, userID, KeyChatID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return userID, nil
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chatID == 0 {
		return userID, fmt.Errorf("invalid chat id %q for user %d", raw, userID)
	}
	return chatID, nil
}
