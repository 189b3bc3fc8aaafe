package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smith3v/tg-smile-reminder/pkg/db"
	"gorm.io/datatypes"
)

// Reacher reports whether a chat still accepts messages from the bot.
type Reacher interface {
	Reachable(ctx context.Context, chatID int64) (bool, error)
}

var ErrNoDatabase = errors.New("database is not initialized")

// Channel is one user's view of the notification service. It implements
// reminder.Notifier.
type Channel struct {
	UserID  int64
	ChatID  int64
	reacher Reacher
}

func NewChannel(userID, chatID int64, reacher Reacher) *Channel {
	return &Channel{UserID: userID, ChatID: chatID, reacher: reacher}
}

// RequestPermission is granted when the chat is reachable. A chat that
// blocked the bot is a denial, not an error.
func (c *Channel) RequestPermission(ctx context.Context) (bool, error) {
	if c.reacher == nil {
		return true, nil
	}
	return c.reacher.Reachable(ctx, c.ChatID)
}

func (c *Channel) ScheduleAt(ctx context.Context, fireAt time.Time, title, body string) (string, error) {
	if db.DB == nil {
		return "", ErrNoDatabase
	}
	data, err := datatypes.NewJSONType(reminderData{Quote: body}).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode reminder data: %w", err)
	}
	r := db.ScheduledReminder{
		ID:     uuid.NewString(),
		UserID: c.UserID,
		ChatID: c.ChatID,
		FireAt: fireAt.UTC(),
		Title:  title,
		Body:   body,
		Data:   datatypes.JSON(data),
	}
	if err := db.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return "", err
	}
	return r.ID, nil
}

// CancelAll drops every pending reminder of the user. Delivered and failed
// rows are kept for the cleanup job.
func (c *Channel) CancelAll(ctx context.Context) error {
	if db.DB == nil {
		return ErrNoDatabase
	}
	return CancelPending(ctx, c.UserID)
}

// Pending lists upcoming reminders ordered by fire time; limit <= 0 means all.
func (c *Channel) Pending(ctx context.Context, limit int) ([]db.ScheduledReminder, error) {
	var reminders []db.ScheduledReminder
	query := db.DB.WithContext(ctx).
		Where("user_id = ? AND delivered_at IS NULL AND failed_at IS NULL", c.UserID).
		Order("fire_at, id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&reminders).Error
	return reminders, err
}

func (c *Channel) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.DB.WithContext(ctx).
		Model(&db.ScheduledReminder{}).
		Where("user_id = ? AND delivered_at IS NULL AND failed_at IS NULL", c.UserID).
		Count(&count).Error
	return count, err
}

func CancelPending(ctx context.Context, userID int64) error {
	return db.DB.WithContext(ctx).
		Where("user_id = ? AND delivered_at IS NULL AND failed_at IS NULL", userID).
		Delete(&db.ScheduledReminder{}).Error
}

// CancelPendingAfter drops the user's pending reminders that fire after t.
// Reminders already due stay queued for delivery.
func CancelPendingAfter(ctx context.Context, userID int64, t time.Time) error {
	return db.DB.WithContext(ctx).
		Where("user_id = ? AND delivered_at IS NULL AND failed_at IS NULL AND fire_at > ?", userID, t.UTC()).
		Delete(&db.ScheduledReminder{}).Error
}

type reminderData struct {
	Quote string `json:"quote"`
}

// QuoteOf returns the quote carried in a reminder's payload, falling back to
// its body.
func QuoteOf(r db.ScheduledReminder) string {
	var data reminderData
	if err := json.Unmarshal(r.Data, &data); err == nil && data.Quote != "" {
		return data.Quote
	}
	return r.Body
}
