// Package reminders delivers queued reminders and keeps every user's
// seven-day schedule topped up.
package reminders

import (
	"context"
	"time"

	"github.com/smith3v/tg-smile-reminder/pkg/db"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/notify"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
	"golang.org/x/time/rate"
)

const (
	defaultDeliveryInterval = 30 * time.Second
	defaultBatchSize        = 100
	defaultMaxLateness      = time.Hour
)

// Sender delivers one reminder to its chat.
type Sender interface {
	SendReminder(ctx context.Context, r db.ScheduledReminder) error
}

type DeliveryOptions struct {
	Interval      time.Duration
	RatePerSecond float64
	BatchSize     int
	// Reminders older than MaxLateness when picked up are dropped instead
	// of delivered.
	MaxLateness time.Duration
}

func (o DeliveryOptions) withDefaults() DeliveryOptions {
	if o.Interval <= 0 {
		o.Interval = defaultDeliveryInterval
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.MaxLateness <= 0 {
		o.MaxLateness = defaultMaxLateness
	}
	return o
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func StartDelivery(ctx context.Context, sender Sender, opts DeliveryOptions) {
	opts = opts.withDefaults()
	limiter := newLimiter(opts.RatePerSecond)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			processDue(ctx, sender, limiter, opts, now.UTC())
		}
	}
}

// processDue sends every due reminder and returns how many were delivered.
func processDue(ctx context.Context, sender Sender, limiter *rate.Limiter, opts DeliveryOptions, now time.Time) int {
	due, err := notify.Due(ctx, now, opts.BatchSize)
	if err != nil {
		logger.Error("failed to fetch due reminders", "error", err)
		return 0
	}

	delivered := 0
	blocked := make(map[int64]bool)
	for _, r := range due {
		if blocked[r.UserID] {
			continue
		}
		if now.Sub(r.FireAt) > opts.MaxLateness {
			if err := notify.MarkFailed(ctx, r.ID, now, "expired"); err != nil {
				logger.Error("failed to expire reminder", "reminder_id", r.ID, "error", err)
			}
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return delivered
		}
		switch handleReminder(ctx, sender, r, now) {
		case outcomeDelivered:
			delivered++
		case outcomeBlocked:
			blocked[r.UserID] = true
		}
	}
	return delivered
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeBlocked
	outcomeRetry
)

func handleReminder(ctx context.Context, sender Sender, r db.ScheduledReminder, now time.Time) outcome {
	err := sender.SendReminder(ctx, r)
	switch {
	case err == nil:
		if err := notify.MarkDelivered(ctx, r.ID, now); err != nil {
			logger.Error("failed to mark reminder delivered", "reminder_id", r.ID, "error", err)
		}
		return outcomeDelivered
	case notify.IsForbidden(err):
		logger.Warn("chat blocked the bot, dropping reminders", "user_id", r.UserID, "chat_id", r.ChatID)
		if err := notify.MarkFailed(ctx, r.ID, now, "forbidden"); err != nil {
			logger.Error("failed to mark reminder failed", "reminder_id", r.ID, "error", err)
		}
		if err := notify.CancelPending(ctx, r.UserID); err != nil {
			logger.Error("failed to cancel reminders of blocked chat", "user_id", r.UserID, "error", err)
		}
		disableReminders(ctx, r.UserID)
		return outcomeBlocked
	default:
		logger.Warn("failed to send reminder, will retry", "reminder_id", r.ID, "user_id", r.UserID, "error", err)
		return outcomeRetry
	}
}

// disableReminders turns reminders off so the daily refresh stops scheduling
// for a chat that blocked the bot. /settings turns them back on.
func disableReminders(ctx context.Context, userID int64) {
	s, found, err := settings.Load(ctx, userID)
	if err != nil || !found || !s.Reminder.Enabled {
		if err != nil {
			logger.Error("failed to load settings of blocked chat", "user_id", userID, "error", err)
		}
		return
	}
	s.Reminder.Enabled = false
	if err := settings.Save(ctx, userID, s); err != nil {
		logger.Error("failed to disable reminders of blocked chat", "user_id", userID, "error", err)
	}
}
