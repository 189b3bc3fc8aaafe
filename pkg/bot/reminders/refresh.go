package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/notify"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

// Clock is the time source reminders are scheduled against.
var Clock = time.Now

// Apply replaces the user's pending reminders according to s, in the user's
// timezone.
func Apply(ctx context.Context, notifier reminder.Notifier, s settings.UserSettings) (int, error) {
	return applyAt(ctx, notifier, s, Clock())
}

func applyAt(ctx context.Context, notifier reminder.Notifier, s settings.UserSettings, now time.Time) (int, error) {
	scheduler := reminder.NewScheduler(notifier,
		reminder.WithClock(func() time.Time { return now }),
		reminder.WithLocation(s.Location()),
	)
	return scheduler.Apply(ctx, s.Reminder)
}

// refreshChannel keeps reminders that are already due when the horizon is
// rolled forward, so the delivery loop still sends them.
type refreshChannel struct {
	*notify.Channel
	now time.Time
}

func (c refreshChannel) CancelAll(ctx context.Context) error {
	return notify.CancelPendingAfter(ctx, c.UserID, c.now)
}

// RefreshAll reschedules every onboarded user so the horizon keeps rolling
// forward. It returns the number of users rescheduled.
func RefreshAll(ctx context.Context) int {
	userIDs, err := settings.ListOnboardedUsers(ctx)
	if err != nil {
		logger.Error("failed to list users for refresh", "error", err)
		return 0
	}

	refreshed := 0
	for _, userID := range userIDs {
		s, _, err := settings.Load(ctx, userID)
		if err != nil {
			logger.Error("failed to load settings for refresh", "user_id", userID, "error", err)
			continue
		}
		if !s.Reminder.Enabled {
			continue
		}
		chatID, err := settings.ChatID(ctx, userID)
		if err != nil {
			if chatID == 0 {
				logger.Error("failed to load reminder chat", "user_id", userID, "error", err)
				continue
			}
			logger.Warn("invalid reminder chat, using private chat", "user_id", userID, "error", err)
		}
		now := Clock()
		ch := refreshChannel{Channel: notify.NewChannel(userID, chatID, nil), now: now}
		count, err := applyAt(ctx, ch, s, now)
		if err != nil {
			logger.Error("failed to refresh reminders", "user_id", userID, "scheduled", count, "error", err)
			continue
		}
		refreshed++
	}
	logger.Info("refreshed reminder schedules", "users", refreshed)
	return refreshed
}

// StartRefresh runs RefreshAll on the cron schedule until ctx is done.
func StartRefresh(ctx context.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { RefreshAll(ctx) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
