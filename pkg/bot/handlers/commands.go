package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

const upcomingLimit = 10

// HandleUpcoming lists the next reminders in the user's timezone.
func HandleUpcoming(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleUpcoming")
		return
	}
	userID, chatID := update.Message.From.ID, update.Message.Chat.ID

	s, _, err := settings.Load(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrCorruptSettings) {
		logger.Error("failed to load user settings", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to load your reminders. Please try again later.")
		return
	}

	ch := channelFor(b, userID, chatID)
	pending, err := ch.Pending(ctx, upcomingLimit)
	if err != nil {
		logger.Error("failed to list pending reminders", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to load your reminders. Please try again later.")
		return
	}
	if len(pending) == 0 {
		sendText(ctx, b, chatID, "No upcoming reminders. Use /settings to turn them on.")
		return
	}
	total, err := ch.PendingCount(ctx)
	if err != nil {
		total = int64(len(pending))
	}

	loc := s.Location()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Upcoming reminders (%d this week):\n", total)
	for _, r := range pending {
		fmt.Fprintf(&sb, "- %s\n", r.FireAt.In(loc).Format("Mon 02 Jan 15:04"))
	}
	sendText(ctx, b, chatID, strings.TrimRight(sb.String(), "\n"))
}

// HandleStop turns reminders off and drops every pending one.
func HandleStop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStop")
		return
	}
	userID, chatID := update.Message.From.ID, update.Message.Chat.ID

	s, _, err := settings.Load(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrCorruptSettings) {
		logger.Error("failed to load user settings", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to stop reminders. Please try again later.")
		return
	}
	s.Reminder.Enabled = false
	if err := settings.Save(ctx, userID, s); err != nil {
		logger.Error("failed to save user settings", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to stop reminders. Please try again later.")
		return
	}
	if err := channelFor(b, userID, chatID).CancelAll(ctx); err != nil {
		logger.Error("failed to cancel reminders", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to stop reminders. Please try again later.")
		return
	}
	sendText(ctx, b, chatID, "Reminders stopped. Turn them back on any time in /settings.")
}

func HandleAbout(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleAbout")
		return
	}
	sendText(ctx, b, update.Message.Chat.ID,
		"Smile Reminder 😊\n\n"+
			"Smile Reminder was born from a simple belief: a smile can change your entire day. "+
			"In our busy lives we often forget to take a moment to appreciate the good things around us.\n\n"+
			"Every reminder carries an inspiring quote to lift your spirits and brighten your day. "+
			"Remember, happiness is contagious: when you smile, you make the world a little brighter.\n\n"+
			"Made with love to spread smiles.")
}
