package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/timeinput"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
)

const helpText = "Commands:\n" +
	"* /start: set up your smile reminders.\n" +
	"* /settings: change active hours, frequency and timezone.\n" +
	"* /quote: get a smile right now.\n" +
	"* /upcoming: see your next reminders.\n" +
	"* /stop: turn reminders off.\n" +
	"* /about: about this bot."

func DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		logger.Error("received invalid update in defaultHandler")
		return
	}
	if update.Message.Chat.ID == 0 {
		logger.Error("chat ID is zero in defaultHandler")
		return
	}

	if update.Message.From != nil && update.Message.Text != "" {
		if pending, ok := timeinput.DefaultManager.Lookup(update.Message.From.ID, update.Message.Chat.ID); ok {
			applyTypedTime(ctx, b, update, pending)
			return
		}
	}

	sendText(ctx, b, update.Message.Chat.ID, helpText)
}
