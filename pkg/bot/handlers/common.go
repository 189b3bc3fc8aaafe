package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/reminders"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/notify"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

// quotePool backs /quote and the video pick.
var quotePool = reminder.DefaultQuotes

func channelFor(b *bot.Bot, userID, chatID int64) *notify.Channel {
	return notify.NewChannel(userID, chatID, notify.NewTelegramSender(b))
}

// reschedule cancels the user's reminders and registers a fresh set for s in
// chatID, which the daily refresh keeps using.
// An invalid window leaves zero reminders and is reported through the
// settings screen warnings, so it is not logged as a failure here.
func reschedule(ctx context.Context, b *bot.Bot, userID, chatID int64, s settings.UserSettings) int {
	if err := settings.SaveChatID(ctx, userID, chatID); err != nil {
		logger.Error("failed to save reminder chat", "user_id", userID, "chat_id", chatID, "error", err)
	}
	count, err := reminders.Apply(ctx, channelFor(b, userID, chatID), s)
	if err != nil && s.Reminder.Validate() == nil {
		logger.Error("failed to reschedule reminders", "user_id", userID, "scheduled", count, "error", err)
	}
	return count
}

func sendText(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

func callbackAnswerer(ctx context.Context, b *bot.Bot, callbackID string) func(text string) {
	answered := false
	return func(text string) {
		if answered || callbackID == "" {
			return
		}
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callbackID,
			Text:            text,
		}); err != nil {
			logger.Error("failed to answer callback query", "error", err)
		}
		answered = true
	}
}

// callbackMessage returns the message a callback button belongs to.
func callbackMessage(update *models.Update) (*models.Message, bool) {
	message := update.CallbackQuery.Message
	if message.Type != models.MaybeInaccessibleMessageTypeMessage || message.Message == nil {
		return nil, false
	}
	if message.Message.Chat.ID == 0 {
		return nil, false
	}
	return message.Message, true
}

func validMessage(update *models.Update) bool {
	return update != nil && update.Message != nil && update.Message.From != nil && update.Message.Chat.ID != 0
}

func editMessage(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, keyboard *models.InlineKeyboardMarkup) error {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	return err
}

func emptyKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}}
}
