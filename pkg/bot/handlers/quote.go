package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/notify"
)

const fallbackQuote = "Keep smiling, you're amazing! 😊"

var funnyVideos = []string{
	"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	"https://www.youtube.com/watch?v=ZZ5LpwO-An4",
	"https://www.youtube.com/watch?v=L_jWHffIx5E",
	"https://www.youtube.com/watch?v=fC7oUOUEEi4",
	"https://www.youtube.com/watch?v=Ct6BUPvE2sM",
}

func HandleQuote(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleQuote")
		return
	}
	if err := sendQuote(ctx, b, update.Message.Chat.ID, quotePool.Random()); err != nil {
		logger.Error("failed to send quote", "user_id", update.Message.From.ID, "error", err)
	}
}

// HandleQuoteCallback opens the quote of a delivered reminder.
func HandleQuoteCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleQuoteCallback")
		return
	}
	answerCallback := callbackAnswerer(ctx, b, update.CallbackQuery.ID)
	userID := update.CallbackQuery.From.ID

	msg, ok := callbackMessage(update)
	if !ok {
		answerCallback("Message is not available")
		return
	}

	id := strings.TrimPrefix(update.CallbackQuery.Data, notify.QuoteCallbackPrefix)
	r, err := notify.Find(ctx, id)
	if err != nil {
		if !errors.Is(err, notify.ErrReminderNotFound) {
			logger.Error("failed to load reminder", "reminder_id", id, "error", err)
		}
		answerCallback("Reminder not found")
		return
	}
	if r.UserID != userID {
		answerCallback("Reminder not found")
		return
	}

	answerCallback("")
	if err := sendQuote(ctx, b, msg.Chat.ID, notify.QuoteOf(r)); err != nil {
		logger.Error("failed to send quote", "user_id", userID, "reminder_id", id, "error", err)
	}
}

func sendQuote(ctx context.Context, b *bot.Bot, chatID int64, quote string) error {
	if strings.TrimSpace(quote) == "" {
		quote = fallbackQuote
	}
	text := fmt.Sprintf("%s\n\n⚠️ Don't copy the damn quote!\n\nHere's something funny to brighten your day! 🎬\n%s",
		quote, quotePool.Pick(funnyVideos))
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:         chatID,
		Text:           text,
		ProtectContent: true,
	})
	return err
}
