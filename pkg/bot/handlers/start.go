package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/onboarding"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

func HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStart")
		return
	}
	userID, chatID := update.Message.From.ID, update.Message.Chat.ID

	onboarded, err := settings.IsOnboarded(ctx, userID)
	if err != nil {
		logger.Error("failed to check onboarding", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start onboarding. Please try again later.")
		return
	}
	if onboarded {
		text, keyboard := onboarding.RenderRestartPrompt()
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: keyboard}); err != nil {
			logger.Error("failed to send restart prompt", "user_id", userID, "error", err)
		}
		return
	}

	if err := sendOnboardingIntro(ctx, b, chatID, userID); err != nil {
		logger.Error("failed to start onboarding wizard", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to start onboarding. Please try again later.")
	}
}

func sendOnboardingIntro(ctx context.Context, b *bot.Bot, chatID, userID int64) error {
	draft, err := onboarding.Begin(ctx, userID)
	if err != nil {
		return err
	}
	text, keyboard := onboarding.Render(draft)
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	return err
}
