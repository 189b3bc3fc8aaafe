package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/onboarding"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

func HandleOnboardingCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleOnboardingCallback")
		return
	}
	answerCallback := callbackAnswerer(ctx, b, update.CallbackQuery.ID)

	msg, ok := callbackMessage(update)
	if !ok {
		answerCallback("Message missing")
		return
	}

	action, err := onboarding.ParseCallbackData(update.CallbackQuery.Data)
	if err != nil {
		answerCallback("Unknown action")
		return
	}

	userID := update.CallbackQuery.From.ID
	var draft onboarding.Draft
	switch action.Kind {
	case onboarding.ActionRestart:
		draft, err = onboarding.Begin(ctx, userID)
	case onboarding.ActionNext:
		draft, err = onboarding.Move(ctx, userID, 1)
	case onboarding.ActionBack:
		draft, err = onboarding.Move(ctx, userID, -1)
	case onboarding.ActionAdjust:
		draft, err = onboarding.Adjust(ctx, userID, action.Field, action.Delta)
	case onboarding.ActionFinish:
		finishOnboarding(ctx, b, userID, msg, answerCallback)
		return
	default:
		answerCallback("Unknown action")
		return
	}

	switch {
	case errors.Is(err, onboarding.ErrNoDraft):
		answerCallback("Send /start")
		return
	case errors.Is(err, reminder.ErrInvalidTimeRange):
		answerCallback("End time must be after start time")
		return
	case err != nil:
		logger.Error("failed to update onboarding draft", "user_id", userID, "action", action.Kind, "error", err)
		answerCallback("Failed")
		return
	}

	text, keyboard := onboarding.Render(draft)
	if err := editMessage(ctx, b, msg.Chat.ID, msg.ID, text, keyboard); err != nil {
		logger.Error("failed to edit onboarding message", "user_id", userID, "error", err)
		answerCallback("Failed")
		return
	}
	answerCallback("")
}

func finishOnboarding(ctx context.Context, b *bot.Bot, userID int64, msg *models.Message, answerCallback func(string)) {
	scheduled, err := onboarding.Finish(ctx, userID, channelFor(b, userID, msg.Chat.ID))
	switch {
	case errors.Is(err, onboarding.ErrPermissionDenied):
		text, keyboard := onboarding.RenderPermissionDenied()
		if editErr := editMessage(ctx, b, msg.Chat.ID, msg.ID, text, keyboard); editErr != nil {
			logger.Error("failed to edit permission prompt", "user_id", userID, "error", editErr)
		}
		answerCallback("Permissions Required")
		return
	case errors.Is(err, onboarding.ErrNoDraft):
		answerCallback("Send /start")
		return
	case errors.Is(err, reminder.ErrInvalidTimeRange), errors.Is(err, reminder.ErrInvalidFrequency):
		answerCallback("Check your active hours")
		return
	case err != nil:
		logger.Error("failed to finish onboarding", "user_id", userID, "scheduled", scheduled, "error", err)
		answerCallback("Something went wrong. Please try again.")
		return
	}

	if err := settings.SaveChatID(ctx, userID, msg.Chat.ID); err != nil {
		logger.Error("failed to save reminder chat", "user_id", userID, "chat_id", msg.Chat.ID, "error", err)
	}
	if err := editMessage(ctx, b, msg.Chat.ID, msg.ID, "Onboarding completed ✅", emptyKeyboard()); err != nil {
		logger.Error("failed to edit onboarding completion", "user_id", userID, "error", err)
	}
	sendText(ctx, b, msg.Chat.ID, onboarding.RenderCompleted(scheduled))
	answerCallback("")
}
