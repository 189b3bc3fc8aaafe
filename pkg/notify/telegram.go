package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/db"
)

const (
	OpenQuoteButton     = "Open quote"
	QuoteCallbackPrefix = "q:"
)

// TelegramSender delivers reminders as chat messages.
type TelegramSender struct {
	b *bot.Bot
}

func NewTelegramSender(b *bot.Bot) *TelegramSender {
	return &TelegramSender{b: b}
}

// Reachable sends a typing action; Telegram refuses it for chats that
// blocked the bot.
func (s *TelegramSender) Reachable(ctx context.Context, chatID int64) (bool, error) {
	_, err := s.b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		if errors.Is(err, bot.ErrorForbidden) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *TelegramSender) SendReminder(ctx context.Context, r db.ScheduledReminder) error {
	p := CurrentPolicy()
	params := &bot.SendMessageParams{
		ChatID:              r.ChatID,
		Text:                ReminderText(r),
		DisableNotification: !p.PlaySound,
		ProtectContent:      p.ProtectContent,
		ReplyMarkup:         QuoteKeyboard(r.ID),
	}
	if !p.ShowLinkPreview {
		disabled := true
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: &disabled}
	}
	if _, err := s.b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send reminder %s: %w", r.ID, err)
	}
	return nil
}

func ReminderText(r db.ScheduledReminder) string {
	return r.Title + "\n\n" + r.Body
}

func QuoteKeyboard(reminderID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: OpenQuoteButton, CallbackData: QuoteCallbackPrefix + reminderID}},
		},
	}
}

// IsForbidden reports whether a send failed because the user blocked the bot.
func IsForbidden(err error) bool {
	return errors.Is(err, bot.ErrorForbidden)
}
