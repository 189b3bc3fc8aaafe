package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/bot/timeinput"
	"github.com/smith3v/tg-smile-reminder/pkg/logger"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
	"github.com/smith3v/tg-smile-reminder/pkg/ui"
)

const (
	MinFrequency = 1
	MaxFrequency = 20

	MinTimezoneOffset = settings.MinTimezoneOffset
	MaxTimezoneOffset = settings.MaxTimezoneOffset
)

var (
	ErrBelowMin      = errors.New("value below minimum")
	ErrAboveMax      = errors.New("value above maximum")
	ErrInvalidAction = errors.New("invalid settings action")
)

func HandleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleSettings")
		return
	}
	userID, chatID := update.Message.From.ID, update.Message.Chat.ID

	onboarded, err := settings.IsOnboarded(ctx, userID)
	if err != nil {
		logger.Error("failed to check onboarding", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to load your settings. Please try again later.")
		return
	}
	if !onboarded {
		sendText(ctx, b, chatID, "Settings not found. Send /start to set up your reminders.")
		return
	}

	text, keyboard, err := renderHome(ctx, b, userID, chatID)
	if err != nil {
		logger.Error("failed to render settings home", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to render settings. Please try again later.")
		return
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	}); err != nil {
		logger.Error("failed to send settings message", "user_id", userID, "error", err)
	}
}

func HandleSettingsCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleSettingsCallback")
		return
	}
	answerCallback := callbackAnswerer(ctx, b, update.CallbackQuery.ID)
	userID := update.CallbackQuery.From.ID

	action, err := ui.ParseCallbackData(update.CallbackQuery.Data)
	if err != nil {
		logger.Error("failed to parse settings callback", "data", update.CallbackQuery.Data, "error", err)
		answerCallback("Unknown command")
		return
	}

	msg, ok := callbackMessage(update)
	if !ok {
		logger.Error("callback query message is inaccessible", "user_id", userID)
		answerCallback("Message is not available")
		return
	}

	onboarded, err := settings.IsOnboarded(ctx, userID)
	if err != nil {
		logger.Error("failed to check onboarding", "user_id", userID, "error", err)
		answerCallback("Failed to load settings")
		return
	}
	if !onboarded {
		answerCallback("Send /start")
		return
	}

	current, _, err := settings.Load(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrCorruptSettings) {
		logger.Error("failed to load user settings", "user_id", userID, "error", err)
		answerCallback("Failed to load settings")
		return
	}

	if action.Op == ui.OpType {
		field := timeinput.FieldStart
		if action.Screen == ui.ScreenEnd {
			field = timeinput.FieldEnd
		}
		timeinput.DefaultManager.Start(userID, timeinput.Pending{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Field:     field,
		}, timeinput.DefaultTimeout)
		answerCallback("")
		sendText(ctx, b, msg.Chat.ID, fmt.Sprintf("Send the new %s time as HH:MM, for example 08:30.", field))
		return
	}

	next, nextScreen, changed, err := ApplyAction(current, action)
	if err != nil {
		if errors.Is(err, ErrBelowMin) || errors.Is(err, ErrAboveMax) {
			answerCallback(boundsMessage(action.Screen, err))
			return
		}
		logger.Error("failed to apply settings action", "user_id", userID, "error", err)
		answerCallback("Unknown command")
		return
	}

	if changed {
		if err := settings.Save(ctx, userID, next); err != nil {
			logger.Error("failed to save user settings", "user_id", userID, "error", err)
			answerCallback("Failed to save settings")
			return
		}
		reschedule(ctx, b, userID, msg.Chat.ID, next)
	}
	answerCallback("")

	if !changed && action.Op == ui.OpSet {
		return
	}

	var text string
	var keyboard *models.InlineKeyboardMarkup
	switch nextScreen {
	case ui.ScreenHome:
		text, keyboard, err = renderHome(ctx, b, userID, msg.Chat.ID)
	case ui.ScreenStart:
		text, keyboard, err = ui.RenderTime(ui.ScreenStart, next.Reminder.Start)
	case ui.ScreenEnd:
		text, keyboard, err = ui.RenderTime(ui.ScreenEnd, next.Reminder.End)
	case ui.ScreenFrequency:
		text, keyboard, err = ui.RenderFrequency(next.Reminder.Frequency)
	case ui.ScreenTimezone:
		text, keyboard, err = ui.RenderTimezone(next.TimezoneOffsetHours)
	case ui.ScreenClose:
		text = "Settings saved ✅"
		keyboard = emptyKeyboard()
	default:
		logger.Error("unknown settings screen", "screen", nextScreen)
		return
	}
	if err != nil {
		logger.Error("failed to render settings screen", "user_id", userID, "error", err)
		return
	}

	if err := editMessage(ctx, b, msg.Chat.ID, msg.ID, text, keyboard); err != nil {
		logger.Error("failed to edit settings message", "user_id", userID, "error", err)
	}
}

// ApplyAction returns the settings after action and the screen to show next.
func ApplyAction(s settings.UserSettings, action ui.Action) (settings.UserSettings, ui.Screen, bool, error) {
	switch action.Screen {
	case ui.ScreenHome, ui.ScreenClose:
		if action.Op != ui.OpNone {
			return s, action.Screen, false, ErrInvalidAction
		}
		return s, action.Screen, false, nil
	case ui.ScreenStart, ui.ScreenEnd:
		current := s.Reminder.Start
		if action.Screen == ui.ScreenEnd {
			current = s.Reminder.End
		}
		next, changed, err := applyTime(current, action)
		if err != nil {
			return s, action.Screen, false, err
		}
		updated := s
		if action.Screen == ui.ScreenStart {
			updated.Reminder.Start = next
		} else {
			updated.Reminder.End = next
		}
		return updated, action.Screen, changed, nil
	case ui.ScreenFrequency:
		next, changed, err := applyValue(s.Reminder.Frequency, action, MinFrequency, MaxFrequency)
		if err != nil {
			return s, ui.ScreenFrequency, false, err
		}
		updated := s
		updated.Reminder.Frequency = next
		return updated, ui.ScreenFrequency, changed, nil
	case ui.ScreenTimezone:
		next, changed, err := applyValue(s.TimezoneOffsetHours, action, MinTimezoneOffset, MaxTimezoneOffset)
		if err != nil {
			return s, ui.ScreenTimezone, false, err
		}
		updated := s
		updated.TimezoneOffsetHours = next
		return updated, ui.ScreenTimezone, changed, nil
	case ui.ScreenNotify:
		if action.Op != ui.OpToggle {
			return s, ui.ScreenHome, false, ErrInvalidAction
		}
		updated := s
		updated.Reminder.Enabled = !s.Reminder.Enabled
		return updated, ui.ScreenHome, true, nil
	default:
		return s, ui.ScreenHome, false, ErrInvalidAction
	}
}

// applyTime steps by ui.TimeStepMinutes, wrapping around midnight.
func applyTime(current reminder.TimeOfDay, action ui.Action) (reminder.TimeOfDay, bool, error) {
	switch action.Op {
	case ui.OpNone:
		return current, false, nil
	case ui.OpInc, ui.OpDec:
		next := reminder.TimeOfDayFromMinutes(current.Minutes() + action.Value*ui.TimeStepMinutes)
		return next, next != current, nil
	case ui.OpSet:
		minutes, changed, err := clampValue(current.Minutes(), action.Value, 0, reminder.MinutesPerDay-1)
		if err != nil {
			return current, false, err
		}
		return reminder.TimeOfDayFromMinutes(minutes), changed, nil
	default:
		return current, false, ErrInvalidAction
	}
}

func applyValue(current int, action ui.Action, min, max int) (int, bool, error) {
	switch action.Op {
	case ui.OpNone:
		return current, false, nil
	case ui.OpInc:
		return clampValue(current, current+1, min, max)
	case ui.OpDec:
		return clampValue(current, current-1, min, max)
	case ui.OpSet:
		return clampValue(current, action.Value, min, max)
	default:
		return current, false, ErrInvalidAction
	}
}

func clampValue(current, next, min, max int) (int, bool, error) {
	if next < min {
		return current, false, ErrBelowMin
	}
	if next > max {
		return current, false, ErrAboveMax
	}
	if next == current {
		return current, false, nil
	}
	return next, true, nil
}

func boundsMessage(screen ui.Screen, err error) string {
	var min, max string
	switch screen {
	case ui.ScreenFrequency:
		min, max = fmt.Sprint(MinFrequency), fmt.Sprint(MaxFrequency)
	case ui.ScreenTimezone:
		min, max = fmt.Sprintf("UTC%+d", MinTimezoneOffset), fmt.Sprintf("UTC%+d", MaxTimezoneOffset)
	default:
		return "Unknown command"
	}
	if errors.Is(err, ErrBelowMin) {
		return "Minimum is " + min
	}
	return "Maximum is " + max
}

func renderHome(ctx context.Context, b *bot.Bot, userID, chatID int64) (string, *models.InlineKeyboardMarkup, error) {
	s, _, err := settings.Load(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrCorruptSettings) {
		return "", nil, err
	}
	pending, err := channelFor(b, userID, chatID).PendingCount(ctx)
	if err != nil {
		return "", nil, err
	}
	return ui.RenderHome(ui.HomeView{Settings: s, Pending: pending})
}

// applyTypedTime stores a time typed in reply to "Type a time" and refreshes
// the settings message it came from.
func applyTypedTime(ctx context.Context, b *bot.Bot, update *models.Update, pending timeinput.Pending) {
	userID, chatID := update.Message.From.ID, update.Message.Chat.ID

	value, err := reminder.ParseTimeOfDay(update.Message.Text)
	if err != nil {
		sendText(ctx, b, chatID, "I couldn't read that time. Send it as HH:MM, for example 08:30.")
		return
	}
	timeinput.DefaultManager.Clear(userID)

	s, _, err := settings.Load(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrCorruptSettings) {
		logger.Error("failed to load user settings", "user_id", userID, "error", err)
		sendText(ctx, b, chatID, "Failed to load your settings. Please try again later.")
		return
	}
	screen := ui.ScreenStart
	if pending.Field == timeinput.FieldEnd {
		screen = ui.ScreenEnd
	}
	next, _, changed, err := ApplyAction(s, ui.Action{Screen: screen, Op: ui.OpSet, Value: value.Minutes()})
	if err != nil {
		logger.Error("failed to apply typed time", "user_id", userID, "error", err)
		return
	}
	if changed {
		if err := settings.Save(ctx, userID, next); err != nil {
			logger.Error("failed to save user settings", "user_id", userID, "error", err)
			sendText(ctx, b, chatID, "Failed to save settings. Please try again later.")
			return
		}
		reschedule(ctx, b, userID, chatID, next)
	}

	sendText(ctx, b, chatID, fmt.Sprintf("The %s time is now %s.", pending.Field, value))
	if pending.MessageID == 0 {
		return
	}
	text, keyboard, err := renderHome(ctx, b, userID, chatID)
	if err != nil {
		logger.Error("failed to render settings home", "user_id", userID, "error", err)
		return
	}
	if err := editMessage(ctx, b, chatID, pending.MessageID, text, keyboard); err != nil {
		logger.Error("failed to edit settings message", "user_id", userID, "error", err)
	}
}
