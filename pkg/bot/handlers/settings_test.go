package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smith3v/tg-smile-reminder/pkg/bot/timeinput"
	"github.com/smith3v/tg-smile-reminder/pkg/notify"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
	"github.com/smith3v/tg-smile-reminder/pkg/ui"
)

func seedOnboardedUser(t *testing.T, ctx context.Context, userID int64, s settings.UserSettings) {
	t.Helper()
	if err := settings.Save(ctx, userID, s); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}
	if err := settings.MarkOnboarded(ctx, userID); err != nil {
		t.Fatalf("failed to mark onboarded: %v", err)
	}
}

func pendingFor(t *testing.T, ctx context.Context, userID int64) int64 {
	t.Helper()
	count, err := notify.NewChannel(userID, userID, nil).PendingCount(ctx)
	if err != nil {
		t.Fatalf("failed to count pending reminders: %v", err)
	}
	return count
}

func TestApplyActionNavigation(t *testing.T) {
	s := settings.Defaults()

	for _, screen := range []ui.Screen{ui.ScreenHome, ui.ScreenStart, ui.ScreenEnd, ui.ScreenFrequency, ui.ScreenTimezone, ui.ScreenClose} {
		next, got, changed, err := ApplyAction(s, ui.Action{Screen: screen, Op: ui.OpNone})
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", screen, err)
		}
		if got != screen || changed || next != s {
			t.Fatalf("expected plain navigation to %s, got %s changed=%v", screen, got, changed)
		}
	}
}

func TestApplyActionStartStepWrapsMidnight(t *testing.T) {
	s := settings.Defaults()
	s.Reminder.Start = reminder.TimeOfDay{Hour: 0, Minute: 15}

	next, screen, changed, err := ApplyAction(s, ui.Action{Screen: ui.ScreenStart, Op: ui.OpDec, Value: -1})
	if err != nil || !changed || screen != ui.ScreenStart {
		t.Fatalf("unexpected result: screen=%s changed=%v err=%v", screen, changed, err)
	}
	if next.Reminder.Start.String() != "23:45" {
		t.Fatalf("expected 23:45, got %s", next.Reminder.Start)
	}
}

func TestApplyActionEndSetPreset(t *testing.T) {
	s := settings.Defaults()

	next, _, changed, err := ApplyAction(s, ui.Action{Screen: ui.ScreenEnd, Op: ui.OpSet, Value: 22 * 60})
	if err != nil || !changed {
		t.Fatalf("expected change, got changed=%v err=%v", changed, err)
	}
	if next.Reminder.End.String() != "22:00" {
		t.Fatalf("expected 22:00, got %s", next.Reminder.End)
	}

	if _, _, _, err := ApplyAction(s, ui.Action{Screen: ui.ScreenEnd, Op: ui.OpSet, Value: reminder.MinutesPerDay}); !errors.Is(err, ErrAboveMax) {
		t.Fatalf("expected ErrAboveMax, got %v", err)
	}
}

func TestApplyActionFrequencyBounds(t *testing.T) {
	s := settings.Defaults()
	s.Reminder.Frequency = MinFrequency

	if _, _, changed, err := ApplyAction(s, ui.Action{Screen: ui.ScreenFrequency, Op: ui.OpDec, Value: -1}); !errors.Is(err, ErrBelowMin) || changed {
		t.Fatalf("expected ErrBelowMin, got %v", err)
	}
	if _, _, _, err := ApplyAction(s, ui.Action{Screen: ui.ScreenFrequency, Op: ui.OpSet, Value: MaxFrequency + 1}); !errors.Is(err, ErrAboveMax) {
		t.Fatalf("expected ErrAboveMax, got %v", err)
	}
	next, _, changed, err := ApplyAction(s, ui.Action{Screen: ui.ScreenFrequency, Op: ui.OpSet, Value: 10})
	if err != nil || !changed || next.Reminder.Frequency != 10 {
		t.Fatalf("expected frequency 10, got %d changed=%v err=%v", next.Reminder.Frequency, changed, err)
	}
	_, _, changed, err = ApplyAction(next, ui.Action{Screen: ui.ScreenFrequency, Op: ui.OpSet, Value: 10})
	if err != nil || changed {
		t.Fatalf("expected no change for same value, got changed=%v err=%v", changed, err)
	}
}

func TestApplyActionTimezone(t *testing.T) {
	s := settings.Defaults()
	s.TimezoneOffsetHours = MaxTimezoneOffset

	if _, _, _, err := ApplyAction(s, ui.Action{Screen: ui.ScreenTimezone, Op: ui.OpInc, Value: 1}); !errors.Is(err, ErrAboveMax) {
		t.Fatalf("expected ErrAboveMax, got %v", err)
	}
	next, _, changed, err := ApplyAction(s, ui.Action{Screen: ui.ScreenTimezone, Op: ui.OpSet, Value: -5})
	if err != nil || !changed || next.TimezoneOffsetHours != -5 {
		t.Fatalf("expected UTC-5, got %d changed=%v err=%v", next.TimezoneOffsetHours, changed, err)
	}
}

func TestApplyActionNotifyToggle(t *testing.T) {
	s := settings.Defaults()

	next, screen, changed, err := ApplyAction(s, ui.Action{Screen: ui.ScreenNotify, Op: ui.OpToggle})
	if err != nil || !changed || screen != ui.ScreenHome {
		t.Fatalf("unexpected toggle result: screen=%s changed=%v err=%v", screen, changed, err)
	}
	if next.Reminder.Enabled {
		t.Fatalf("expected reminders disabled")
	}
	if _, _, _, err := ApplyAction(s, ui.Action{Screen: ui.ScreenNotify}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestApplyActionInvalid(t *testing.T) {
	if _, _, _, err := ApplyAction(settings.Defaults(), ui.Action{Screen: ui.Screen("pairs")}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if _, _, _, err := ApplyAction(settings.Defaults(), ui.Action{Screen: ui.ScreenClose, Op: ui.OpInc}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestHandleSettingsRequiresOnboarding(t *testing.T) {
	ctx := setupHandlerTest(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettings(ctx, b, newTestUpdate("/settings", 300))

	if got := client.lastMessageText(t); !strings.Contains(got, "Send /start") {
		t.Fatalf("expected onboarding hint, got %q", got)
	}
}

func TestHandleSettingsSendsHome(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 301, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettings(ctx, b, newTestUpdate("/settings", 301))

	got := client.lastMessageText(t)
	if !strings.Contains(got, "Active hours: 09:00-21:00") || !strings.Contains(got, "Upcoming reminders: 0") {
		t.Fatalf("unexpected settings text %q", got)
	}
	markup := client.lastField(t, "sendMessage", "reply_markup")
	if !strings.Contains(markup, "s:freq") || !strings.Contains(markup, "s:notify:toggle") {
		t.Fatalf("expected settings keyboard, got %q", markup)
	}
}

func TestHandleSettingsCallbackUpdatesFrequencyAndReschedules(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 302, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:freq:+1", 302, 302, 55))

	s, _, err := settings.Load(ctx, 302)
	if err != nil || s.Reminder.Frequency != 6 {
		t.Fatalf("expected frequency 6, got %d err=%v", s.Reminder.Frequency, err)
	}
	if got := pendingFor(t, ctx, 302); got != 42 {
		t.Fatalf("expected 42 pending reminders, got %d", got)
	}
	if got := client.lastField(t, "editMessageText", "text"); !strings.Contains(got, "Current value: 6") {
		t.Fatalf("expected frequency screen, got %q", got)
	}
	if got := client.lastField(t, "editMessageText", "message_id"); got != "55" {
		t.Fatalf("expected message 55 to be edited, got %q", got)
	}
}

func TestHandleSettingsCallbackInvalidWindowClearsReminders(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 303, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:freq:set:3", 303, 303, 7))
	if got := pendingFor(t, ctx, 303); got != 21 {
		t.Fatalf("expected 21 pending reminders, got %d", got)
	}

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:start:set:1320", 303, 303, 7))

	s, _, _ := settings.Load(ctx, 303)
	if s.Reminder.Start.String() != "22:00" {
		t.Fatalf("expected invalid window to be saved, got start %s", s.Reminder.Start)
	}
	if got := pendingFor(t, ctx, 303); got != 0 {
		t.Fatalf("expected invalid window to leave no reminders, got %d", got)
	}

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:home", 303, 303, 7))
	if got := client.lastField(t, "editMessageText", "text"); !strings.Contains(got, "End time must be after start time") {
		t.Fatalf("expected warning on home screen, got %q", got)
	}
}

func TestHandleSettingsCallbackBounds(t *testing.T) {
	ctx := setupHandlerTest(t)
	s := settings.Defaults()
	s.TimezoneOffsetHours = MaxTimezoneOffset
	seedOnboardedUser(t, ctx, 304, s)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:tz:+1", 304, 304, 8))

	if got := client.lastField(t, "answerCallbackQuery", "text"); got != "Maximum is UTC+14" {
		t.Fatalf("expected maximum hint, got %q", got)
	}
	if len(client.requestsTo("editMessageText")) != 0 {
		t.Fatalf("expected no edit for rejected change")
	}
}

func TestHandleSettingsCallbackToggleOff(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 305, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:freq:set:2", 305, 305, 9))
	if got := pendingFor(t, ctx, 305); got != 14 {
		t.Fatalf("expected 14 pending reminders, got %d", got)
	}

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:notify:toggle", 305, 305, 9))

	s, _, _ := settings.Load(ctx, 305)
	if s.Reminder.Enabled {
		t.Fatalf("expected reminders disabled")
	}
	if got := pendingFor(t, ctx, 305); got != 0 {
		t.Fatalf("expected reminders cleared, got %d", got)
	}
	if got := client.lastField(t, "editMessageText", "text"); !strings.Contains(got, "Reminders: off") {
		t.Fatalf("expected home screen with reminders off, got %q", got)
	}
}

func TestHandleSettingsCallbackRequiresOnboarding(t *testing.T) {
	ctx := setupHandlerTest(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:freq:+1", 308, 308, 12))

	if got := client.lastField(t, "answerCallbackQuery", "text"); got != "Send /start" {
		t.Fatalf("expected /start hint, got %q", got)
	}
	if _, found, _ := settings.Load(ctx, 308); found {
		t.Fatalf("expected no settings to be stored")
	}
	if got := pendingFor(t, ctx, 308); got != 0 {
		t.Fatalf("expected no reminders, got %d", got)
	}
	if len(client.requestsTo("editMessageText")) != 0 {
		t.Fatalf("expected no edits")
	}
}

func TestHandleSettingsCallbackRecordsChat(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 309, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:freq:set:1", 309, -100309, 13))

	if chatID, err := settings.ChatID(ctx, 309); err != nil || chatID != -100309 {
		t.Fatalf("expected chat -100309 to be recorded, got %d err=%v", chatID, err)
	}
}

func TestHandleSettingsCallbackClose(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 306, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:close", 306, 306, 10))

	if got := client.lastField(t, "editMessageText", "text"); got != "Settings saved ✅" {
		t.Fatalf("expected closing text, got %q", got)
	}
}

func TestTypedTimeFlow(t *testing.T) {
	ctx := setupHandlerTest(t)
	seedOnboardedUser(t, ctx, 307, settings.Defaults())
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	HandleSettingsCallback(ctx, b, newTestCallbackUpdate("s:start:type", 307, 307, 11))
	if got := client.lastMessageText(t); !strings.Contains(got, "new start time") {
		t.Fatalf("expected time prompt, got %q", got)
	}
	if _, ok := timeinput.DefaultManager.Lookup(307, 307); !ok {
		t.Fatalf("expected pending time input")
	}

	DefaultHandler(ctx, b, newTestUpdate("half past eight", 307))
	if got := client.lastMessageText(t); !strings.Contains(got, "couldn't read that time") {
		t.Fatalf("expected parse error, got %q", got)
	}
	if _, ok := timeinput.DefaultManager.Lookup(307, 307); !ok {
		t.Fatalf("expected pending input to survive a bad reply")
	}

	DefaultHandler(ctx, b, newTestUpdate("8:30", 307))

	s, _, _ := settings.Load(ctx, 307)
	if s.Reminder.Start.String() != "08:30" {
		t.Fatalf("expected start 08:30, got %s", s.Reminder.Start)
	}
	if got := client.lastMessageText(t); got != "The start time is now 08:30." {
		t.Fatalf("unexpected confirmation %q", got)
	}
	if got := client.lastField(t, "editMessageText", "message_id"); got != "11" {
		t.Fatalf("expected settings message 11 to refresh, got %q", got)
	}
	if _, ok := timeinput.DefaultManager.Lookup(307, 307); ok {
		t.Fatalf("expected pending input to be cleared")
	}
	if got := pendingFor(t, ctx, 307); got != 35 {
		t.Fatalf("expected 35 pending reminders, got %d", got)
	}
}
