package ui

import (
	"strconv"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

func TestRenderHomeButtons(t *testing.T) {
	s := settings.Defaults()
	s.TimezoneOffsetHours = -5

	text, keyboard, err := RenderHome(HomeView{Settings: s, Pending: 33})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Settings", "09:00-21:00", "Reminders per day: 5 (every 2h 24m)", "Reminders: on", "UTC-5", "Upcoming reminders: 33"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in home text, got %q", want, text)
		}
	}
	if strings.Contains(text, "⚠️") {
		t.Fatalf("expected no warnings for defaults, got %q", text)
	}

	startData, _ := BuildScreenCallback(ScreenStart)
	endData, _ := BuildScreenCallback(ScreenEnd)
	freqData, _ := BuildScreenCallback(ScreenFrequency)
	tzData, _ := BuildScreenCallback(ScreenTimezone)
	notifyData, _ := BuildToggleNotifyCallback()
	closeData, _ := BuildCloseCallback()

	assertButton(t, keyboard, "Start time", startData)
	assertButton(t, keyboard, "End time", endData)
	assertButton(t, keyboard, "Frequency", freqData)
	assertButton(t, keyboard, "Timezone", tzData)
	assertButton(t, keyboard, "Reminders ✅", notifyData)
	assertButton(t, keyboard, "Close", closeData)
}

func TestRenderHomeShowsInvalidWindowWarning(t *testing.T) {
	s := settings.Defaults()
	s.Reminder.Start = reminder.TimeOfDay{Hour: 22}

	text, _, err := RenderHome(HomeView{Settings: s})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "End time must be after start time") {
		t.Fatalf("expected invalid window warning, got %q", text)
	}
	if strings.Contains(text, "(every") {
		t.Fatalf("expected no interval for invalid window, got %q", text)
	}
}

func TestRenderHomeDisabled(t *testing.T) {
	s := settings.Defaults()
	s.Reminder.Enabled = false

	text, keyboard, err := RenderHome(HomeView{Settings: s})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Reminders: off") {
		t.Fatalf("expected reminders off, got %q", text)
	}
	notifyData, _ := BuildToggleNotifyCallback()
	assertButton(t, keyboard, "Reminders ❌", notifyData)
}

func TestRenderTimeButtons(t *testing.T) {
	text, keyboard, err := RenderTime(ScreenEnd, reminder.TimeOfDay{Hour: 21})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "End time") || !strings.Contains(text, "21:00") {
		t.Fatalf("unexpected text %q", text)
	}

	decData, _ := BuildAdjustCallback(ScreenEnd, OpDec)
	incData, _ := BuildAdjustCallback(ScreenEnd, OpInc)
	typeData, _ := BuildTypeCallback(ScreenEnd)
	backData, _ := BuildHomeCallback()
	assertButton(t, keyboard, "-30m", decData)
	assertButton(t, keyboard, "+30m", incData)
	assertButton(t, keyboard, "Type a time", typeData)
	assertButton(t, keyboard, "Back", backData)

	presetData, _ := BuildSetCallback(ScreenEnd, 22*60)
	assertButton(t, keyboard, "22:00", presetData)

	if _, _, err := RenderTime(ScreenFrequency, reminder.TimeOfDay{}); err == nil {
		t.Fatalf("expected error for non-time screen")
	}
}

func TestRenderFrequencyButtons(t *testing.T) {
	text, keyboard, err := RenderFrequency(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Reminders per day") || !strings.Contains(text, "4") {
		t.Fatalf("unexpected text %q", text)
	}
	for _, value := range []int{1, 3, 5, 10, 20} {
		setData, _ := BuildSetCallback(ScreenFrequency, value)
		assertButton(t, keyboard, strconv.Itoa(value), setData)
	}
}

func TestRenderTimezoneButtons(t *testing.T) {
	text, keyboard, err := RenderTimezone(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "UTC+3") {
		t.Fatalf("unexpected text %q", text)
	}
	for _, offset := range []int{-8, -5, 0, 1, 3, 8} {
		setData, _ := BuildSetCallback(ScreenTimezone, offset)
		label := "UTC" + strconv.Itoa(offset)
		if offset >= 0 {
			label = "UTC+" + strconv.Itoa(offset)
		}
		assertButton(t, keyboard, label, setData)
	}
}

func TestWarnings(t *testing.T) {
	cfg := reminder.DefaultConfig()
	if got := Warnings(cfg); len(got) != 0 {
		t.Fatalf("expected no warnings, got %v", got)
	}

	crowded := reminder.Config{Start: reminder.TimeOfDay{Hour: 9}, End: reminder.TimeOfDay{Hour: 9, Minute: 30}, Frequency: 5, Enabled: true}
	got := Warnings(crowded)
	if len(got) != 1 || !strings.Contains(got[0], "2 of 5") {
		t.Fatalf("expected crowded window warning, got %v", got)
	}

	zero := reminder.Config{Start: reminder.TimeOfDay{Hour: 9}, End: reminder.TimeOfDay{Hour: 10}, Enabled: true}
	if got := Warnings(zero); len(got) != 1 || !strings.Contains(got[0], "at least 1") {
		t.Fatalf("expected frequency warning, got %v", got)
	}

	crowded.Enabled = false
	if got := Warnings(crowded); len(got) != 0 {
		t.Fatalf("expected no warnings when disabled, got %v", got)
	}
}

func TestFormatInterval(t *testing.T) {
	cases := map[int]string{10: "10m", 60: "1h", 144: "2h 24m"}
	for minutes, want := range cases {
		if got := FormatInterval(minutes); got != want {
			t.Fatalf("FormatInterval(%d) = %q, want %q", minutes, got, want)
		}
	}
}

func assertButton(t *testing.T, keyboard *models.InlineKeyboardMarkup, text, callbackData string) {
	t.Helper()

	if keyboard == nil {
		t.Fatalf("expected keyboard, got nil")
	}

	for _, row := range keyboard.InlineKeyboard {
		for _, button := range row {
			if button.Text == text {
				if button.CallbackData != callbackData {
					t.Fatalf("button %q callback mismatch: got %q want %q", text, button.CallbackData, callbackData)
				}
				return
			}
		}
	}
	t.Fatalf("button %q not found", text)
}
