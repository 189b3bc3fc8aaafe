package ui

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

const TimeStepMinutes = 30

var (
	startPresets     = []reminder.TimeOfDay{{Hour: 6}, {Hour: 7}, {Hour: 8}, {Hour: 9}, {Hour: 10}}
	endPresets       = []reminder.TimeOfDay{{Hour: 18}, {Hour: 20}, {Hour: 21}, {Hour: 22}, {Hour: 23}}
	frequencyPresets = []int{1, 3, 5, 10, 20}
	timezonePresets  = [][]int{{-8, -5, 0}, {1, 3, 8}}
)

// HomeView is everything the settings home screen shows.
type HomeView struct {
	Settings settings.UserSettings
	Pending  int64
}

func RenderHome(v HomeView) (string, *models.InlineKeyboardMarkup, error) {
	startData, err := BuildScreenCallback(ScreenStart)
	if err != nil {
		return "", nil, err
	}
	endData, err := BuildScreenCallback(ScreenEnd)
	if err != nil {
		return "", nil, err
	}
	freqData, err := BuildScreenCallback(ScreenFrequency)
	if err != nil {
		return "", nil, err
	}
	tzData, err := BuildScreenCallback(ScreenTimezone)
	if err != nil {
		return "", nil, err
	}
	notifyData, err := BuildToggleNotifyCallback()
	if err != nil {
		return "", nil, err
	}
	closeData, err := BuildCloseCallback()
	if err != nil {
		return "", nil, err
	}

	cfg := v.Settings.Reminder
	var sb strings.Builder
	sb.WriteString("Settings\n")
	fmt.Fprintf(&sb, "- Active hours: %s-%s\n", cfg.Start, cfg.End)
	fmt.Fprintf(&sb, "- Reminders per day: %d", cfg.Frequency)
	if interval := reminder.IntervalMinutes(cfg.Start, cfg.End, cfg.Frequency); interval > 0 && cfg.Validate() == nil {
		fmt.Fprintf(&sb, " (every %s)", FormatInterval(interval))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "- Reminders: %s\n", formatToggle(cfg.Enabled))
	fmt.Fprintf(&sb, "- Timezone: UTC%+d\n", v.Settings.TimezoneOffsetHours)
	fmt.Fprintf(&sb, "- Upcoming reminders: %d", v.Pending)
	for _, warning := range Warnings(cfg) {
		sb.WriteString("\n⚠️ ")
		sb.WriteString(warning)
	}

	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "Start time", CallbackData: startData},
				{Text: "End time", CallbackData: endData},
			},
			{
				{Text: "Frequency", CallbackData: freqData},
				{Text: "Timezone", CallbackData: tzData},
			},
			{
				{Text: toggleLabel("Reminders", cfg.Enabled), CallbackData: notifyData},
			},
			{
				{Text: "Close", CallbackData: closeData},
			},
		},
	}

	return sb.String(), keyboard, nil
}

// RenderTime renders the start or end time screen.
func RenderTime(screen Screen, current reminder.TimeOfDay) (string, *models.InlineKeyboardMarkup, error) {
	if !isTimeScreen(screen) {
		return "", nil, errInvalidAction
	}
	decData, err := BuildAdjustCallback(screen, OpDec)
	if err != nil {
		return "", nil, err
	}
	incData, err := BuildAdjustCallback(screen, OpInc)
	if err != nil {
		return "", nil, err
	}
	typeData, err := BuildTypeCallback(screen)
	if err != nil {
		return "", nil, err
	}
	backData, err := BuildHomeCallback()
	if err != nil {
		return "", nil, err
	}

	title := "Start time"
	presets := startPresets
	if screen == ScreenEnd {
		title = "End time"
		presets = endPresets
	}

	presetRow := make([]models.InlineKeyboardButton, 0, len(presets))
	for _, preset := range presets {
		data, err := BuildSetCallback(screen, preset.Minutes())
		if err != nil {
			return "", nil, err
		}
		presetRow = append(presetRow, models.InlineKeyboardButton{Text: preset.String(), CallbackData: data})
	}

	step := fmt.Sprintf("%dm", TimeStepMinutes)
	text := fmt.Sprintf("%s\nCurrent value: %s", title, current)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "-" + step, CallbackData: decData},
				{Text: "+" + step, CallbackData: incData},
			},
			presetRow,
			{
				{Text: "Type a time", CallbackData: typeData},
			},
			{
				{Text: "Back", CallbackData: backData},
			},
		},
	}
	return text, keyboard, nil
}

func RenderFrequency(current int) (string, *models.InlineKeyboardMarkup, error) {
	decData, err := BuildAdjustCallback(ScreenFrequency, OpDec)
	if err != nil {
		return "", nil, err
	}
	incData, err := BuildAdjustCallback(ScreenFrequency, OpInc)
	if err != nil {
		return "", nil, err
	}
	backData, err := BuildHomeCallback()
	if err != nil {
		return "", nil, err
	}

	presetRow := make([]models.InlineKeyboardButton, 0, len(frequencyPresets))
	for _, preset := range frequencyPresets {
		data, err := BuildSetCallback(ScreenFrequency, preset)
		if err != nil {
			return "", nil, err
		}
		presetRow = append(presetRow, models.InlineKeyboardButton{Text: fmt.Sprintf("%d", preset), CallbackData: data})
	}

	text := fmt.Sprintf("Reminders per day\nCurrent value: %d", current)
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "-1", CallbackData: decData},
				{Text: "+1", CallbackData: incData},
			},
			presetRow,
			{
				{Text: "Back", CallbackData: backData},
			},
		},
	}
	return text, keyboard, nil
}

func RenderTimezone(current int) (string, *models.InlineKeyboardMarkup, error) {
	decData, err := BuildAdjustCallback(ScreenTimezone, OpDec)
	if err != nil {
		return "", nil, err
	}
	incData, err := BuildAdjustCallback(ScreenTimezone, OpInc)
	if err != nil {
		return "", nil, err
	}
	backData, err := BuildHomeCallback()
	if err != nil {
		return "", nil, err
	}

	rows := [][]models.InlineKeyboardButton{
		{
			{Text: "-1", CallbackData: decData},
			{Text: "+1", CallbackData: incData},
		},
	}
	for _, presets := range timezonePresets {
		row := make([]models.InlineKeyboardButton, 0, len(presets))
		for _, offset := range presets {
			data, err := BuildSetCallback(ScreenTimezone, offset)
			if err != nil {
				return "", nil, err
			}
			row = append(row, models.InlineKeyboardButton{Text: fmt.Sprintf("UTC%+d", offset), CallbackData: data})
		}
		rows = append(rows, row)
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "Back", CallbackData: backData}})

	text := fmt.Sprintf("Timezone\nCurrent value: UTC%+d", current)
	return text, &models.InlineKeyboardMarkup{InlineKeyboard: rows}, nil
}

// Warnings explains why a configuration produces fewer or later reminders
// than the user asked for.
func Warnings(cfg reminder.Config) []string {
	if !cfg.Enabled {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Frequency <= 0 {
			return []string{"Reminders per day must be at least 1. No reminders are scheduled."}
		}
		return []string{"End time must be after start time. No reminders are scheduled."}
	}
	if past := reminder.SlotsPastWindow(cfg); past > 0 {
		return []string{fmt.Sprintf(
			"%d of %d daily reminders land after %s because reminders are at least %d minutes apart.",
			past, cfg.Frequency, cfg.End, reminder.MinIntervalMinutes,
		)}
	}
	return nil
}

func FormatInterval(minutes int) string {
	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
}

func formatToggle(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func toggleLabel(label string, enabled bool) string {
	if enabled {
		return fmt.Sprintf("%s ✅", label)
	}
	return fmt.Sprintf("%s ❌", label)
}
