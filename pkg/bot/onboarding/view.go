package onboarding

import (
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
)

var stepTitles = [StepCount][2]string{
	{"Welcome to Smile Reminder! 😊", "Let's set up your daily dose of happiness"},
	{"Choose Your Active Hours ⏰", "When should we send you smile reminders?"},
	{"Set Your Frequency 📱", "How many reminders per day?"},
	{"You're All Set! 🎉", "Ready to start spreading smiles?"},
}

func Render(d Draft) (string, *models.InlineKeyboardMarkup) {
	step := min(max(d.Step, StepIntro), StepFinish)
	header := fmt.Sprintf("%s\n%s\n\nStep %d of %d\n\n", stepTitles[step][0], stepTitles[step][1], step+1, StepCount)

	var body string
	var rows [][]models.InlineKeyboardButton
	switch step {
	case StepIntro:
		body = "I will send you gentle reminders throughout the day to smile, each with a positive quote to brighten your mood.\n\n" +
			"Let's fit them to your schedule."
	case StepTime:
		body = fmt.Sprintf("Start time: %s\nEnd time: %s\n\nI'll only send reminders during these hours.", d.Start, d.End)
		stepLabel := fmt.Sprintf("%dm", TimeStepMinutes)
		rows = append(rows,
			[]models.InlineKeyboardButton{
				{Text: "Start -" + stepLabel, CallbackData: BuildAdjustCallback(FieldStart, -1)},
				{Text: "Start +" + stepLabel, CallbackData: BuildAdjustCallback(FieldStart, 1)},
			},
			[]models.InlineKeyboardButton{
				{Text: "End -" + stepLabel, CallbackData: BuildAdjustCallback(FieldEnd, -1)},
				{Text: "End +" + stepLabel, CallbackData: BuildAdjustCallback(FieldEnd, 1)},
			},
		)
	case StepFrequency:
		body = fmt.Sprintf("%s per day\n\nSpread evenly between %s and %s.", pluralReminders(d.Frequency), d.Start, d.End)
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "-1", CallbackData: BuildAdjustCallback(FieldFrequency, -1)},
			{Text: "+1", CallbackData: BuildAdjustCallback(FieldFrequency, 1)},
		})
	case StepFinish:
		body = fmt.Sprintf("Your Settings:\n- Active hours: %s - %s\n- Frequency: %s per day\n\n"+
			"Tap the button below to start receiving reminders.", d.Start, d.End, pluralReminders(d.Frequency))
		if interval := reminder.IntervalMinutes(d.Start, d.End, d.Frequency); interval > 0 {
			body = fmt.Sprintf("%s\n\nThat's one reminder every %d minutes.", body, interval)
		}
	}

	nav := []models.InlineKeyboardButton{}
	if step > StepIntro {
		nav = append(nav, models.InlineKeyboardButton{Text: "Previous", CallbackData: BuildBackCallback()})
	}
	if step == StepFinish {
		nav = append(nav, models.InlineKeyboardButton{Text: "Start Smiling!", CallbackData: BuildFinishCallback()})
	} else {
		nav = append(nav, models.InlineKeyboardButton{Text: "Next", CallbackData: BuildNextCallback()})
	}
	rows = append(rows, nav)

	return header + body, &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func RenderPermissionDenied() (string, *models.InlineKeyboardMarkup) {
	text := "Permissions Required\n\nI can't send you messages right now. Unblock the bot and allow messages to receive smile reminders, then try again."
	return text, &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Try again", CallbackData: BuildFinishCallback()}},
		},
	}
}

func RenderCompleted(scheduled int) string {
	return fmt.Sprintf("Welcome aboard! 🎉\n\nYour smile reminders are now set up: %d scheduled for the coming week. Get ready to brighten your days!\n\n"+
		"Use /settings to adjust them, /quote for a smile right now, or /upcoming to see what's next.", scheduled)
}

func RenderRestartPrompt() (string, *models.InlineKeyboardMarkup) {
	return "You're already set up! Use /settings to change your reminders, or run the setup again.",
		&models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: "Run setup again", CallbackData: BuildRestartCallback()}},
			},
		}
}

func pluralReminders(n int) string {
	if n == 1 {
		return "1 reminder"
	}
	return fmt.Sprintf("%d reminders", n)
}
