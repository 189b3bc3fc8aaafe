package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/smith3v/tg-smile-reminder/pkg/bot/reminders"
	"github.com/smith3v/tg-smile-reminder/pkg/reminder"
	"github.com/smith3v/tg-smile-reminder/pkg/settings"
)

const (
	StepIntro = iota
	StepTime
	StepFrequency
	StepFinish

	StepCount = StepFinish + 1
)

const (
	TimeStepMinutes = 30
	MinFrequency    = 1
	MaxFrequency    = 20
)

var (
	ErrNoDraft          = errors.New("onboarding has not been started")
	ErrPermissionDenied = errors.New("notification permission denied")
)

// Draft is the in-progress onboarding answers, kept in the settings store
// until the user finishes.
type Draft struct {
	Step      int                `json:"step"`
	Start     reminder.TimeOfDay `json:"startTime"`
	End       reminder.TimeOfDay `json:"endTime"`
	Frequency int                `json:"frequency"`
}

func (d Draft) Config() reminder.Config {
	return reminder.Config{Start: d.Start, End: d.End, Frequency: d.Frequency, Enabled: true}
}

func newDraft() Draft {
	cfg := reminder.DefaultConfig()
	return Draft{Step: StepIntro, Start: cfg.Start, End: cfg.End, Frequency: cfg.Frequency}
}

func LoadDraft(ctx context.Context, userID int64) (Draft, bool, error) {
	raw, ok, err := settings.Get(ctx, userID, settings.KeyOnboarding)
	if err != nil || !ok {
		return Draft{}, false, err
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, false, fmt.Errorf("decode onboarding draft: %w", err)
	}
	return d, true, nil
}

func saveDraft(ctx context.Context, userID int64, d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return settings.Set(ctx, userID, settings.KeyOnboarding, string(data))
}

// Begin starts onboarding over from the intro step with default answers.
func Begin(ctx context.Context, userID int64) (Draft, error) {
	d := newDraft()
	if err := saveDraft(ctx, userID, d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Move goes delta steps forward or back. Leaving the time step requires an
// end time after the start time.
func Move(ctx context.Context, userID int64, delta int) (Draft, error) {
	d, ok, err := LoadDraft(ctx, userID)
	if err != nil {
		return Draft{}, err
	}
	if !ok {
		return Draft{}, ErrNoDraft
	}
	if delta > 0 && d.Step == StepTime && d.End.Minutes() <= d.Start.Minutes() {
		return d, reminder.ErrInvalidTimeRange
	}
	d.Step += delta
	if d.Step < StepIntro {
		d.Step = StepIntro
	}
	if d.Step > StepFinish {
		d.Step = StepFinish
	}
	return d, saveDraft(ctx, userID, d)
}

// Adjust moves a time by TimeStepMinutes or the frequency by one, within
// MinFrequency..MaxFrequency.
func Adjust(ctx context.Context, userID int64, field Field, delta int) (Draft, error) {
	d, ok, err := LoadDraft(ctx, userID)
	if err != nil {
		return Draft{}, err
	}
	if !ok {
		return Draft{}, ErrNoDraft
	}
	switch field {
	case FieldStart:
		d.Start = reminder.TimeOfDayFromMinutes(d.Start.Minutes() + delta*TimeStepMinutes)
	case FieldEnd:
		d.End = reminder.TimeOfDayFromMinutes(d.End.Minutes() + delta*TimeStepMinutes)
	case FieldFrequency:
		d.Frequency = min(max(d.Frequency+delta, MinFrequency), MaxFrequency)
	default:
		return d, errInvalidCallback
	}
	return d, saveDraft(ctx, userID, d)
}

// Finish asks for permission first. Only when it is granted are the
// settings and the onboarded flag stored and reminders scheduled.
func Finish(ctx context.Context, userID int64, notifier reminder.Notifier) (int, error) {
	d, ok, err := LoadDraft(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNoDraft
	}
	if err := d.Config().Validate(); err != nil {
		return 0, err
	}

	granted, err := notifier.RequestPermission(ctx)
	if err != nil {
		return 0, fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		return 0, ErrPermissionDenied
	}

	s, _, err := settings.Load(ctx, userID)
	if err != nil && !errors.Is(err, settings.ErrCorruptSettings) {
		return 0, err
	}
	s.Reminder = d.Config()
	if err := settings.Save(ctx, userID, s); err != nil {
		return 0, err
	}
	if err := settings.MarkOnboarded(ctx, userID); err != nil {
		return 0, err
	}
	if err := settings.Delete(ctx, userID, settings.KeyOnboarding); err != nil {
		return 0, err
	}
	return reminders.Apply(ctx, notifier, s)
}
