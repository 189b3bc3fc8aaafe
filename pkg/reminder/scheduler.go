// Package reminder turns a daily active window into concrete reminder fire
// times and registers them with a notification service.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/smith3v/tg-smile-reminder/pkg/logger"
)

const (
	Title = "😊 Smile Reminder"

	HorizonDays        = 7
	MinIntervalMinutes = 10
)

// Notifier is the notification service the scheduler registers reminders with.
type Notifier interface {
	RequestPermission(ctx context.Context) (bool, error)
	ScheduleAt(ctx context.Context, fireAt time.Time, title, body string) (string, error)
	CancelAll(ctx context.Context) error
}

type Scheduler struct {
	notifier Notifier
	quotes   *QuotePool
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Scheduler)

func WithQuotePool(pool *QuotePool) Option {
	return func(s *Scheduler) {
		if pool != nil {
			s.quotes = pool
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone the active window is expressed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewScheduler(notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		notifier: notifier,
		quotes:   DefaultQuotes,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IntervalMinutes is the spacing between daily slots, never below
// MinIntervalMinutes. The frequency is not reduced to fit the clamp.
func IntervalMinutes(start, end TimeOfDay, frequency int) int {
	if frequency <= 0 {
		return 0
	}
	interval := (end.Minutes() - start.Minutes()) / frequency
	if interval < MinIntervalMinutes {
		interval = MinIntervalMinutes
	}
	return interval
}

// FireTimes lists every slot of the next HorizonDays calendar days that is
// strictly after now. Slot minutes past midnight roll into the next day.
func FireTimes(now time.Time, cfg Config, loc *time.Location) ([]time.Time, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	interval := IntervalMinutes(cfg.Start, cfg.End, cfg.Frequency)
	year, month, day := now.Date()

	times := make([]time.Time, 0, HorizonDays*cfg.Frequency)
	for offset := 0; offset < HorizonDays; offset++ {
		for i := 0; i < cfg.Frequency; i++ {
			total := cfg.Start.Minutes() + i*interval
			fireAt := time.Date(year, month, day+offset, total/60, total%60, 0, 0, loc)
			if !fireAt.After(now) {
				continue
			}
			times = append(times, fireAt)
		}
	}
	return times, nil
}

// SlotsPastWindow counts daily slots that start at or after the end of the
// window because the interval was clamped.
func SlotsPastWindow(cfg Config) int {
	if cfg.Validate() != nil {
		return 0
	}
	interval := IntervalMinutes(cfg.Start, cfg.End, cfg.Frequency)
	past := 0
	for i := 0; i < cfg.Frequency; i++ {
		if cfg.Start.Minutes()+i*interval >= cfg.End.Minutes() {
			past++
		}
	}
	return past
}

// ScheduleNotifications replaces every pending reminder with a fresh set for
// the window. Previous reminders are cancelled even when the new window is
// invalid. Registration stops at the first notifier error; the count of
// reminders registered before it is returned alongside the error.
func (s *Scheduler) ScheduleNotifications(ctx context.Context, start, end TimeOfDay, frequency int) (int, error) {
	if err := s.CancelAllNotifications(ctx); err != nil {
		return 0, err
	}

	if err := validate(start, end, frequency); err != nil {
		logger.Error("invalid reminder window", "start", start.String(), "end", end.String(), "frequency", frequency, "error", err)
		return 0, err
	}

	times, err := FireTimes(s.now(), Config{Start: start, End: end, Frequency: frequency}, s.loc)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for _, fireAt := range times {
		quote := s.GetRandomQuote()
		if _, err := s.notifier.ScheduleAt(ctx, fireAt, Title, quote); err != nil {
			return scheduled, fmt.Errorf("schedule reminder at %s: %w", fireAt.Format(time.RFC3339), err)
		}
		scheduled++
		logger.Debug("scheduled reminder", "fire_at", fireAt)
	}

	logger.Info("scheduled reminders",
		"per_day", frequency,
		"interval_minutes", IntervalMinutes(start, end, frequency),
		"total", scheduled,
	)
	return scheduled, nil
}

func (s *Scheduler) CancelAllNotifications(ctx context.Context) error {
	if err := s.notifier.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	logger.Debug("all reminders cancelled")
	return nil
}

func (s *Scheduler) GetRandomQuote() string {
	return s.quotes.Random()
}

// Apply schedules reminders for an enabled config and clears them otherwise.
func (s *Scheduler) Apply(ctx context.Context, cfg Config) (int, error) {
	if !cfg.Enabled {
		return 0, s.CancelAllNotifications(ctx)
	}
	return s.ScheduleNotifications(ctx, cfg.Start, cfg.End, cfg.Frequency)
}
