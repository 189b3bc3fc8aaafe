package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

var (
	ErrInvalidTimeRange = errors.New("invalid time range: end must be after start")
	ErrInvalidFrequency = errors.New("invalid frequency: must be positive")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeOfDayFromMinutes wraps values outside a single day.
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// ParseTimeOfDay accepts "H:MM", "HH:MM" and "HHMM".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	var hourPart, minutePart string
	if idx := strings.IndexAny(value, ":."); idx >= 0 {
		hourPart, minutePart = value[:idx], value[idx+1:]
	} else if len(value) == 4 {
		hourPart, minutePart = value[:2], value[2:]
	} else {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	if len(minutePart) != 2 || hourPart == "" || len(hourPart) > 2 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return NewTimeOfDay(hour, minute)
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Config describes the daily active window and how many reminders fall in it.
type Config struct {
	Start     TimeOfDay `json:"startTime"`
	End       TimeOfDay `json:"endTime"`
	Frequency int       `json:"frequency"`
	Enabled   bool      `json:"notificationsEnabled"`
}

func DefaultConfig() Config {
	return Config{
		Start:     TimeOfDay{Hour: 9},
		End:       TimeOfDay{Hour: 21},
		Frequency: 5,
		Enabled:   true,
	}
}

func (c Config) Validate() error {
	return validate(c.Start, c.End, c.Frequency)
}

func validate(start, end TimeOfDay, frequency int) error {
	if end.Minutes() <= start.Minutes() {
		return fmt.Errorf("%w (start %s, end %s)", ErrInvalidTimeRange, start, end)
	}
	if frequency <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidFrequency, frequency)
	}
	return nil
}
