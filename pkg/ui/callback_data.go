package ui

import (
	"errors"
	"strconv"
	"strings"
)

const (
	CallbackPrefix     = "s:"
	MaxCallbackDataLen = 64
)

type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenStart     Screen = "start"
	ScreenEnd       Screen = "end"
	ScreenFrequency Screen = "freq"
	ScreenTimezone  Screen = "tz"
	ScreenNotify    Screen = "notify"
	ScreenClose     Screen = "close"
)

type Operation string

const (
	OpNone   Operation = ""
	OpInc    Operation = "+1"
	OpDec    Operation = "-1"
	OpSet    Operation = "set"
	OpToggle Operation = "toggle"
	OpType   Operation = "type"
)

type Action struct {
	Screen Screen
	Op     Operation
	Value  int
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidOperation    = errors.New("invalid callback operation")
	errInvalidValue        = errors.New("invalid callback value")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildScreenCallback(screen Screen) (string, error) {
	if _, err := parseScreen(string(screen)); err != nil {
		return "", err
	}
	return validateCallbackData(CallbackPrefix + string(screen))
}

func BuildHomeCallback() (string, error) {
	return BuildScreenCallback(ScreenHome)
}

func BuildCloseCallback() (string, error) {
	return BuildScreenCallback(ScreenClose)
}

// BuildAdjustCallback builds a +1/-1 step; a step on a time screen is
// TimeStepMinutes.
func BuildAdjustCallback(screen Screen, op Operation) (string, error) {
	if !isAdjustable(screen) {
		return "", errInvalidAction
	}
	if op != OpInc && op != OpDec {
		return "", errInvalidOperation
	}
	return validateCallbackData(CallbackPrefix + string(screen) + ":" + string(op))
}

// BuildSetCallback sets an absolute value: minutes since midnight for the
// time screens, a count for frequency and an hour offset for the timezone.
func BuildSetCallback(screen Screen, value int) (string, error) {
	if !isAdjustable(screen) {
		return "", errInvalidAction
	}
	if value < 0 && screen != ScreenTimezone {
		return "", errInvalidValue
	}
	return validateCallbackData(CallbackPrefix + string(screen) + ":" + string(OpSet) + ":" + strconv.Itoa(value))
}

func BuildToggleNotifyCallback() (string, error) {
	return validateCallbackData(CallbackPrefix + string(ScreenNotify) + ":" + string(OpToggle))
}

// BuildTypeCallback asks the user to type a time for a time screen.
func BuildTypeCallback(screen Screen) (string, error) {
	if !isTimeScreen(screen) {
		return "", errInvalidAction
	}
	return validateCallbackData(CallbackPrefix + string(screen) + ":" + string(OpType))
}

func ParseCallbackData(data string) (Action, error) {
	if data == "" {
		return Action{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return Action{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, CallbackPrefix) {
		return Action{}, errInvalidPrefix
	}

	parts := strings.Split(data, ":")
	if len(parts) < 2 || parts[0] != "s" {
		return Action{}, errInvalidPrefix
	}

	screen, err := parseScreen(parts[1])
	if err != nil {
		return Action{}, err
	}

	switch len(parts) {
	case 2:
		return Action{Screen: screen, Op: OpNone}, nil
	case 3:
		return parseOperation(screen, Operation(parts[2]))
	case 4:
		if Operation(parts[2]) != OpSet {
			return Action{}, errInvalidOperation
		}
		return parseSetAction(screen, parts[3])
	default:
		return Action{}, errInvalidAction
	}
}

func parseOperation(screen Screen, op Operation) (Action, error) {
	switch op {
	case OpInc, OpDec:
		if !isAdjustable(screen) {
			return Action{}, errInvalidAction
		}
		value := 1
		if op == OpDec {
			value = -1
		}
		return Action{Screen: screen, Op: op, Value: value}, nil
	case OpToggle:
		if screen != ScreenNotify {
			return Action{}, errInvalidAction
		}
		return Action{Screen: screen, Op: OpToggle}, nil
	case OpType:
		if !isTimeScreen(screen) {
			return Action{}, errInvalidAction
		}
		return Action{Screen: screen, Op: OpType}, nil
	default:
		return Action{}, errInvalidOperation
	}
}

func parseSetAction(screen Screen, valuePart string) (Action, error) {
	if !isAdjustable(screen) {
		return Action{}, errInvalidAction
	}
	valid := isASCIIUnsignedInt(valuePart)
	if screen == ScreenTimezone {
		valid = isASCIISignedInt(valuePart)
	}
	if !valid {
		return Action{}, errInvalidValue
	}
	value, err := strconv.Atoi(valuePart)
	if err != nil {
		return Action{}, errInvalidValue
	}
	return Action{Screen: screen, Op: OpSet, Value: value}, nil
}

func validateCallbackData(data string) (string, error) {
	if data == "" {
		return "", errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}

func parseScreen(screenPart string) (Screen, error) {
	switch screen := Screen(screenPart); screen {
	case ScreenHome, ScreenStart, ScreenEnd, ScreenFrequency, ScreenTimezone, ScreenNotify, ScreenClose:
		return screen, nil
	default:
		return "", errInvalidAction
	}
}

func isAdjustable(screen Screen) bool {
	return isTimeScreen(screen) || screen == ScreenFrequency || screen == ScreenTimezone
}

func isTimeScreen(screen Screen) bool {
	return screen == ScreenStart || screen == ScreenEnd
}

func isASCIIUnsignedInt(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func isASCIISignedInt(value string) bool {
	if value == "" {
		return false
	}
	if value[0] == '-' {
		return isASCIIUnsignedInt(value[1:])
	}
	return isASCIIUnsignedInt(value)
}
