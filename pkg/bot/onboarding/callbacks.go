package onboarding

import (
	"errors"
	"strings"
)

const (
	CallbackPrefix     = "o:"
	MaxCallbackDataLen = 64
)

type CallbackActionKind string

const (
	ActionNext    CallbackActionKind = "next"
	ActionBack    CallbackActionKind = "back"
	ActionAdjust  CallbackActionKind = "adj"
	ActionFinish  CallbackActionKind = "finish"
	ActionRestart CallbackActionKind = "restart"
)

type Field string

const (
	FieldStart     Field = "start"
	FieldEnd       Field = "end"
	FieldFrequency Field = "freq"
)

type CallbackAction struct {
	Kind  CallbackActionKind
	Field Field
	Delta int
}

var errInvalidCallback = errors.New("invalid onboarding callback")

func BuildNextCallback() string {
	return CallbackPrefix + string(ActionNext)
}

func BuildBackCallback() string {
	return CallbackPrefix + string(ActionBack)
}

func BuildFinishCallback() string {
	return CallbackPrefix + string(ActionFinish)
}

func BuildRestartCallback() string {
	return CallbackPrefix + string(ActionRestart)
}

func BuildAdjustCallback(field Field, delta int) string {
	sign := "+1"
	if delta < 0 {
		sign = "-1"
	}
	return CallbackPrefix + string(ActionAdjust) + ":" + string(field) + ":" + sign
}

func ParseCallbackData(data string) (CallbackAction, error) {
	if data == "" || len(data) > MaxCallbackDataLen || !strings.HasPrefix(data, CallbackPrefix) {
		return CallbackAction{}, errInvalidCallback
	}

	parts := strings.Split(strings.TrimPrefix(data, CallbackPrefix), ":")
	kind := CallbackActionKind(parts[0])

	switch {
	case len(parts) == 1 && (kind == ActionNext || kind == ActionBack || kind == ActionFinish || kind == ActionRestart):
		return CallbackAction{Kind: kind}, nil
	case len(parts) == 3 && kind == ActionAdjust:
		field := Field(parts[1])
		if field != FieldStart && field != FieldEnd && field != FieldFrequency {
			return CallbackAction{}, errInvalidCallback
		}
		switch parts[2] {
		case "+1":
			return CallbackAction{Kind: ActionAdjust, Field: field, Delta: 1}, nil
		case "-1":
			return CallbackAction{Kind: ActionAdjust, Field: field, Delta: -1}, nil
		}
	}
	return CallbackAction{}, errInvalidCallback
}
