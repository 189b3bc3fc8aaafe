// Package notify is the notification service reminders are registered with:
// a persisted queue of pending reminders and the Telegram sender that
// delivers them.
package notify

import "sync"

// HandlerPolicy controls how delivered reminders are presented in the chat.
type HandlerPolicy struct {
	PlaySound       bool
	ProtectContent  bool
	ShowLinkPreview bool
}

func DefaultHandlerPolicy() HandlerPolicy {
	return HandlerPolicy{PlaySound: true, ProtectContent: true}
}

var (
	policyMu sync.RWMutex
	policy   = DefaultHandlerPolicy()
)

// SetHandlerPolicy is called once at boot, before any reminder is delivered.
func SetHandlerPolicy(p HandlerPolicy) {
	policyMu.Lock()
	defer policyMu.Unlock()
	policy = p
}

func CurrentPolicy() HandlerPolicy {
	policyMu.RLock()
	defer policyMu.RUnlock()
	return policy
}
