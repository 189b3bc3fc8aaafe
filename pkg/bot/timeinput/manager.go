// Package timeinput tracks users who were asked to type a time of day on
// the settings screen.
package timeinput

import (
	"context"
	"sync"
	"time"
)

const DefaultTimeout = 5 * time.Minute

type Field string

const (
	FieldStart Field = "start"
	FieldEnd   Field = "end"
)

// Pending is one outstanding request for a typed time. MessageID is the
// settings message to refresh once the time arrives.
type Pending struct {
	ChatID    int64
	MessageID int
	Field     Field
	ExpiresAt time.Time
}

type Manager struct {
	mu      sync.Mutex
	pending map[int64]Pending
	now     func() time.Time
}

func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		pending: make(map[int64]Pending),
		now:     now,
	}
}

var DefaultManager = NewManager(nil)

func ResetDefaultManager(now func() time.Time) {
	DefaultManager = NewManager(now)
}

// Start replaces any earlier request of the user.
func (m *Manager) Start(userID int64, p Pending, timeout time.Duration) {
	if m == nil || userID == 0 || p.ChatID == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ExpiresAt = m.now().Add(timeout)
	m.pending[userID] = p
}

// Lookup returns the user's live request for chatID. Expired requests are
// dropped.
func (m *Manager) Lookup(userID, chatID int64) (Pending, bool) {
	if m == nil || userID == 0 || chatID == 0 {
		return Pending{}, false
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.pending[userID]
	if !ok || entry.ChatID != chatID {
		return Pending{}, false
	}
	if !now.Before(entry.ExpiresAt) {
		delete(m.pending, userID)
		return Pending{}, false
	}
	return entry, true
}

func (m *Manager) Clear(userID int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, userID)
}

func (m *Manager) SweepExpired() {
	if m == nil {
		return
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, entry := range m.pending {
		if !now.Before(entry.ExpiresAt) {
			delete(m.pending, userID)
		}
	}
}

func (m *Manager) StartSweeper(ctx context.Context) {
	if m == nil || ctx == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SweepExpired()
		}
	}
}
