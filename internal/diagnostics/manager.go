package diagnostics

import (
	"log/slog"
	"sync"

	"github.com/dgnsrekt/browser_agent/internal/driver"
)

// Manager owns the per-session diagnostics handles.
type Manager struct {
	mu      sync.Mutex
	handles map[string]*Handle
	notify  NotifyFunc
}

// NewManager creates an empty manager. notify, when non-nil, receives
// every captured entry (live streaming); it must not block.
func NewManager(notify NotifyFunc) *Manager {
	return &Manager{
		handles: make(map[string]*Handle),
		notify:  notify,
	}
}

// Attach subscribes passive capture on the driver for the given session.
// Best-effort: when the event stream cannot be enabled the session gets an
// unavailable handle and every later query reports ErrUnavailable. Attach
// never fails the session launch.
func (m *Manager) Attach(sessionID string, d driver.Handle) *Handle {
	h := &Handle{
		notify:  m.notify,
		pending: make(map[string]pendingRequest),
		done:    make(chan struct{}),
	}

	if err := d.Subscribe(h.onEvent); err != nil {
		slog.Warn("diagnostics capture unavailable for session",
			"session_id", sessionID, "error", err)
		h = Unavailable()
	} else {
		h.available = true
		go h.janitor()
	}

	m.mu.Lock()
	m.handles[sessionID] = h
	m.mu.Unlock()
	return h
}

// Handle returns the diagnostics handle for a session.
func (m *Manager) Handle(sessionID string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[sessionID]
	return h, ok
}

// Detach drops all diagnostics state for a session in one removal, as part
// of session teardown. Runs before the driver is released so no capture
// callback fires against a half-torn-down driver.
func (m *Manager) Detach(sessionID string) {
	m.mu.Lock()
	h, ok := m.handles[sessionID]
	if ok {
		delete(m.handles, sessionID)
	}
	m.mu.Unlock()
	if ok {
		h.close()
	}
}
