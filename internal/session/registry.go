// Package session owns the mapping from session identity to driver handle
// and the single current-session pointer, plus the lifecycle controller
// that launches and tears sessions down.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/browser_agent/internal/driver"
)

// Registry is the single source of truth for which sessions exist and
// which one is active. Operations that need "the" session resolve through
// the current pointer only; they never take a session id. Registering a
// new session repoints current without closing the previous one, so older
// entries stay in the map until CloseAll — a deliberate carry-over from
// the original design, not a bug.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]driver.Handle
	current  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]driver.Handle)}
}

func errNoActiveSession() error {
	return driver.NewError(driver.CodeNoActiveSession,
		"no active browser session; start a browser first", nil)
}

// Register inserts a session and makes it current. The caller guarantees
// id uniqueness; registration itself cannot fail.
func (r *Registry) Register(id string, h driver.Handle) {
	r.mu.Lock()
	r.sessions[id] = h
	r.current = id
	r.mu.Unlock()
	slog.Info("session registered", "session_id", id, "kind", h.Kind())
}

// Current resolves the active session. Fails with NO_ACTIVE_SESSION when
// the pointer is unset or, defensively, when it references a missing
// entry.
func (r *Registry) Current() (string, driver.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == "" {
		return "", nil, errNoActiveSession()
	}
	h, ok := r.sessions[r.current]
	if !ok {
		return "", nil, errNoActiveSession()
	}
	return r.current, h, nil
}

// CloseCurrent releases the active session's driver and removes its entry.
// The entry is removed and the pointer cleared even when the driver's own
// shutdown fails; that failure is returned for reporting.
func (r *Registry) CloseCurrent(ctx context.Context) (string, error) {
	r.mu.Lock()
	id := r.current
	h, ok := r.sessions[id]
	if id == "" || !ok {
		r.mu.Unlock()
		return "", errNoActiveSession()
	}
	delete(r.sessions, id)
	r.current = ""
	r.mu.Unlock()

	if err := h.Quit(ctx); err != nil {
		slog.Warn("driver shutdown failed during close", "session_id", id, "error", err)
		return id, err
	}
	slog.Info("session closed", "session_id", id)
	return id, nil
}

// CloseAll releases every registered driver, current or orphaned, for
// process shutdown. Individual failures are collected, never aborting the
// sweep; the map and pointer are cleared unconditionally.
func (r *Registry) CloseAll(ctx context.Context) []error {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]driver.Handle)
	r.current = ""
	r.mu.Unlock()

	var errs []error
	for id, h := range sessions {
		if err := h.Quit(ctx); err != nil {
			slog.Warn("driver shutdown failed during close-all", "session_id", id, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	return errs
}

// IDs lists every registered session identity, current or orphaned.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count reports how many sessions exist in the mapping.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
