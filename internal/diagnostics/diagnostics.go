// Package diagnostics passively accumulates browser-originated console,
// page-error and network events per session, and serves them on demand.
// Capture runs on the driver's CDP event stream; nothing here polls.
package diagnostics

import (
	"errors"
	"sync"
	"time"
)

// EventClass selects one of the three capture sequences.
type EventClass string

const (
	ClassConsole   EventClass = "console"
	ClassPageError EventClass = "pageError"
	ClassNetwork   EventClass = "network"
)

// Normalized console levels. Backend-specific names are folded into this
// closed set at capture time.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
	LevelDebug   = "debug"
)

// ErrUnavailable reports that passive capture could not be attached for
// this session. Distinct from an empty result: callers must be able to
// tell "no events yet" apart from "capture isn't supported here".
var ErrUnavailable = errors.New("diagnostics capture is not available for this session")

// ConsoleEntry is one normalized console message.
type ConsoleEntry struct {
	Level      string    `json:"level"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	SourceType string    `json:"sourceType"`
}

// PageErrorEntry is one uncaught page error. StackTrace is empty when the
// backend supplied no call-frame data.
type PageErrorEntry struct {
	Level      string    `json:"level"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	StackTrace string    `json:"stackTrace,omitempty"`
}

// NetworkEntry is one completed response or failed request.
type NetworkEntry struct {
	EventKind string    `json:"eventKind"` // "response" or "error"
	URL       string    `json:"url"`
	Method    string    `json:"method,omitempty"`
	Status    int64     `json:"status,omitempty"`
	MimeType  string    `json:"mimeType,omitempty"`
	ErrorText string    `json:"errorText,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NotifyFunc receives every appended entry, for live streaming. May be nil.
type NotifyFunc func(class EventClass, entry any)

// seq is one append-only capture sequence. Appends and drains are guarded
// by the sequence's own mutex, so background callbacks never race a read.
type seq[T any] struct {
	mu      sync.Mutex
	entries []T
}

func (s *seq[T]) append(e T) {
	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
}

// drain snapshots the sequence, truncating it when clear is set. The
// snapshot holds every entry present at call time; concurrent appends land
// either in the snapshot or in the next read, never both.
func (s *seq[T]) drain(clear bool) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.entries))
	copy(out, s.entries)
	if clear {
		s.entries = nil
	}
	return out
}

// Handle is the per-session diagnostics buffer. A handle with available
// set to false answers every query with ErrUnavailable for the lifetime
// of the session.
type Handle struct {
	available bool
	notify    NotifyFunc

	console    seq[ConsoleEntry]
	pageErrors seq[PageErrorEntry]
	network    seq[NetworkEntry]

	pendingMu sync.Mutex
	pending   map[string]pendingRequest

	done chan struct{}
}

type pendingRequest struct {
	url      string
	method   string
	recorded time.Time
}

// Unavailable builds a handle whose queries all return ErrUnavailable.
func Unavailable() *Handle {
	return &Handle{}
}

// Available reports whether passive capture was attached.
func (h *Handle) Available() bool { return h.available }

// Console returns the console sequence, optionally truncating it.
func (h *Handle) Console(clear bool) ([]ConsoleEntry, error) {
	if !h.available {
		return nil, ErrUnavailable
	}
	return h.console.drain(clear), nil
}

// PageErrors returns the page-error sequence, optionally truncating it.
func (h *Handle) PageErrors(clear bool) ([]PageErrorEntry, error) {
	if !h.available {
		return nil, ErrUnavailable
	}
	return h.pageErrors.drain(clear), nil
}

// Network returns the network sequence, optionally truncating it.
func (h *Handle) Network(clear bool) ([]NetworkEntry, error) {
	if !h.available {
		return nil, ErrUnavailable
	}
	return h.network.drain(clear), nil
}

func (h *Handle) appendConsole(e ConsoleEntry) {
	h.console.append(e)
	if h.notify != nil {
		h.notify(ClassConsole, e)
	}
}

func (h *Handle) appendPageError(e PageErrorEntry) {
	h.pageErrors.append(e)
	if h.notify != nil {
		h.notify(ClassPageError, e)
	}
}

func (h *Handle) appendNetwork(e NetworkEntry) {
	h.network.append(e)
	if h.notify != nil {
		h.notify(ClassNetwork, e)
	}
}

// close stops the pending-request janitor. Buffered entries stay readable
// until the handle is dropped.
func (h *Handle) close() {
	if h.done != nil {
		select {
		case <-h.done:
		default:
			close(h.done)
		}
	}
}
