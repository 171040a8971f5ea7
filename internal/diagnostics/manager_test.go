package diagnostics

import (
	"errors"
	"testing"

	"github.com/chromedp/cdproto/runtime"
	"github.com/dgnsrekt/browser_agent/internal/driver"
)

// fakeEventSource implements only the Subscribe corner of driver.Handle;
// the embedded interface panics on anything else, which no test touches.
type fakeEventSource struct {
	driver.Handle
	subscribeErr error
	emit         func(ev any)
}

func (f *fakeEventSource) Subscribe(fn func(ev any)) error {
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.emit = fn
	return nil
}

func TestAttachCapturesEvents(t *testing.T) {
	m := NewManager(nil)
	src := &fakeEventSource{}

	h := m.Attach("chrome_abc", src)
	if !h.Available() {
		t.Fatalf("Available() = false, want true")
	}

	src.emit(&runtime.EventConsoleAPICalled{Type: runtime.APITypeLog})

	entries, err := h.Console(false)
	if err != nil {
		t.Fatalf("Console() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Console() len = %d, want 1", len(entries))
	}
}

func TestAttachSubscribeFailureYieldsUnavailable(t *testing.T) {
	m := NewManager(nil)
	src := &fakeEventSource{subscribeErr: errors.New("event stream broken")}

	h := m.Attach("chrome_abc", src)
	if h.Available() {
		t.Fatalf("Available() = true, want false")
	}
	if _, err := h.Console(false); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Console() error = %v, want ErrUnavailable", err)
	}

	// The session itself stays registered with the manager.
	if _, ok := m.Handle("chrome_abc"); !ok {
		t.Fatalf("Handle() missing after failed attach")
	}
}

func TestDetachRemovesAllState(t *testing.T) {
	m := NewManager(nil)
	src := &fakeEventSource{}
	h := m.Attach("chrome_abc", src)

	src.emit(&runtime.EventConsoleAPICalled{Type: runtime.APITypeLog})
	m.Detach("chrome_abc")

	if _, ok := m.Handle("chrome_abc"); ok {
		t.Fatalf("Handle() still present after detach")
	}
	// Detach is idempotent.
	m.Detach("chrome_abc")

	// The detached handle's buffered entries stay readable until dropped.
	entries, err := h.Console(false)
	if err != nil || len(entries) != 1 {
		t.Fatalf("Console() after detach = %d entries, err %v", len(entries), err)
	}
}
