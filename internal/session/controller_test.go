package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/driver"
)

func newTestController(launch LaunchFunc) *Controller {
	return NewController(NewRegistry(), diagnostics.NewManager(nil), launch, 5*time.Second)
}

func launchFake(d *fakeDriver) LaunchFunc {
	return func(ctx context.Context, kind string, opts driver.Options) (driver.Handle, error) {
		d.kind = kind
		return d, nil
	}
}

func TestStartRegistersCurrentSession(t *testing.T) {
	d := &fakeDriver{}
	c := newTestController(launchFake(d))

	id, available, err := c.Start(context.Background(), "chrome", driver.Options{Headless: true})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !strings.HasPrefix(id, "chrome_") {
		t.Fatalf("Start() id = %q, want chrome_ prefix", id)
	}
	if !available {
		t.Fatalf("Start() diagnostics available = false, want true")
	}
	if d.timeoutSet.Load() != int64(5*time.Second) {
		t.Fatalf("eval timeout = %d, want %d", d.timeoutSet.Load(), int64(5*time.Second))
	}

	current, _, err := c.Registry().Current()
	if err != nil || current != id {
		t.Fatalf("Current() = %q, %v, want %q", current, err, id)
	}
}

func TestStartLaunchFailureRegistersNothing(t *testing.T) {
	c := newTestController(func(ctx context.Context, kind string, opts driver.Options) (driver.Handle, error) {
		return nil, driver.NewError(driver.CodeLaunchFailure, "no browser binary found", nil)
	})

	_, _, err := c.Start(context.Background(), "chrome", driver.Options{})
	var coded *driver.CodedError
	if !errors.As(err, &coded) || coded.Code != driver.CodeLaunchFailure {
		t.Fatalf("Start() error = %v, want LAUNCH_FAILURE", err)
	}
	if c.Registry().Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after failed launch", c.Registry().Count())
	}
}

func TestStartSessionIDsUnique(t *testing.T) {
	c := newTestController(func(ctx context.Context, kind string, opts driver.Options) (driver.Handle, error) {
		return &fakeDriver{kind: kind}, nil
	})

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id, _, err := c.Start(context.Background(), "chrome", driver.Options{})
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}

func TestStartAttachFailureLeavesSessionUsable(t *testing.T) {
	d := &fakeDriver{subscribeErr: errors.New("runtime domain refused")}
	c := newTestController(launchFake(d))

	id, available, err := c.Start(context.Background(), "chrome", driver.Options{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if available {
		t.Fatalf("Start() diagnostics available = true, want false")
	}

	// The session itself works; only diagnostics queries fail.
	current, _, err := c.Registry().Current()
	if err != nil || current != id {
		t.Fatalf("Current() = %q, %v, want %q", current, err, id)
	}
	_, dh, err := c.CurrentDiagnostics()
	if err != nil {
		t.Fatalf("CurrentDiagnostics() error = %v", err)
	}
	if _, err := dh.Console(false); !errors.Is(err, diagnostics.ErrUnavailable) {
		t.Fatalf("Console() error = %v, want ErrUnavailable", err)
	}
}

func TestCloseDetachesAndQuits(t *testing.T) {
	d := &fakeDriver{}
	c := newTestController(launchFake(d))

	id, _, err := c.Start(context.Background(), "chrome", driver.Options{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	closedID, err := c.Close(context.Background())
	if err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if closedID != id {
		t.Fatalf("Close() id = %q, want %q", closedID, id)
	}
	if d.quits.Load() != 1 {
		t.Fatalf("driver quit %d times, want 1", d.quits.Load())
	}
	if _, ok := c.Diagnostics().Handle(id); ok {
		t.Fatalf("diagnostics handle still attached after close")
	}
	_, err = c.Close(context.Background())
	wantNoActiveSession(t, err)
}

func TestShutdownDrainsOrphans(t *testing.T) {
	drivers := []*fakeDriver{}
	c := newTestController(func(ctx context.Context, kind string, opts driver.Options) (driver.Handle, error) {
		d := &fakeDriver{kind: kind}
		drivers = append(drivers, d)
		return d, nil
	})

	for i := 0; i < 3; i++ {
		if _, _, err := c.Start(context.Background(), "chrome", driver.Options{}); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	}

	errs := c.Shutdown(context.Background())
	if len(errs) != 0 {
		t.Fatalf("Shutdown() errors = %v", errs)
	}
	for i, d := range drivers {
		if d.quits.Load() != 1 {
			t.Fatalf("driver %d quit %d times, want 1", i, d.quits.Load())
		}
	}
	if c.Registry().Count() != 0 {
		t.Fatalf("Count() = %d, want 0", c.Registry().Count())
	}
}

func TestCurrentDiagnosticsNoSession(t *testing.T) {
	c := newTestController(launchFake(&fakeDriver{}))
	_, _, err := c.CurrentDiagnostics()
	wantNoActiveSession(t, err)
}
