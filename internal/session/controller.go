package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/driver"
)

// LaunchFunc starts a browser of the given kind. Injected so tests can
// substitute fakes for the chromedp-backed driver.
type LaunchFunc func(ctx context.Context, kind string, opts driver.Options) (driver.Handle, error)

// Controller orchestrates session creation and teardown: launch, register,
// best-effort diagnostics attach on the way up; diagnostics detach, driver
// quit, unregister on the way down.
type Controller struct {
	registry    *Registry
	diag        *diagnostics.Manager
	launch      LaunchFunc
	evalTimeout time.Duration
}

// NewController wires a controller. launch defaults to driver.Launch when
// nil. evalTimeout, when positive, overrides each new driver's default
// per-operation timeout.
func NewController(registry *Registry, diag *diagnostics.Manager, launch LaunchFunc, evalTimeout time.Duration) *Controller {
	if launch == nil {
		launch = func(ctx context.Context, kind string, opts driver.Options) (driver.Handle, error) {
			return driver.Launch(ctx, kind, opts)
		}
	}
	return &Controller{
		registry:    registry,
		diag:        diag,
		launch:      launch,
		evalTimeout: evalTimeout,
	}
}

// Registry exposes the underlying registry for current-session lookups.
func (c *Controller) Registry() *Registry { return c.registry }

// Diagnostics exposes the diagnostics manager.
func (c *Controller) Diagnostics() *diagnostics.Manager { return c.diag }

// newSessionID builds a unique identity that survives rapid creation:
// kind plus a random suffix.
func newSessionID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString())
}

// Start launches a browser, registers it as the current session and
// attaches diagnostics capture. A launch failure registers nothing. The
// diagnostics attach is best-effort: its failure only leaves the session
// without passive capture, reported via the returned flag.
func (c *Controller) Start(ctx context.Context, kind string, opts driver.Options) (string, bool, error) {
	h, err := c.launch(ctx, kind, opts)
	if err != nil {
		return "", false, err
	}
	if c.evalTimeout > 0 {
		h.SetEvalTimeout(c.evalTimeout)
	}

	id := newSessionID(kind)
	c.registry.Register(id, h)
	dh := c.diag.Attach(id, h)

	slog.Info("session started",
		"session_id", id, "kind", kind,
		"headless", opts.Headless, "diagnostics", dh.Available())
	return id, dh.Available(), nil
}

// Close tears down the current session: diagnostics detach first, so no
// capture callback can fire against a half-released driver, then driver
// quit and unregistration.
func (c *Controller) Close(ctx context.Context) (string, error) {
	id, _, err := c.registry.Current()
	if err != nil {
		return "", err
	}
	c.diag.Detach(id)
	return c.registry.CloseCurrent(ctx)
}

// Shutdown drains every session, orphaned ones included, at process exit.
// Per-session failures are logged by the registry and returned; none of
// them halts the sweep.
func (c *Controller) Shutdown(ctx context.Context) []error {
	for _, id := range c.registry.IDs() {
		c.diag.Detach(id)
	}
	return c.registry.CloseAll(ctx)
}

// CurrentDiagnostics resolves the diagnostics handle of the current
// session.
func (c *Controller) CurrentDiagnostics() (string, *diagnostics.Handle, error) {
	id, _, err := c.registry.Current()
	if err != nil {
		return "", nil, err
	}
	dh, ok := c.diag.Handle(id)
	if !ok {
		// Session exists but was never attached; treat as unavailable.
		return id, diagnostics.Unavailable(), nil
	}
	return id, dh, nil
}
