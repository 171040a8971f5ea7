// Package driver wraps chromedp as the browser-automation capability
// consumed by the session layer. Every operation talks to a live
// Chromium-family browser over CDP; callers see coded errors instead of
// raw chromedp failures.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Browser kinds accepted by Launch. chromedp speaks CDP, so only
// Chromium-family browsers are supported.
const (
	KindChrome   = "chrome"
	KindChromium = "chromium"
	KindEdge     = "edge"
)

const (
	launchTimeout      = 30 * time.Second
	defaultEvalTimeout = 15 * time.Second
)

// Options mirrors the launch options accepted at the tool boundary.
type Options struct {
	Headless   bool
	Arguments  []string
	WindowSize string // "width,height", defaults to 1920,1080
	ExecPath   string // overrides binary detection
}

// Cookie is the wire shape for cookie operations.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
}

// WindowInfo describes one browser page target.
type WindowInfo struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Active bool   `json:"active"`
}

// Driver owns one launched browser and its active tab.
type Driver struct {
	kind        string
	evalTimeout time.Duration

	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu         sync.Mutex
	tabCtx     context.Context
	tabCancels []context.CancelFunc
	listeners  []func(ev any)
	frame      *frameState
	dialog     *dialogState
	quit       bool
}

// Kind reports which browser backend this driver was launched with.
func (d *Driver) Kind() string { return d.kind }

// SetEvalTimeout overrides the default per-operation timeout.
func (d *Driver) SetEvalTimeout(timeout time.Duration) {
	if timeout > 0 {
		d.evalTimeout = timeout
	}
}

// detectBinary finds a runnable browser binary for the requested kind.
func detectBinary(kind string) (string, error) {
	var candidates []string
	switch kind {
	case KindChrome:
		candidates = []string{"google-chrome", "google-chrome-stable", "chrome"}
	case KindChromium:
		candidates = []string{"chromium-browser", "chromium"}
	case KindEdge:
		candidates = []string{"microsoft-edge", "msedge"}
	default:
		return "", fmt.Errorf("unsupported browser kind %q (chromedp drives Chromium-family browsers: chrome, chromium, edge)", kind)
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if runtime.GOOS == "darwin" && kind == KindChrome {
		macPath := "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
		if _, err := os.Stat(macPath); err == nil {
			return macPath, nil
		}
	}
	return "", fmt.Errorf("no %s binary found (tried %s)", kind, strings.Join(candidates, ", "))
}

// splitArg parses a raw "--name=value" command-line argument into a
// chromedp flag name/value pair.
func splitArg(arg string) (string, any) {
	arg = strings.TrimLeft(arg, "-")
	if name, value, ok := strings.Cut(arg, "="); ok {
		return name, value
	}
	return arg, true
}

// Launch starts a browser of the given kind and attaches to its first tab.
// A failure here leaves nothing behind: all contexts are cancelled before
// the error is returned.
func Launch(ctx context.Context, kind string, opts Options) (*Driver, error) {
	path := opts.ExecPath
	if path == "" {
		detected, err := detectBinary(kind)
		if err != nil {
			return nil, NewError(CodeLaunchFailure, "browser launch failed", err)
		}
		path = detected
	}

	windowSize := opts.WindowSize
	if windowSize == "" {
		windowSize = "1920,1080"
	}
	var width, height int
	if _, err := fmt.Sscanf(windowSize, "%d,%d", &width, &height); err != nil {
		return nil, NewError(CodeValidation, fmt.Sprintf("invalid window size %q", windowSize), err)
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(path),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-crash-reporter", true),
		chromedp.WindowSize(width, height),
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	}
	for _, arg := range opts.Arguments {
		name, value := splitArg(arg)
		allocOpts = append(allocOpts, chromedp.Flag(name, value))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	d := &Driver{
		kind:        kind,
		evalTimeout: defaultEvalTimeout,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancels:  []context.CancelFunc{tabCancel},
		dialog:      &dialogState{},
	}

	startCtx, cancel := context.WithTimeout(tabCtx, launchTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(startCtx); err != nil {
		allocCancel()
		return nil, NewError(CodeLaunchFailure, "browser launch failed", err)
	}

	d.watchDialogs(tabCtx)
	return d, nil
}

// Quit tears down the browser process. Safe to call once; the session
// registry guarantees it is never invoked twice for the same handle.
func (d *Driver) Quit(ctx context.Context) error {
	d.mu.Lock()
	if d.quit {
		d.mu.Unlock()
		return nil
	}
	d.quit = true
	tab := d.tabCtx
	d.mu.Unlock()

	err := chromedp.Cancel(tab)
	d.mu.Lock()
	for _, cancel := range d.tabCancels {
		cancel()
	}
	d.tabCancels = nil
	d.mu.Unlock()
	d.allocCancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		return NewError(CodeDriverFailure, "browser shutdown reported an error", err)
	}
	return nil
}

// Subscribe registers a CDP event listener on the active tab and enables
// the runtime, network and page domains that feed it. The listener is
// re-applied when the active tab changes.
func (d *Driver) Subscribe(fn func(ev any)) error {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	tab := d.tabCtx
	d.mu.Unlock()

	if err := d.enableDomains(tab); err != nil {
		return err
	}
	chromedp.ListenTarget(tab, fn)
	return nil
}

func (d *Driver) enableDomains(tab context.Context) error {
	runCtx, cancel := context.WithTimeout(tab, d.evalTimeout)
	defer cancel()
	if err := chromedp.Run(runCtx, enableCaptureDomains()); err != nil {
		return NewError(CodeDriverFailure, "enable capture domains", err)
	}
	return nil
}

// tab returns the active tab context.
func (d *Driver) tab() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tabCtx
}

// run executes chromedp actions against the active tab with a deadline.
// Caller cancellation is propagated; deadline expiry maps to EVAL_TIMEOUT.
func (d *Driver) run(ctx context.Context, timeout time.Duration, what string, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = d.evalTimeout
	}
	runCtx, cancel := context.WithTimeout(d.tab(), timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return NewError(CodeEvalTimeout, fmt.Sprintf("%s timed out after %s", what, timeout), err)
		}
		return NewError(CodeDriverFailure, what+" failed", err)
	}
	return nil
}

// adoptTab makes the given tab context the active one, replaying the
// registered capture listeners so diagnostics keep flowing after a
// window switch.
func (d *Driver) adoptTab(tabCtx context.Context, cancel context.CancelFunc) error {
	d.mu.Lock()
	d.tabCtx = tabCtx
	d.tabCancels = append(d.tabCancels, cancel)
	d.frame = nil
	listeners := make([]func(ev any), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	d.watchDialogs(tabCtx)
	if len(listeners) == 0 {
		return nil
	}
	if err := d.enableDomains(tabCtx); err != nil {
		return err
	}
	for _, fn := range listeners {
		chromedp.ListenTarget(tabCtx, fn)
	}
	return nil
}

// ActiveTargetID reports the CDP target of the active tab.
func (d *Driver) ActiveTargetID() string {
	if c := chromedp.FromContext(d.tab()); c != nil && c.Target != nil {
		return string(c.Target.TargetID)
	}
	return ""
}

// watchDialogs records JavaScript dialog openings so alert tools can
// answer them later.
func (d *Driver) watchDialogs(tabCtx context.Context) {
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			d.dialog.openDialog(e.Message, string(e.Type))
		}
	})
}

// Targets enumerates page targets for window tooling.
func (d *Driver) Targets(ctx context.Context) ([]*target.Info, error) {
	runCtx, cancel := context.WithTimeout(d.tab(), d.evalTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	infos, err := chromedp.Targets(runCtx)
	if err != nil {
		return nil, NewError(CodeDriverFailure, "enumerate targets failed", err)
	}
	return infos, nil
}
