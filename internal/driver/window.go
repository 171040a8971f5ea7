package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/browser_agent/internal/locator"
)

// frameState pins element queries to one iframe's subtree.
type frameState struct {
	node *cdp.Node
}

// dialogState remembers the most recent JavaScript dialog so alert tools
// can inspect and answer it.
type dialogState struct {
	mu      sync.Mutex
	open    bool
	message string
	kind    string
}

func (s *dialogState) openDialog(message, kind string) {
	s.mu.Lock()
	s.open = true
	s.message = message
	s.kind = kind
	s.mu.Unlock()
}

func (s *dialogState) current() (string, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message, s.kind, s.open
}

func (s *dialogState) close() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

// Windows lists all page targets in the browser.
func (d *Driver) Windows(ctx context.Context) ([]WindowInfo, error) {
	infos, err := d.Targets(ctx)
	if err != nil {
		return nil, err
	}
	active := d.ActiveTargetID()
	out := make([]WindowInfo, 0, len(infos))
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		out = append(out, WindowInfo{
			ID:     string(info.TargetID),
			URL:    info.URL,
			Title:  info.Title,
			Active: string(info.TargetID) == active,
		})
	}
	return out, nil
}

// SwitchWindow makes the page target with the given ID the active tab.
func (d *Driver) SwitchWindow(ctx context.Context, id string) error {
	infos, err := d.Targets(ctx)
	if err != nil {
		return err
	}
	var found bool
	for _, info := range infos {
		if string(info.TargetID) == id && info.Type == "page" {
			found = true
			break
		}
	}
	if !found {
		return NewError(CodeDriverFailure, fmt.Sprintf("no window with id %q", id), nil)
	}

	tabCtx, cancel := chromedp.NewContext(d.allocCtx, chromedp.WithTargetID(target.ID(id)))

	attachCtx, attachCancel := context.WithTimeout(tabCtx, d.evalTimeout)
	defer attachCancel()
	if err := chromedp.Run(attachCtx); err != nil {
		cancel()
		return NewError(CodeDriverFailure, fmt.Sprintf("attach to window %q failed", id), err)
	}
	return d.adoptTab(tabCtx, cancel)
}

// NewWindow opens a blank page target and switches to it.
func (d *Driver) NewWindow(ctx context.Context) (string, error) {
	var id target.ID
	err := d.run(ctx, 0, "open window", chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		id, err = target.CreateTarget("about:blank").Do(ctx)
		return err
	}))
	if err != nil {
		return "", err
	}
	if err := d.SwitchWindow(ctx, string(id)); err != nil {
		return "", err
	}
	return string(id), nil
}

// CloseWindow closes the active tab. The caller is expected to switch to
// another window afterwards; further operations on the closed tab fail.
func (d *Driver) CloseWindow(ctx context.Context) error {
	return d.run(ctx, 0, "close window", page.Close())
}

// SwitchFrame scopes subsequent element queries to the iframe matched by
// the locator.
func (d *Driver) SwitchFrame(ctx context.Context, loc locator.Locator) error {
	var nodes []*cdp.Node
	what := fmt.Sprintf("switch to frame %s=%s", loc.Strategy, loc.Value)
	if err := d.run(ctx, 0, what, chromedp.Nodes(loc.Sel, &nodes, loc.Opt)); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return NewError(CodeDriverFailure, what+": no matching iframe", nil)
	}
	d.mu.Lock()
	d.frame = &frameState{node: nodes[0]}
	d.mu.Unlock()
	return nil
}

// SwitchToDefault returns element queries to the top-level document.
func (d *Driver) SwitchToDefault() {
	d.mu.Lock()
	d.frame = nil
	d.mu.Unlock()
}

// AlertText reports the message of the open JavaScript dialog.
func (d *Driver) AlertText(ctx context.Context) (string, error) {
	message, _, open := d.dialog.current()
	if !open {
		return "", NewError(CodeDriverFailure, "no alert is open", nil)
	}
	return message, nil
}

// AcceptAlert answers the open dialog affirmatively, typing promptText
// first when the dialog is a prompt.
func (d *Driver) AcceptAlert(ctx context.Context, promptText string) error {
	return d.handleDialog(ctx, true, promptText)
}

// DismissAlert cancels the open dialog.
func (d *Driver) DismissAlert(ctx context.Context) error {
	return d.handleDialog(ctx, false, "")
}

func (d *Driver) handleDialog(ctx context.Context, accept bool, promptText string) error {
	_, kind, open := d.dialog.current()
	if !open {
		return NewError(CodeDriverFailure, "no alert is open", nil)
	}
	params := page.HandleJavaScriptDialog(accept)
	if accept && promptText != "" && kind == "prompt" {
		params = params.WithPromptText(promptText)
	}
	what := "dismiss alert"
	if accept {
		what = "accept alert"
	}
	if err := d.run(ctx, 0, what, params); err != nil {
		return err
	}
	d.dialog.close()
	return nil
}
