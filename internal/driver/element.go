package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/dgnsrekt/browser_agent/internal/locator"
)

// queryOpts expands a locator into chromedp query options, scoped to the
// current frame when one is selected.
func (d *Driver) queryOpts(loc locator.Locator) []chromedp.QueryOption {
	opts := []chromedp.QueryOption{loc.Opt}
	d.mu.Lock()
	frame := d.frame
	d.mu.Unlock()
	if frame != nil && frame.node != nil {
		opts = append(opts, chromedp.FromNode(frame.node))
	}
	return opts
}

// Find waits until at least one element matches the locator.
func (d *Driver) Find(ctx context.Context, loc locator.Locator, timeout time.Duration) error {
	var nodes []*cdp.Node
	what := fmt.Sprintf("find element %s=%s", loc.Strategy, loc.Value)
	return d.run(ctx, timeout, what, chromedp.Nodes(loc.Sel, &nodes, d.queryOpts(loc)...))
}

// WaitFor blocks until the element reaches the requested condition
// ("present" or "visible") or the timeout expires.
func (d *Driver) WaitFor(ctx context.Context, loc locator.Locator, condition string, timeout time.Duration) error {
	what := fmt.Sprintf("wait for element %s=%s (%s)", loc.Strategy, loc.Value, condition)
	switch condition {
	case "visible":
		return d.run(ctx, timeout, what, chromedp.WaitVisible(loc.Sel, d.queryOpts(loc)...))
	case "present", "":
		return d.run(ctx, timeout, what, chromedp.WaitReady(loc.Sel, d.queryOpts(loc)...))
	default:
		return NewError(CodeValidation, fmt.Sprintf("unknown wait condition %q (want present or visible)", condition), nil)
	}
}

// Click clicks the first element matching the locator.
func (d *Driver) Click(ctx context.Context, loc locator.Locator) error {
	what := fmt.Sprintf("click %s=%s", loc.Strategy, loc.Value)
	return d.run(ctx, 0, what, chromedp.Click(loc.Sel, d.queryOpts(loc)...))
}

// DoubleClick double-clicks the first element matching the locator.
func (d *Driver) DoubleClick(ctx context.Context, loc locator.Locator) error {
	what := fmt.Sprintf("double-click %s=%s", loc.Strategy, loc.Value)
	return d.run(ctx, 0, what, chromedp.DoubleClick(loc.Sel, d.queryOpts(loc)...))
}

// RightClick dispatches a contextmenu event on the element. Done in-page:
// CDP has no one-shot right-click primitive.
func (d *Driver) RightClick(ctx context.Context, loc locator.Locator) error {
	return d.jsElementAction(ctx, loc, "right-click",
		`function() { this.dispatchEvent(new MouseEvent("contextmenu", {bubbles: true, cancelable: true, view: window})); }`)
}

// Hover scrolls the element into view and dispatches mouseover/mouseenter.
func (d *Driver) Hover(ctx context.Context, loc locator.Locator) error {
	return d.jsElementAction(ctx, loc, "hover",
		`function() {
			this.scrollIntoView({block: "center"});
			this.dispatchEvent(new MouseEvent("mouseover", {bubbles: true, view: window}));
			this.dispatchEvent(new MouseEvent("mouseenter", {bubbles: false, view: window}));
		}`)
}

// SendKeys types text into the element.
func (d *Driver) SendKeys(ctx context.Context, loc locator.Locator, text string) error {
	what := fmt.Sprintf("send keys to %s=%s", loc.Strategy, loc.Value)
	return d.run(ctx, 0, what, chromedp.SendKeys(loc.Sel, text, d.queryOpts(loc)...))
}

// ClearElement empties an input or textarea.
func (d *Driver) ClearElement(ctx context.Context, loc locator.Locator) error {
	what := fmt.Sprintf("clear %s=%s", loc.Strategy, loc.Value)
	return d.run(ctx, 0, what, chromedp.Clear(loc.Sel, d.queryOpts(loc)...))
}

// Text returns the visible text of the element.
func (d *Driver) Text(ctx context.Context, loc locator.Locator) (string, error) {
	var text string
	what := fmt.Sprintf("read text of %s=%s", loc.Strategy, loc.Value)
	if err := d.run(ctx, 0, what, chromedp.Text(loc.Sel, &text, d.queryOpts(loc)...)); err != nil {
		return "", err
	}
	return text, nil
}

// Attribute returns the named attribute of the element. The second return
// reports whether the attribute exists.
func (d *Driver) Attribute(ctx context.Context, loc locator.Locator, name string) (string, bool, error) {
	var value string
	var ok bool
	what := fmt.Sprintf("read attribute %q of %s=%s", name, loc.Strategy, loc.Value)
	if err := d.run(ctx, 0, what, chromedp.AttributeValue(loc.Sel, name, &value, &ok, d.queryOpts(loc)...)); err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// UploadFile sets the files of a file input element.
func (d *Driver) UploadFile(ctx context.Context, loc locator.Locator, paths []string) error {
	what := fmt.Sprintf("upload file to %s=%s", loc.Strategy, loc.Value)
	return d.run(ctx, 0, what, chromedp.SetUploadFiles(loc.Sel, paths, d.queryOpts(loc)...))
}

// DragAndDrop dispatches the HTML5 drag event sequence from source to
// target in-page. Both locators resolve within the selected frame.
func (d *Driver) DragAndDrop(ctx context.Context, source, dest locator.Locator) error {
	const fn = `function(dst) {
		const dt = new DataTransfer();
		this.dispatchEvent(new DragEvent("dragstart", {bubbles: true, dataTransfer: dt}));
		dst.dispatchEvent(new DragEvent("dragover", {bubbles: true, cancelable: true, dataTransfer: dt}));
		dst.dispatchEvent(new DragEvent("drop", {bubbles: true, dataTransfer: dt}));
		this.dispatchEvent(new DragEvent("dragend", {bubbles: true, dataTransfer: dt}));
	}`
	what := fmt.Sprintf("drag %s=%s onto %s=%s", source.Strategy, source.Value, dest.Strategy, dest.Value)
	return d.run(ctx, 0, what, chromedp.ActionFunc(func(ctx context.Context) error {
		src, err := d.resolveElement(ctx, source)
		if err != nil {
			return err
		}
		dst, err := d.resolveElement(ctx, dest)
		if err != nil {
			return err
		}
		_, exp, err := runtime.CallFunctionOn(fn).
			WithObjectID(src.ObjectID).
			WithArguments([]*runtime.CallArgument{{ObjectID: dst.ObjectID}}).
			Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		return nil
	}))
}

// namedKeys maps WebDriver-style key names to chromedp key runes.
var namedKeys = map[string]string{
	"ENTER":       kb.Enter,
	"RETURN":      kb.Enter,
	"TAB":         kb.Tab,
	"ESCAPE":      kb.Escape,
	"BACKSPACE":   kb.Backspace,
	"DELETE":      kb.Delete,
	"ARROW_UP":    kb.ArrowUp,
	"ARROW_DOWN":  kb.ArrowDown,
	"ARROW_LEFT":  kb.ArrowLeft,
	"ARROW_RIGHT": kb.ArrowRight,
	"HOME":        kb.Home,
	"END":         kb.End,
	"PAGE_UP":     kb.PageUp,
	"PAGE_DOWN":   kb.PageDown,
	"SPACE":       " ",
}

// PressKey sends a key event to the focused element. Accepts either a
// literal character or a WebDriver-style key name like ENTER.
func (d *Driver) PressKey(ctx context.Context, key string) error {
	keys := key
	if mapped, ok := namedKeys[strings.ToUpper(key)]; ok {
		keys = mapped
	}
	return d.run(ctx, 0, fmt.Sprintf("press key %q", key), chromedp.KeyEvent(keys))
}

// jsElementAction resolves the locator within the selected frame and
// invokes fn with `this` bound to the matched element.
func (d *Driver) jsElementAction(ctx context.Context, loc locator.Locator, what, fn string) error {
	what = fmt.Sprintf("%s %s=%s", what, loc.Strategy, loc.Value)
	return d.run(ctx, 0, what, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := d.resolveElement(ctx, loc)
		if err != nil {
			return err
		}
		_, exp, err := runtime.CallFunctionOn(fn).WithObjectID(obj.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		return nil
	}))
}

// resolveElement finds the first node matching the locator, honoring the
// selected frame, and resolves it to a runtime object for CallFunctionOn.
func (d *Driver) resolveElement(ctx context.Context, loc locator.Locator) (*runtime.RemoteObject, error) {
	var nodes []*cdp.Node
	if err := chromedp.Nodes(loc.Sel, &nodes, d.queryOpts(loc)...).Do(ctx); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %s=%s", loc.Strategy, loc.Value)
	}
	return dom.ResolveNode().WithNodeID(nodes[0].NodeID).Do(ctx)
}
