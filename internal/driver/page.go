package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

func enableCaptureDomains() chromedp.Action {
	return chromedp.Tasks{
		runtime.Enable(),
		network.Enable(),
		page.Enable(),
	}
}

// Navigate loads the given URL in the active tab and waits for the load
// event.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, 0, "navigate", chromedp.Navigate(url))
}

// CurrentURL reports the active tab's location.
func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := d.run(ctx, 0, "read location", chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Title reports the active tab's document title.
func (d *Driver) Title(ctx context.Context) (string, error) {
	var title string
	if err := d.run(ctx, 0, "read title", chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

// Source returns the serialized HTML of the active document.
func (d *Driver) Source(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, 0, "read page source", chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Screenshot captures the viewport, or the full scrollable page when
// fullPage is set. Quality 100 produces PNG, lower values JPEG.
func (d *Driver) Screenshot(ctx context.Context, fullPage bool, quality int) ([]byte, string, error) {
	if quality <= 0 || quality > 100 {
		quality = 100
	}
	var buf []byte
	var action chromedp.Action
	if fullPage {
		action = chromedp.FullScreenshot(&buf, quality)
	} else {
		action = chromedp.CaptureScreenshot(&buf)
		quality = 100
	}
	if err := d.run(ctx, 0, "screenshot", action); err != nil {
		return nil, "", err
	}
	mime := "image/png"
	if quality < 100 {
		mime = "image/jpeg"
	}
	return buf, mime, nil
}

// ExecuteScript evaluates the script as a function body with WebDriver
// semantics: `return` produces the result and args arrive through the
// function's arguments object. Async scripts receive a completion
// callback as the trailing argument and the result is whatever value the
// callback is invoked with. Undefined results come back as "null".
func (d *Driver) ExecuteScript(ctx context.Context, script string, args []any, async bool, timeout time.Duration) (string, error) {
	wrapped, err := scriptExpression(script, args, async)
	if err != nil {
		return "", err
	}

	var result string
	err = d.run(ctx, timeout, "execute script", chromedp.ActionFunc(func(ctx context.Context) error {
		obj, exp, err := runtime.Evaluate(wrapped).
			WithReturnByValue(true).
			WithAwaitPromise(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		if obj == nil || len(obj.Value) == 0 {
			result = "null"
			return nil
		}
		result = string(obj.Value)
		return nil
	}))
	if err != nil {
		return "", err
	}
	return result, nil
}

// scriptExpression wraps a WebDriver-style script body into an evaluable
// expression. Sync scripts are applied with args as the arguments object;
// async scripts run inside a Promise whose resolver is appended as the
// trailing callback argument, so WithAwaitPromise waits for the callback.
func scriptExpression(script string, args []any, async bool) (string, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", NewError(CodeValidation, "script args must be JSON-encodable", err)
	}
	if string(argsJSON) == "null" {
		argsJSON = []byte("[]")
	}
	if async {
		return fmt.Sprintf(`new Promise(function(resolve, reject) {
	var callArgs = %s;
	callArgs.push(resolve);
	try { (function() { %s }).apply(null, callArgs); } catch (e) { reject(e); }
})`, argsJSON, script), nil
	}
	return fmt.Sprintf("(function() { %s }).apply(null, %s)", script, argsJSON), nil
}
