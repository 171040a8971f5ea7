package driver

import (
	"context"
	"time"

	"github.com/dgnsrekt/browser_agent/internal/locator"
)

// Handle is the automation capability consumed by the session and tool
// layers. *Driver is the production implementation; tests substitute
// fakes.
type Handle interface {
	Kind() string
	Quit(ctx context.Context) error
	Subscribe(fn func(ev any)) error
	SetEvalTimeout(timeout time.Duration)

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	Source(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, fullPage bool, quality int) ([]byte, string, error)
	ExecuteScript(ctx context.Context, script string, args []any, async bool, timeout time.Duration) (string, error)

	Find(ctx context.Context, loc locator.Locator, timeout time.Duration) error
	WaitFor(ctx context.Context, loc locator.Locator, condition string, timeout time.Duration) error
	Click(ctx context.Context, loc locator.Locator) error
	DoubleClick(ctx context.Context, loc locator.Locator) error
	RightClick(ctx context.Context, loc locator.Locator) error
	Hover(ctx context.Context, loc locator.Locator) error
	SendKeys(ctx context.Context, loc locator.Locator, text string) error
	ClearElement(ctx context.Context, loc locator.Locator) error
	Text(ctx context.Context, loc locator.Locator) (string, error)
	Attribute(ctx context.Context, loc locator.Locator, name string) (string, bool, error)
	UploadFile(ctx context.Context, loc locator.Locator, paths []string) error
	DragAndDrop(ctx context.Context, source, dest locator.Locator) error
	PressKey(ctx context.Context, key string) error

	Cookies(ctx context.Context) ([]Cookie, error)
	AddCookie(ctx context.Context, c Cookie) error
	DeleteCookie(ctx context.Context, name string) error

	Windows(ctx context.Context) ([]WindowInfo, error)
	SwitchWindow(ctx context.Context, id string) error
	NewWindow(ctx context.Context) (string, error)
	CloseWindow(ctx context.Context) error
	SwitchFrame(ctx context.Context, loc locator.Locator) error
	SwitchToDefault()

	AlertText(ctx context.Context) (string, error)
	AcceptAlert(ctx context.Context, promptText string) error
	DismissAlert(ctx context.Context) error
}

var _ Handle = (*Driver)(nil)
