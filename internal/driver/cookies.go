package driver

import (
	"context"
	"math"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// epochTime converts WebDriver-style seconds-since-epoch to time.Time.
func epochTime(sec float64) time.Time {
	return time.Unix(int64(sec), int64((sec-math.Floor(sec))*1e9))
}

// Cookies returns all cookies visible to the browser.
func (d *Driver) Cookies(ctx context.Context) ([]Cookie, error) {
	var out []Cookie
	err := d.run(ctx, 0, "read cookies", chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		out = make([]Cookie, 0, len(cookies))
		for _, c := range cookies {
			out = append(out, Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddCookie sets a cookie. Domain and path default to the current
// document when empty.
func (d *Driver) AddCookie(ctx context.Context, c Cookie) error {
	return d.run(ctx, 0, "add cookie", chromedp.ActionFunc(func(ctx context.Context) error {
		params := network.SetCookie(c.Name, c.Value).
			WithSecure(c.Secure).
			WithHTTPOnly(c.HTTPOnly)
		if c.Domain != "" {
			params = params.WithDomain(c.Domain)
		}
		if c.Path != "" {
			params = params.WithPath(c.Path)
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(epochTime(c.Expires))
			params = params.WithExpires(&expires)
		}
		if c.Domain == "" {
			url, err := currentLocation(ctx)
			if err != nil {
				return err
			}
			params = params.WithURL(url)
		}
		return params.Do(ctx)
	}))
}

// DeleteCookie removes cookies with the given name, scoped to the current
// document URL.
func (d *Driver) DeleteCookie(ctx context.Context, name string) error {
	return d.run(ctx, 0, "delete cookie", chromedp.ActionFunc(func(ctx context.Context) error {
		url, err := currentLocation(ctx)
		if err != nil {
			return err
		}
		return network.DeleteCookies(name).WithURL(url).Do(ctx)
	}))
}

func currentLocation(ctx context.Context) (string, error) {
	var url string
	if err := chromedp.Location(&url).Do(ctx); err != nil {
		return "", err
	}
	return url, nil
}
