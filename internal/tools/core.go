package tools

import (
	"context"
	"strings"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/driver"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
)

// SessionStatus is the typed session view served by the HTTP surface.
type SessionStatus struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Diagnostics bool   `json:"diagnostics"`
}

// StartSession launches a browser session. Empty kind and nil headless
// fall back to configured defaults.
func (s *Service) StartSession(ctx context.Context, kind string, headless *bool, args []string) (SessionStatus, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = s.cfg.DefaultBrowser
	}
	hl := s.cfg.Headless
	if headless != nil {
		hl = *headless
	}
	opts := driver.Options{
		Headless:   hl,
		Arguments:  args,
		WindowSize: s.cfg.WindowSize,
	}
	id, diagAvailable, err := s.ctrl.Start(ctx, kind, opts)
	if err != nil {
		return SessionStatus{}, err
	}
	return SessionStatus{ID: id, Kind: kind, Diagnostics: diagAvailable}, nil
}

// CloseSession tears down the current session and returns its id.
func (s *Service) CloseSession(ctx context.Context) (string, error) {
	return s.ctrl.Close(ctx)
}

// Status describes the current session, including its live URL and title.
func (s *Service) Status(ctx context.Context) (SessionStatus, error) {
	id, h, err := s.ctrl.Registry().Current()
	if err != nil {
		return SessionStatus{}, err
	}
	url, err := h.CurrentURL(ctx)
	if err != nil {
		return SessionStatus{}, err
	}
	title, err := h.Title(ctx)
	if err != nil {
		return SessionStatus{}, err
	}
	_, dh, err := s.ctrl.CurrentDiagnostics()
	if err != nil {
		return SessionStatus{}, err
	}
	return SessionStatus{ID: id, Kind: h.Kind(), URL: url, Title: title, Diagnostics: dh.Available()}, nil
}

// NavigateTo drives the current session to url.
func (s *Service) NavigateTo(ctx context.Context, url string) error {
	h, err := s.current()
	if err != nil {
		return err
	}
	return h.Navigate(ctx, url)
}

// ConsoleLogs drains the current session's console buffer.
func (s *Service) ConsoleLogs(clear bool) ([]diagnostics.ConsoleEntry, error) {
	_, dh, err := s.ctrl.CurrentDiagnostics()
	if err != nil {
		return nil, err
	}
	return dh.Console(clear)
}

// PageErrorLog drains the current session's page-error buffer.
func (s *Service) PageErrorLog(clear bool) ([]diagnostics.PageErrorEntry, error) {
	_, dh, err := s.ctrl.CurrentDiagnostics()
	if err != nil {
		return nil, err
	}
	return dh.PageErrors(clear)
}

// NetworkLog drains the current session's network buffer.
func (s *Service) NetworkLog(clear bool) ([]diagnostics.NetworkEntry, error) {
	_, dh, err := s.ctrl.CurrentDiagnostics()
	if err != nil {
		return nil, err
	}
	return dh.Network(clear)
}

// Screenshots lists persisted screenshot metadata, newest first.
func (s *Service) Screenshots() ([]screenshot.Meta, error) {
	if s.shots == nil {
		return nil, driver.NewError(driver.CodeValidation, "screenshot persistence is disabled", nil)
	}
	return s.shots.List()
}

// ScreenshotImage reads one persisted screenshot's bytes and mime type.
func (s *Service) ScreenshotImage(id string) ([]byte, string, error) {
	if s.shots == nil {
		return nil, "", driver.NewError(driver.CodeValidation, "screenshot persistence is disabled", nil)
	}
	return s.shots.Image(id)
}
