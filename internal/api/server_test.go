package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/driver"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
	"github.com/dgnsrekt/browser_agent/internal/tools"
)

type fakeService struct {
	status      tools.SessionStatus
	statusErr   error
	console     []diagnostics.ConsoleEntry
	consoleErr  error
	navigated   []string
	image       []byte
	imageMime   string
	imageErr    error
	closedID    string
	startedKind string
}

func (f *fakeService) StartSession(ctx context.Context, kind string, headless *bool, args []string) (tools.SessionStatus, error) {
	f.startedKind = kind
	return f.status, f.statusErr
}

func (f *fakeService) CloseSession(ctx context.Context) (string, error) {
	return f.closedID, f.statusErr
}

func (f *fakeService) Status(ctx context.Context) (tools.SessionStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeService) NavigateTo(ctx context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.statusErr
}

func (f *fakeService) ConsoleLogs(clear bool) ([]diagnostics.ConsoleEntry, error) {
	return f.console, f.consoleErr
}

func (f *fakeService) PageErrorLog(clear bool) ([]diagnostics.PageErrorEntry, error) {
	return nil, f.consoleErr
}

func (f *fakeService) NetworkLog(clear bool) ([]diagnostics.NetworkEntry, error) {
	return nil, f.consoleErr
}

func (f *fakeService) Screenshots() ([]screenshot.Meta, error) { return nil, nil }

func (f *fakeService) ScreenshotImage(id string) ([]byte, string, error) {
	return f.image, f.imageMime, f.imageErr
}

func do(t *testing.T, svc Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewServer(svc, nil)
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, &fakeService{}, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestStartSessionEndpoint(t *testing.T) {
	svc := &fakeService{status: tools.SessionStatus{ID: "chrome_1", Kind: "chrome", Diagnostics: true}}
	rec := do(t, svc, http.MethodPost, "/session", `{"browser":"chrome","headless":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got tools.SessionStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "chrome_1" || !got.Diagnostics {
		t.Fatalf("body = %+v", got)
	}
	if svc.startedKind != "chrome" {
		t.Fatalf("startedKind = %q", svc.startedKind)
	}
}

func TestNoActiveSessionMapsTo409(t *testing.T) {
	svc := &fakeService{statusErr: driver.NewError(driver.CodeNoActiveSession, "no active browser session; start a browser first", nil)}
	rec := do(t, svc, http.MethodGet, "/session", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLaunchFailureMapsTo502(t *testing.T) {
	svc := &fakeService{statusErr: driver.NewError(driver.CodeLaunchFailure, "no browser binary found", nil)}
	rec := do(t, svc, http.MethodPost, "/session", `{}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	svc := &fakeService{console: []diagnostics.ConsoleEntry{
		{Level: diagnostics.LevelError, Text: "boom", Timestamp: time.Now().UTC()},
	}}
	rec := do(t, svc, http.MethodGet, "/diagnostics/console", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Class   string                     `json:"class"`
		Count   int                        `json:"count"`
		Entries []diagnostics.ConsoleEntry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Class != "console" || body.Count != 1 || body.Entries[0].Text != "boom" {
		t.Fatalf("body = %+v", body)
	}
}

func TestDiagnosticsUnavailableMapsTo409(t *testing.T) {
	svc := &fakeService{consoleErr: diagnostics.ErrUnavailable}
	rec := do(t, svc, http.MethodGet, "/diagnostics/console", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestScreenshotImageRoute(t *testing.T) {
	svc := &fakeService{image: []byte{0x89, 0x50}, imageMime: "image/png"}
	rec := do(t, svc, http.MethodGet, "/screenshots/0e6a1a1e-1111-2222-3333-444455556666/image", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("Content-Type = %q", got)
	}
	if rec.Body.Len() != 2 {
		t.Fatalf("body len = %d, want 2", rec.Body.Len())
	}
}
