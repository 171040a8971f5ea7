// Package api exposes session lifecycle, navigation and diagnostics over
// HTTP. The MCP stdio transport stays the primary surface; this one serves
// dashboards and scripted callers on the same underlying service.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/driver"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
	"github.com/dgnsrekt/browser_agent/internal/stream"
	"github.com/dgnsrekt/browser_agent/internal/tools"
)

// Service is the typed operation surface the HTTP handlers call.
// *tools.Service is the production implementation.
type Service interface {
	StartSession(ctx context.Context, kind string, headless *bool, args []string) (tools.SessionStatus, error)
	CloseSession(ctx context.Context) (string, error)
	Status(ctx context.Context) (tools.SessionStatus, error)
	NavigateTo(ctx context.Context, url string) error
	ConsoleLogs(clear bool) ([]diagnostics.ConsoleEntry, error)
	PageErrorLog(clear bool) ([]diagnostics.PageErrorEntry, error)
	NetworkLog(clear bool) ([]diagnostics.NetworkEntry, error)
	Screenshots() ([]screenshot.Meta, error)
	ScreenshotImage(id string) ([]byte, string, error)
}

var _ Service = (*tools.Service)(nil)

// NewServer builds the HTTP handler. broker may be nil to disable the
// live diagnostics stream endpoint.
func NewServer(svc Service, broker *stream.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Browser Agent API", "1.0.0")
	api := humachi.New(router, cfg)

	registerSessionHandlers(api, svc)
	registerDiagnosticsHandlers(api, svc)
	registerScreenshotHandlers(router, api, svc)

	if broker != nil {
		router.Get("/diagnostics/stream", streamHandler(broker))
	}

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, diagnostics.ErrUnavailable) {
		return huma.Error409Conflict(err.Error())
	}
	var coded *driver.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case driver.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case driver.CodeNoActiveSession:
			return huma.Error409Conflict(coded.Message)
		case driver.CodeEvalTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case driver.CodeLaunchFailure:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
