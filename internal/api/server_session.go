package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/browser_agent/internal/tools"
)

func registerSessionHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/healthz", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type startSessionInput struct {
		Body struct {
			Browser   string   `json:"browser,omitempty" doc:"Browser kind: chrome, chromium or edge. Defaults from config."`
			Headless  *bool    `json:"headless,omitempty" doc:"Run without a visible window. Defaults from config."`
			Arguments []string `json:"arguments,omitempty" doc:"Extra browser command-line arguments"`
		}
	}
	type sessionOutput struct {
		Body tools.SessionStatus
	}
	huma.Register(api, huma.Operation{OperationID: "start-session", Method: http.MethodPost, Path: "/session", Summary: "Launch a browser session", Tags: []string{"Session"}},
		func(ctx context.Context, input *startSessionInput) (*sessionOutput, error) {
			status, err := svc.StartSession(ctx, input.Body.Browser, input.Body.Headless, input.Body.Arguments)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body = status
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/session", Summary: "Describe the current session", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*sessionOutput, error) {
			status, err := svc.Status(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body = status
			return out, nil
		})

	type closeSessionOutput struct {
		Body struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "close-session", Method: http.MethodDelete, Path: "/session", Summary: "Close the current session", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*closeSessionOutput, error) {
			id, err := svc.CloseSession(ctx)
			if err != nil && id == "" {
				return nil, mapErr(err)
			}
			out := &closeSessionOutput{}
			out.Body.ID = id
			out.Body.Status = "closed"
			if err != nil {
				// The session is gone even when the driver's shutdown failed.
				out.Body.Status = "closed with driver error: " + err.Error()
			}
			return out, nil
		})

	type navigateInput struct {
		Body struct {
			URL string `json:"url" doc:"Destination URL"`
		}
	}
	type navigateOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "navigate", Method: http.MethodPost, Path: "/navigate", Summary: "Navigate the current session", Tags: []string{"Session"}},
		func(ctx context.Context, input *navigateInput) (*navigateOutput, error) {
			if err := svc.NavigateTo(ctx, input.Body.URL); err != nil {
				return nil, mapErr(err)
			}
			out := &navigateOutput{}
			out.Body.Status = "navigated"
			return out, nil
		})
}
