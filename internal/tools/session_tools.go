package tools

import (
	"context"
	"encoding/json"
)

func (s *Service) sessionTools() []Definition {
	return []Definition{
		{
			Name:        "start_browser",
			Description: "Launch a browser session and make it the current session",
			InputSchema: objSchema(map[string]any{
				"browser": stringProp("Browser kind: chrome, chromium or edge"),
				"options": map[string]any{
					"type":        "object",
					"description": "Launch options",
					"properties": map[string]any{
						"headless":  boolProp("Run without a visible window"),
						"arguments": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Extra browser command-line arguments"},
					},
				},
			}),
			Handler: s.handleStartBrowser,
		},
		{
			Name:        "close_session",
			Description: "Close the current browser session",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleCloseSession,
		},
	}
}

func (s *Service) handleStartBrowser(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Browser string `json:"browser"`
		Options struct {
			Headless  *bool    `json:"headless"`
			Arguments []string `json:"arguments"`
		} `json:"options"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}

	status, err := s.StartSession(ctx, params.Browser, params.Options.Headless, params.Options.Arguments)
	if err != nil {
		return Result{}, err
	}
	if !status.Diagnostics {
		return textResult("Browser started with session_id: %s (diagnostics capture unavailable)", status.ID)
	}
	return textResult("Browser started with session_id: %s", status.ID)
}

func (s *Service) handleCloseSession(ctx context.Context, args json.RawMessage) (Result, error) {
	id, err := s.ctrl.Close(ctx)
	if err != nil {
		if id == "" {
			return Result{}, err
		}
		// A failed driver shutdown still removes the session; report both.
		return textResult("Session %s closed (driver shutdown reported: %v)", id, err)
	}
	return textResult("Session %s closed", id)
}
