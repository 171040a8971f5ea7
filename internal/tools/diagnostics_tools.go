package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/driver"
)

const unavailableMessage = "Diagnostics capture is not available for this session."

// diagQueryArgs is the shared parameter shape of the three capture queries.
type diagQueryArgs struct {
	Clear bool `json:"clear"`
}

func diagQuerySchema() map[string]any {
	return objSchema(map[string]any{
		"clear": boolProp("Truncate the buffer after reading it"),
	})
}

func (s *Service) diagnosticTools() []Definition {
	return []Definition{
		{
			Name:        "get_console_logs",
			Description: "Read console messages captured since attach or last clear",
			InputSchema: diagQuerySchema(),
			Handler: s.diagnosticQuery(func(h *diagnostics.Handle, clear bool) (string, int, error) {
				entries, err := h.Console(clear)
				return diagnostics.RenderConsole(entries), len(entries), err
			}, "console log"),
		},
		{
			Name:        "get_page_errors",
			Description: "Read uncaught page errors captured since attach or last clear",
			InputSchema: diagQuerySchema(),
			Handler: s.diagnosticQuery(func(h *diagnostics.Handle, clear bool) (string, int, error) {
				entries, err := h.PageErrors(clear)
				return diagnostics.RenderPageErrors(entries), len(entries), err
			}, "page error"),
		},
		{
			Name:        "get_network_events",
			Description: "Read network responses and failures captured since attach or last clear",
			InputSchema: diagQuerySchema(),
			Handler: s.diagnosticQuery(func(h *diagnostics.Handle, clear bool) (string, int, error) {
				entries, err := h.Network(clear)
				return diagnostics.RenderNetwork(entries), len(entries), err
			}, "network"),
		},
		{
			Name:        "get_error_stacktrace",
			Description: "Render one captured page error with its stack trace, selected by timestamp",
			InputSchema: objSchema(map[string]any{
				"timestamp":     stringProp("Timestamp of the entry as printed by get_page_errors"),
				"maxStackLines": intProp("Maximum stack frame lines to include; 0 for all"),
			}, "timestamp"),
			Handler: s.handleErrorStacktrace,
		},
	}
}

// diagnosticQuery builds one capture query handler. All three classes share
// the same shape: resolve the current session's buffer, drain it, render.
func (s *Service) diagnosticQuery(query func(h *diagnostics.Handle, clear bool) (string, int, error), noun string) Handler {
	return func(_ context.Context, args json.RawMessage) (Result, error) {
		var params diagQueryArgs
		if err := decode(args, &params); err != nil {
			return Result{}, err
		}
		_, dh, err := s.ctrl.CurrentDiagnostics()
		if err != nil {
			return Result{}, err
		}
		rendered, n, err := query(dh, params.Clear)
		if errors.Is(err, diagnostics.ErrUnavailable) {
			return Result{Text: unavailableMessage}, nil
		}
		if err != nil {
			return Result{}, err
		}
		if n == 0 {
			return textResult("No %s entries.", noun)
		}
		return Result{Text: rendered}, nil
	}
}

func (s *Service) handleErrorStacktrace(_ context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Timestamp     string `json:"timestamp"`
		MaxStackLines int    `json:"maxStackLines"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.Timestamp == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "timestamp is required", nil)
	}
	_, dh, err := s.ctrl.CurrentDiagnostics()
	if err != nil {
		return Result{}, err
	}
	entries, err := dh.PageErrors(false)
	if errors.Is(err, diagnostics.ErrUnavailable) {
		return Result{Text: unavailableMessage}, nil
	}
	if err != nil {
		return Result{}, err
	}
	entry, ok := diagnostics.FindErrorByTimestamp(entries, params.Timestamp)
	if !ok {
		return Result{}, driver.NewError(driver.CodeValidation,
			"no page error recorded at "+params.Timestamp, nil)
	}
	return Result{Text: diagnostics.RenderStackTrace(entry, params.MaxStackLines)}, nil
}
