package tools

import (
	"context"
	"encoding/json"

	"github.com/dgnsrekt/browser_agent/internal/driver"
)

func (s *Service) windowTools() []Definition {
	return []Definition{
		{
			Name:        "get_windows",
			Description: "List open windows and tabs in the current session",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleGetWindows,
		},
		{
			Name:        "switch_window",
			Description: "Switch the active window to the given window id",
			InputSchema: objSchema(map[string]any{
				"windowId": stringProp("Window id from get_windows"),
			}, "windowId"),
			Handler: s.handleSwitchWindow,
		},
		{
			Name:        "new_window",
			Description: "Open a new browser window and switch to it",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleNewWindow,
		},
		{
			Name:        "close_window",
			Description: "Close the active window",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleCloseWindow,
		},
		{
			Name:        "switch_frame",
			Description: "Switch element resolution into an iframe",
			InputSchema: objSchema(locatorProps(), "by", "value"),
			Handler:     s.handleSwitchFrame,
		},
		{
			Name:        "switch_to_default",
			Description: "Switch element resolution back to the top document",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleSwitchToDefault,
		},
		{
			Name:        "get_alert_text",
			Description: "Read the message of the open JavaScript dialog",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleGetAlertText,
		},
		{
			Name:        "alert_accept",
			Description: "Accept the open JavaScript dialog",
			InputSchema: objSchema(map[string]any{
				"text": stringProp("Text to submit when the dialog is a prompt"),
			}),
			Handler: s.handleAlertAccept,
		},
		{
			Name:        "alert_dismiss",
			Description: "Dismiss the open JavaScript dialog",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleAlertDismiss,
		},
	}
}

func (s *Service) handleGetWindows(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	windows, err := h.Windows(ctx)
	if err != nil {
		return Result{}, err
	}
	data, err := json.MarshalIndent(windows, "", "  ")
	if err != nil {
		return Result{}, driver.NewError(driver.CodeDriverFailure, "encode windows", err)
	}
	return Result{Text: string(data)}, nil
}

func (s *Service) handleSwitchWindow(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		WindowID string `json:"windowId"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.WindowID == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "windowId is required", nil)
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.SwitchWindow(ctx, params.WindowID); err != nil {
		return Result{}, err
	}
	return textResult("Switched to window %s", params.WindowID)
}

func (s *Service) handleNewWindow(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	id, err := h.NewWindow(ctx)
	if err != nil {
		return Result{}, err
	}
	return textResult("Opened window %s", id)
}

func (s *Service) handleCloseWindow(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.CloseWindow(ctx); err != nil {
		return Result{}, err
	}
	return textResult("Window closed")
}

func (s *Service) handleSwitchFrame(ctx context.Context, args json.RawMessage) (Result, error) {
	var params locatorArgs
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	loc, err := params.parse()
	if err != nil {
		return Result{}, err
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.SwitchFrame(ctx, loc); err != nil {
		return Result{}, err
	}
	return textResult("Switched to frame %s=%s", loc.Strategy, loc.Value)
}

func (s *Service) handleSwitchToDefault(_ context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	h.SwitchToDefault()
	return textResult("Switched to default content")
}

func (s *Service) handleGetAlertText(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	text, err := h.AlertText(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text}, nil
}

func (s *Service) handleAlertAccept(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Text string `json:"text"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.AcceptAlert(ctx, params.Text); err != nil {
		return Result{}, err
	}
	return textResult("Alert accepted")
}

func (s *Service) handleAlertDismiss(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.DismissAlert(ctx); err != nil {
		return Result{}, err
	}
	return textResult("Alert dismissed")
}
