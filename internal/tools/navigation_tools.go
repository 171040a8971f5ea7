package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/browser_agent/internal/driver"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
)

func (s *Service) navigationTools() []Definition {
	return []Definition{
		{
			Name:        "navigate",
			Description: "Navigate the current session to a URL",
			InputSchema: objSchema(map[string]any{
				"url": stringProp("Destination URL"),
			}, "url"),
			Handler: s.handleNavigate,
		},
		{
			Name:        "get_url",
			Description: "Get the current page URL",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleGetURL,
		},
		{
			Name:        "get_title",
			Description: "Get the current page title",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleGetTitle,
		},
		{
			Name:        "get_page_source",
			Description: "Get the serialized HTML of the current page",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleGetSource,
		},
		{
			Name:        "execute_script",
			Description: "Execute JavaScript in the page and return the JSON-encoded result",
			InputSchema: objSchema(map[string]any{
				"script":  stringProp("JavaScript function body; use return for a result, arguments[i] for args"),
				"args":    arrayProp("Values passed to the script as its arguments"),
				"async":   boolProp("Treat the trailing argument as a completion callback and wait for it"),
				"timeout": intProp("Script timeout in milliseconds"),
			}, "script"),
			Handler: s.handleExecuteScript,
		},
		{
			Name:        "take_screenshot",
			Description: "Capture the page as an image, optionally persisting it to the screenshot store",
			InputSchema: objSchema(map[string]any{
				"fullPage": boolProp("Capture the full scrollable page instead of the viewport"),
				"quality":  intProp("Image quality 1-100; 100 produces PNG, lower JPEG"),
				"save":     boolProp("Persist the image to the screenshot store"),
			}),
			Handler: s.handleScreenshot,
		},
	}
}

func (s *Service) handleNavigate(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		URL string `json:"url"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.URL == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "url is required", nil)
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.Navigate(ctx, params.URL); err != nil {
		return Result{}, err
	}
	return textResult("Navigated to %s", params.URL)
}

func (s *Service) handleGetURL(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	url, err := h.CurrentURL(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: url}, nil
}

func (s *Service) handleGetTitle(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	title, err := h.Title(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: title}, nil
}

func (s *Service) handleGetSource(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	html, err := h.Source(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: html}, nil
}

func (s *Service) handleExecuteScript(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Script  string `json:"script"`
		Args    []any  `json:"args"`
		Async   bool   `json:"async"`
		Timeout int    `json:"timeout"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.Script == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "script is required", nil)
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	value, err := h.ExecuteScript(ctx, params.Script, params.Args, params.Async, timeoutFromMS(params.Timeout))
	if err != nil {
		return Result{}, err
	}
	return textResult("Result: %s", value)
}

func (s *Service) handleScreenshot(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		FullPage bool `json:"fullPage"`
		Quality  int  `json:"quality"`
		Save     bool `json:"save"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	sessionID, h, err := s.ctrl.Registry().Current()
	if err != nil {
		return Result{}, err
	}
	data, mime, err := h.Screenshot(ctx, params.FullPage, params.Quality)
	if err != nil {
		return Result{}, err
	}

	text := "Screenshot captured"
	if params.Save && s.shots != nil {
		format := "png"
		if mime == "image/jpeg" {
			format = "jpg"
		}
		url, _ := h.CurrentURL(ctx)
		title, _ := h.Title(ctx)
		meta := screenshot.Meta{
			ID:        uuid.New().String(),
			SessionID: sessionID,
			Format:    format,
			SizeBytes: len(data),
			CreatedAt: time.Now().UTC(),
			URL:       url,
			Title:     title,
			FullPage:  params.FullPage,
		}
		path, err := s.shots.Save(meta, data)
		if err != nil {
			return Result{}, driver.NewError(driver.CodeDriverFailure, "persist screenshot", err)
		}
		text = "Screenshot captured and saved to " + path
	}
	return Result{Text: text, Image: data, ImageMime: mime}, nil
}
