package tools

import (
	"context"
	"encoding/json"

	"github.com/dgnsrekt/browser_agent/internal/driver"
)

func (s *Service) cookieTools() []Definition {
	return []Definition{
		{
			Name:        "get_cookies",
			Description: "List all cookies visible to the current session",
			InputSchema: objSchema(map[string]any{}),
			Handler:     s.handleGetCookies,
		},
		{
			Name:        "add_cookie",
			Description: "Set a cookie in the current session",
			InputSchema: objSchema(map[string]any{
				"name":     stringProp("Cookie name"),
				"value":    stringProp("Cookie value"),
				"domain":   stringProp("Cookie domain; defaults to the current document"),
				"path":     stringProp("Cookie path"),
				"expires":  map[string]any{"type": "number", "description": "Expiry in seconds since epoch"},
				"secure":   boolProp("Secure flag"),
				"httpOnly": boolProp("HttpOnly flag"),
			}, "name", "value"),
			Handler: s.handleAddCookie,
		},
		{
			Name:        "delete_cookie",
			Description: "Delete cookies by name, scoped to the current document",
			InputSchema: objSchema(map[string]any{
				"name": stringProp("Cookie name"),
			}, "name"),
			Handler: s.handleDeleteCookie,
		},
	}
}

func (s *Service) handleGetCookies(ctx context.Context, _ json.RawMessage) (Result, error) {
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	cookies, err := h.Cookies(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(cookies) == 0 {
		return Result{Text: "No cookies."}, nil
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return Result{}, driver.NewError(driver.CodeDriverFailure, "encode cookies", err)
	}
	return Result{Text: string(data)}, nil
}

func (s *Service) handleAddCookie(ctx context.Context, args json.RawMessage) (Result, error) {
	var cookie driver.Cookie
	if err := decode(args, &cookie); err != nil {
		return Result{}, err
	}
	if cookie.Name == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "cookie name is required", nil)
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.AddCookie(ctx, cookie); err != nil {
		return Result{}, err
	}
	return textResult("Cookie %q set", cookie.Name)
}

func (s *Service) handleDeleteCookie(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Name string `json:"name"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.Name == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "cookie name is required", nil)
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.DeleteCookie(ctx, params.Name); err != nil {
		return Result{}, err
	}
	return textResult("Cookie %q deleted", params.Name)
}
