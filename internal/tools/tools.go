// Package tools defines the browser-automation tool surface shared by the
// MCP stdio server and the HTTP API: one named, schema-described handler
// per operation, all resolving "the current session" through the registry.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgnsrekt/browser_agent/internal/config"
	"github.com/dgnsrekt/browser_agent/internal/driver"
	"github.com/dgnsrekt/browser_agent/internal/locator"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
	"github.com/dgnsrekt/browser_agent/internal/session"
)

// Result is one tool call outcome. Text is always set; Image carries an
// optional binary block (screenshots).
type Result struct {
	Text      string
	Image     []byte
	ImageMime string
}

// Handler executes one tool call. A returned error becomes a failure
// payload; its message carries the taxonomy code prefix.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Definition describes one tool for tools/list plus its handler.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// Service holds the dependencies shared by every tool handler.
type Service struct {
	cfg   *config.Config
	ctrl  *session.Controller
	shots *screenshot.Store
}

// NewService wires the tool surface. shots may be nil when screenshot
// persistence is disabled.
func NewService(cfg *config.Config, ctrl *session.Controller, shots *screenshot.Store) *Service {
	return &Service{cfg: cfg, ctrl: ctrl, shots: shots}
}

// Definitions returns the full tool registry in a stable order.
func (s *Service) Definitions() []Definition {
	var defs []Definition
	defs = append(defs, s.sessionTools()...)
	defs = append(defs, s.navigationTools()...)
	defs = append(defs, s.elementTools()...)
	defs = append(defs, s.cookieTools()...)
	defs = append(defs, s.windowTools()...)
	defs = append(defs, s.diagnosticTools()...)
	return defs
}

// current resolves the active session's driver handle.
func (s *Service) current() (driver.Handle, error) {
	_, h, err := s.ctrl.Registry().Current()
	return h, err
}

// decode unmarshals tool arguments, mapping JSON errors to VALIDATION.
func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return driver.NewError(driver.CodeValidation, "invalid tool arguments", err)
	}
	return nil
}

// locatorArgs is the shared by/value parameter pair.
type locatorArgs struct {
	By    string `json:"by"`
	Value string `json:"value"`
}

func (a locatorArgs) parse() (locator.Locator, error) {
	loc, err := locator.Parse(a.By, a.Value)
	if err != nil {
		return locator.Locator{}, driver.NewError(driver.CodeValidation, err.Error(), nil)
	}
	return loc, nil
}

// timeoutFromMS converts a tool-supplied timeout to a duration, zero
// meaning "use the driver default".
func timeoutFromMS(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func textResult(format string, a ...any) (Result, error) {
	return Result{Text: fmt.Sprintf(format, a...)}, nil
}

// Common schema fragments.

func objSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func locatorProps() map[string]any {
	return map[string]any{
		"by": map[string]any{
			"type":        "string",
			"description": "Locator strategy: css, xpath, id, name, tag, class or text",
		},
		"value": map[string]any{
			"type":        "string",
			"description": "Locator value for the chosen strategy",
		},
	}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func boolProp(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func arrayProp(desc string) map[string]any {
	return map[string]any{"type": "array", "description": desc}
}
