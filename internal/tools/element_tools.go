package tools

import (
	"context"
	"encoding/json"

	"github.com/dgnsrekt/browser_agent/internal/driver"
	"github.com/dgnsrekt/browser_agent/internal/locator"
)

// elementAction runs one locator-addressed driver operation; most element
// tools reduce to this shape.
type elementAction func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error)

// elementTool builds a tool that takes by/value and delegates to act.
func (s *Service) elementTool(name, description string, extraProps map[string]any, required []string, act elementAction) Definition {
	props := locatorProps()
	for k, v := range extraProps {
		props[k] = v
	}
	required = append([]string{"by", "value"}, required...)
	return Definition{
		Name:        name,
		Description: description,
		InputSchema: objSchema(props, required...),
		Handler: func(ctx context.Context, args json.RawMessage) (Result, error) {
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
			text, err := act(ctx, h, loc)
			if err != nil {
				return Result{}, err
			}
			return Result{Text: text}, nil
		},
	}
}

func (s *Service) elementTools() []Definition {
	defs := []Definition{
		s.elementTool("click_element", "Click an element", nil, nil,
			func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error) {
				return "Element clicked", h.Click(ctx, loc)
			}),
		s.elementTool("double_click", "Double-click an element", nil, nil,
			func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error) {
				return "Element double-clicked", h.DoubleClick(ctx, loc)
			}),
		s.elementTool("right_click", "Right-click (context-click) an element", nil, nil,
			func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error) {
				return "Element right-clicked", h.RightClick(ctx, loc)
			}),
		s.elementTool("hover", "Move the pointer over an element", nil, nil,
			func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error) {
				return "Hovering over element", h.Hover(ctx, loc)
			}),
		s.elementTool("clear_element", "Clear an input or textarea", nil, nil,
			func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error) {
				return "Element cleared", h.ClearElement(ctx, loc)
			}),
		s.elementTool("get_element_text", "Get the visible text of an element", nil, nil,
			func(ctx context.Context, h driver.Handle, loc locator.Locator) (string, error) {
				return h.Text(ctx, loc)
			}),
	}

	defs = append(defs,
		Definition{
			Name:        "find_element",
			Description: "Wait until an element matching the locator exists",
			InputSchema: objSchema(mergeProps(locatorProps(), map[string]any{
				"timeout": intProp("Wait timeout in milliseconds"),
			}), "by", "value"),
			Handler: s.handleFindElement,
		},
		Definition{
			Name:        "wait_for_element",
			Description: "Wait until an element is present or visible",
			InputSchema: objSchema(mergeProps(locatorProps(), map[string]any{
				"condition": stringProp("Condition to wait for: present or visible"),
				"timeout":   intProp("Wait timeout in milliseconds"),
			}), "by", "value"),
			Handler: s.handleWaitForElement,
		},
		Definition{
			Name:        "send_keys",
			Description: "Type text into an element",
			InputSchema: objSchema(mergeProps(locatorProps(), map[string]any{
				"text": stringProp("Text to type"),
			}), "by", "value", "text"),
			Handler: s.handleSendKeys,
		},
		Definition{
			Name:        "get_element_attribute",
			Description: "Read an attribute of an element",
			InputSchema: objSchema(mergeProps(locatorProps(), map[string]any{
				"attribute": stringProp("Attribute name"),
			}), "by", "value", "attribute"),
			Handler: s.handleGetAttribute,
		},
		Definition{
			Name:        "upload_file",
			Description: "Set the files of a file input element",
			InputSchema: objSchema(mergeProps(locatorProps(), map[string]any{
				"filePath": stringProp("Absolute path of the file to upload"),
			}), "by", "value", "filePath"),
			Handler: s.handleUploadFile,
		},
		Definition{
			Name:        "drag_and_drop",
			Description: "Drag one element onto another",
			InputSchema: objSchema(map[string]any{
				"by":          stringProp("Source locator strategy"),
				"value":       stringProp("Source locator value"),
				"targetBy":    stringProp("Target locator strategy"),
				"targetValue": stringProp("Target locator value"),
			}, "by", "value", "targetBy", "targetValue"),
			Handler: s.handleDragAndDrop,
		},
		Definition{
			Name:        "press_key",
			Description: "Send a key event to the focused element (e.g. ENTER, TAB, or a character)",
			InputSchema: objSchema(map[string]any{
				"key": stringProp("Key name or literal character"),
			}, "key"),
			Handler: s.handlePressKey,
		},
	)
	return defs
}

func mergeProps(base, extra map[string]any) map[string]any {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func (s *Service) handleFindElement(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		locatorArgs
		Timeout int `json:"timeout"`
	}
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
	if err := h.Find(ctx, loc, timeoutFromMS(params.Timeout)); err != nil {
		return Result{}, err
	}
	return textResult("Element found: %s=%s", loc.Strategy, loc.Value)
}

func (s *Service) handleWaitForElement(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		locatorArgs
		Condition string `json:"condition"`
		Timeout   int    `json:"timeout"`
	}
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
	if err := h.WaitFor(ctx, loc, params.Condition, timeoutFromMS(params.Timeout)); err != nil {
		return Result{}, err
	}
	condition := params.Condition
	if condition == "" {
		condition = "present"
	}
	return textResult("Element is %s: %s=%s", condition, loc.Strategy, loc.Value)
}

func (s *Service) handleSendKeys(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		locatorArgs
		Text string `json:"text"`
	}
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
	if err := h.SendKeys(ctx, loc, params.Text); err != nil {
		return Result{}, err
	}
	return textResult("Text %q entered into element", params.Text)
}

func (s *Service) handleGetAttribute(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		locatorArgs
		Attribute string `json:"attribute"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.Attribute == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "attribute is required", nil)
	}
	loc, err := params.parse()
	if err != nil {
		return Result{}, err
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	value, ok, err := h.Attribute(ctx, loc, params.Attribute)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return textResult("Attribute %q is not set", params.Attribute)
	}
	return Result{Text: value}, nil
}

func (s *Service) handleUploadFile(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		locatorArgs
		FilePath string `json:"filePath"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.FilePath == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "filePath is required", nil)
	}
	loc, err := params.parse()
	if err != nil {
		return Result{}, err
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.UploadFile(ctx, loc, []string{params.FilePath}); err != nil {
		return Result{}, err
	}
	return textResult("File %s attached to element", params.FilePath)
}

func (s *Service) handleDragAndDrop(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		locatorArgs
		TargetBy    string `json:"targetBy"`
		TargetValue string `json:"targetValue"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	source, err := params.parse()
	if err != nil {
		return Result{}, err
	}
	dest, err := locatorArgs{By: params.TargetBy, Value: params.TargetValue}.parse()
	if err != nil {
		return Result{}, err
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.DragAndDrop(ctx, source, dest); err != nil {
		return Result{}, err
	}
	return textResult("Dragged %s=%s onto %s=%s", source.Strategy, source.Value, dest.Strategy, dest.Value)
}

func (s *Service) handlePressKey(ctx context.Context, args json.RawMessage) (Result, error) {
	var params struct {
		Key string `json:"key"`
	}
	if err := decode(args, &params); err != nil {
		return Result{}, err
	}
	if params.Key == "" {
		return Result{}, driver.NewError(driver.CodeValidation, "key is required", nil)
	}
	h, err := s.current()
	if err != nil {
		return Result{}, err
	}
	if err := h.PressKey(ctx, params.Key); err != nil {
		return Result{}, err
	}
	return textResult("Key %q pressed", params.Key)
}
