// Package locator translates WebDriver-style locator strategies into
// chromedp selectors and query options.
package locator

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// Strategy names accepted at the tool boundary. These mirror the classic
// WebDriver By.* set.
const (
	StrategyCSS   = "css"
	StrategyXPath = "xpath"
	StrategyID    = "id"
	StrategyName  = "name"
	StrategyTag   = "tag"
	StrategyClass = "class"
	StrategyText  = "text"
)

// Locator is a resolved element selector ready to hand to chromedp.
type Locator struct {
	Strategy string
	Value    string
	Sel      string
	Opt      chromedp.QueryOption
}

// Parse validates a strategy/value pair and resolves it to a chromedp
// selector. Returns an error for unknown strategies or empty values.
func Parse(strategy, value string) (Locator, error) {
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if strings.TrimSpace(value) == "" {
		return Locator{}, fmt.Errorf("locator value is required")
	}

	loc := Locator{Strategy: strategy, Value: value}
	switch strategy {
	case StrategyCSS:
		loc.Sel, loc.Opt = value, chromedp.ByQuery
	case StrategyXPath:
		loc.Sel, loc.Opt = value, chromedp.BySearch
	case StrategyID:
		loc.Sel, loc.Opt = value, chromedp.ByID
	case StrategyName:
		loc.Sel, loc.Opt = fmt.Sprintf(`[name=%q]`, value), chromedp.ByQuery
	case StrategyTag:
		loc.Sel, loc.Opt = value, chromedp.ByQuery
	case StrategyClass:
		loc.Sel, loc.Opt = "."+value, chromedp.ByQuery
	case StrategyText:
		loc.Sel, loc.Opt = textXPath(value), chromedp.BySearch
	default:
		return Locator{}, fmt.Errorf("unknown locator strategy %q (want css, xpath, id, name, tag, class or text)", strategy)
	}
	return loc, nil
}

// textXPath matches any element whose text content contains value.
func textXPath(value string) string {
	return fmt.Sprintf(`//*[contains(text(), %s)]`, xpathLiteral(value))
}

// xpathLiteral quotes value as an XPath string literal. XPath 1.0 has no
// escape sequence inside string literals, so values containing an
// apostrophe are spliced with concat().
func xpathLiteral(value string) string {
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	parts := strings.Split(value, "'")
	pieces := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			pieces = append(pieces, `"'"`)
		}
		if part != "" {
			pieces = append(pieces, "'"+part+"'")
		}
	}
	if len(pieces) == 1 {
		return pieces[0]
	}
	return "concat(" + strings.Join(pieces, ", ") + ")"
}
