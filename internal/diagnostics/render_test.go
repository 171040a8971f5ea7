package diagnostics

import (
	"strings"
	"testing"
	"time"
)

var renderTime = time.Date(2026, 2, 14, 17, 59, 48, 527e6, time.UTC)

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(renderTime); got != "2026-02-14T17:59:48.527Z" {
		t.Fatalf("FormatTimestamp() = %q", got)
	}

	// Non-UTC inputs are folded into UTC.
	loc := time.FixedZone("plus2", 2*3600)
	if got := FormatTimestamp(renderTime.In(loc)); got != "2026-02-14T17:59:48.527Z" {
		t.Fatalf("FormatTimestamp(non-UTC) = %q", got)
	}
}

func TestRenderConsole(t *testing.T) {
	out := RenderConsole([]ConsoleEntry{
		{Level: LevelError, Text: "boom", Timestamp: renderTime},
		{Level: LevelInfo, Text: "hello world", Timestamp: renderTime},
	})
	want := "[SEVERE] 2026-02-14T17:59:48.527Z\nboom\n[INFO] 2026-02-14T17:59:48.527Z\nhello world"
	if out != want {
		t.Fatalf("RenderConsole() = %q, want %q", out, want)
	}
}

func TestRenderPageErrorsSeverity(t *testing.T) {
	out := RenderPageErrors([]PageErrorEntry{{Level: LevelError, Text: "Error: x", Timestamp: renderTime}})
	if !strings.HasPrefix(out, "[SEVERE] ") {
		t.Fatalf("RenderPageErrors() = %q, want SEVERE prefix", out)
	}
}

func TestRenderNetwork(t *testing.T) {
	out := RenderNetwork([]NetworkEntry{
		{EventKind: "response", Method: "GET", URL: "https://e.com/a", Status: 200, MimeType: "text/html", Timestamp: renderTime},
		{EventKind: "error", Method: "GET", URL: "https://e.com/b", ErrorText: "net::ERR_FAILED", Timestamp: renderTime},
	})
	if !strings.Contains(out, "[NETWORK] 2026-02-14T17:59:48.527Z\nGET https://e.com/a -> 200 (text/html)") {
		t.Fatalf("RenderNetwork() missing response block: %q", out)
	}
	if !strings.Contains(out, "[NETWORK-ERROR] 2026-02-14T17:59:48.527Z\nGET https://e.com/b -> net::ERR_FAILED") {
		t.Fatalf("RenderNetwork() missing error block: %q", out)
	}
}

func TestFindErrorByTimestamp(t *testing.T) {
	entries := []PageErrorEntry{
		{Text: "first", Timestamp: renderTime},
		{Text: "second", Timestamp: renderTime.Add(time.Second)},
	}

	got, ok := FindErrorByTimestamp(entries, "2026-02-14T17:59:49.527Z")
	if !ok || got.Text != "second" {
		t.Fatalf("FindErrorByTimestamp() = %+v, %v", got, ok)
	}

	if _, ok := FindErrorByTimestamp(entries, "1999-01-01T00:00:00.000Z"); ok {
		t.Fatalf("FindErrorByTimestamp() matched a missing timestamp")
	}
}

func TestRenderStackTrace(t *testing.T) {
	entry := PageErrorEntry{
		Level: LevelError,
		Text:  "Error: kaput",
		StackTrace: "Error: kaput\n" +
			"    at a (https://e.com/x.js:1:1)\n" +
			"    at b (https://e.com/x.js:2:1)\n" +
			"    at c (https://e.com/x.js:3:1)",
	}

	out := RenderStackTrace(entry, 0)
	if !strings.HasPrefix(out, "Type: error\nMessage: Error: kaput\n\nStack Trace:\n") {
		t.Fatalf("RenderStackTrace() header = %q", out)
	}
	if !strings.Contains(out, "at c (") {
		t.Fatalf("RenderStackTrace() dropped frames without a cap: %q", out)
	}

	capped := RenderStackTrace(entry, 2)
	if strings.Contains(capped, "at b (") {
		t.Fatalf("RenderStackTrace(maxLines=2) kept too many lines: %q", capped)
	}
}

func TestRenderStackTraceEmpty(t *testing.T) {
	out := RenderStackTrace(PageErrorEntry{Level: LevelError, Text: "bare"}, 0)
	if !strings.Contains(out, "(no stack trace available)") {
		t.Fatalf("RenderStackTrace() = %q, want empty-stack placeholder", out)
	}
}
