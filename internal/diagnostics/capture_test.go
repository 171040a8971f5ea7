package diagnostics

import (
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/go-json-experiment/json/jsontext"
)

func TestConsoleAPIEventCaptured(t *testing.T) {
	h := availableHandle()
	when := time.Date(2026, 2, 14, 17, 59, 48, 527e6, time.UTC)
	ts := runtime.Timestamp(when)

	h.onEvent(&runtime.EventConsoleAPICalled{
		Type:      runtime.APITypeError,
		Timestamp: &ts,
		Args: []*runtime.RemoteObject{
			{Type: runtime.TypeString, Value: jsontext.Value(`"request failed:"`)},
			{Type: runtime.TypeObject, Description: "TypeError: x is not a function"},
		},
	})

	entries, err := h.Console(false)
	if err != nil {
		t.Fatalf("Console() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Console() len = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Level != LevelError {
		t.Fatalf("Level = %q, want %q", got.Level, LevelError)
	}
	if got.Text != "request failed: TypeError: x is not a function" {
		t.Fatalf("Text = %q", got.Text)
	}
	if !got.Timestamp.Equal(when) {
		t.Fatalf("Timestamp = %v, want %v", got.Timestamp, when)
	}
}

func TestConsoleLevelNormalization(t *testing.T) {
	cases := []struct {
		apiType string
		want    string
	}{
		{"error", LevelError},
		{"assert", LevelError},
		{"warning", LevelWarning},
		{"debug", LevelDebug},
		{"verbose", LevelDebug},
		{"trace", LevelDebug},
		{"log", LevelInfo},
		{"info", LevelInfo},
		{"table", LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.apiType, func(t *testing.T) {
			if got := normalizeLevel(tc.apiType); got != tc.want {
				t.Fatalf("normalizeLevel(%q) = %q, want %q", tc.apiType, got, tc.want)
			}
		})
	}
}

func TestExceptionCapturedWithStack(t *testing.T) {
	h := availableHandle()
	ts := runtime.Timestamp(time.Now())

	h.onEvent(&runtime.EventExceptionThrown{
		Timestamp: &ts,
		ExceptionDetails: &runtime.ExceptionDetails{
			Text: "Uncaught",
			Exception: &runtime.RemoteObject{
				Description: "Error: kaput\n    at fail (https://example.com/app.js:10:5)",
			},
		},
	})

	entries, err := h.PageErrors(false)
	if err != nil {
		t.Fatalf("PageErrors() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("PageErrors() len = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Text != "Error: kaput" {
		t.Fatalf("Text = %q, want message without frames", got.Text)
	}
	if !strings.Contains(got.StackTrace, "at fail (https://example.com/app.js:10:5)") {
		t.Fatalf("StackTrace = %q, missing frame", got.StackTrace)
	}
	if got.Level != LevelError {
		t.Fatalf("Level = %q, want %q", got.Level, LevelError)
	}
}

func TestExceptionStructuredStackFallback(t *testing.T) {
	h := availableHandle()

	h.onEvent(&runtime.EventExceptionThrown{
		ExceptionDetails: &runtime.ExceptionDetails{
			Text: "Uncaught Error: nope",
			StackTrace: &runtime.StackTrace{
				CallFrames: []*runtime.CallFrame{
					{FunctionName: "boom", URL: "https://example.com/a.js", LineNumber: 4, ColumnNumber: 9},
					{FunctionName: "", URL: "https://example.com/b.js", LineNumber: 0, ColumnNumber: 0},
				},
			},
		},
	})

	entries, _ := h.PageErrors(false)
	if len(entries) != 1 {
		t.Fatalf("PageErrors() len = %d, want 1", len(entries))
	}
	stack := entries[0].StackTrace
	// CDP line and column numbers are zero-based.
	if !strings.Contains(stack, "    at boom (https://example.com/a.js:5:10)") {
		t.Fatalf("StackTrace = %q, missing named frame", stack)
	}
	if !strings.Contains(stack, "    at (anonymous) (https://example.com/b.js:1:1)") {
		t.Fatalf("StackTrace = %q, missing anonymous frame", stack)
	}
}

func TestNetworkResponseCorrelatesMethod(t *testing.T) {
	h := availableHandle()

	h.onEvent(&network.EventRequestWillBeSent{
		RequestID: "req-1",
		Request:   &network.Request{URL: "https://example.com/api", Method: "POST"},
	})
	h.onEvent(&network.EventResponseReceived{
		RequestID: "req-1",
		Response:  &network.Response{URL: "https://example.com/api", Status: 201, MimeType: "application/json"},
	})

	entries, err := h.Network(false)
	if err != nil {
		t.Fatalf("Network() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Network() len = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.EventKind != "response" || got.Method != "POST" || got.Status != 201 {
		t.Fatalf("entry = %+v, want POST response 201", got)
	}

	h.pendingMu.Lock()
	remaining := len(h.pending)
	h.pendingMu.Unlock()
	if remaining != 0 {
		t.Fatalf("pending len = %d, want 0 after response", remaining)
	}
}

func TestLoadingFailedRecordsError(t *testing.T) {
	h := availableHandle()

	h.onEvent(&network.EventRequestWillBeSent{
		RequestID: "req-2",
		Request:   &network.Request{URL: "https://example.com/img.png", Method: "GET"},
	})
	h.onEvent(&network.EventLoadingFailed{
		RequestID: "req-2",
		ErrorText: "net::ERR_CONNECTION_REFUSED",
	})

	entries, _ := h.Network(false)
	if len(entries) != 1 {
		t.Fatalf("Network() len = %d, want 1", len(entries))
	}
	got := entries[0]
	if got.EventKind != "error" || got.URL != "https://example.com/img.png" || got.ErrorText != "net::ERR_CONNECTION_REFUSED" {
		t.Fatalf("entry = %+v", got)
	}
}

func TestLoadingFailedWithoutRequestDropped(t *testing.T) {
	h := availableHandle()

	h.onEvent(&network.EventLoadingFailed{RequestID: "ghost", ErrorText: "net::ERR_ABORTED"})

	entries, _ := h.Network(false)
	if len(entries) != 0 {
		t.Fatalf("Network() len = %d, want 0 for uncorrelated failure", len(entries))
	}
}

func TestRemoteObjectText(t *testing.T) {
	cases := []struct {
		name string
		obj  *runtime.RemoteObject
		want string
	}{
		{"nil", nil, ""},
		{"string value", &runtime.RemoteObject{Value: jsontext.Value(`"plain"`)}, "plain"},
		{"number value", &runtime.RemoteObject{Value: jsontext.Value(`42`)}, "42"},
		{"description", &runtime.RemoteObject{Type: runtime.TypeObject, Description: "Window"}, "Window"},
		{"type only", &runtime.RemoteObject{Type: runtime.TypeUndefined}, "undefined"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := remoteObjectText(tc.obj); got != tc.want {
				t.Fatalf("remoteObjectText() = %q, want %q", got, tc.want)
			}
		})
	}
}
