package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
)

const pendingTTL = 5 * time.Minute

// onEvent is the single CDP event callback feeding all three sequences.
// Malformed or partial payloads are dropped: passive capture must never
// take down the capturing session.
func (h *Handle) onEvent(ev any) {
	switch e := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		h.onConsoleAPI(e)
	case *runtime.EventExceptionThrown:
		h.onException(e)
	case *network.EventRequestWillBeSent:
		h.onRequestWillBeSent(e)
	case *network.EventResponseReceived:
		h.onResponseReceived(e)
	case *network.EventLoadingFailed:
		h.onLoadingFailed(e)
	}
}

func (h *Handle) onConsoleAPI(e *runtime.EventConsoleAPICalled) {
	if e == nil {
		return
	}
	parts := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		if text := remoteObjectText(arg); text != "" {
			parts = append(parts, text)
		}
	}
	h.appendConsole(ConsoleEntry{
		Level:      normalizeLevel(string(e.Type)),
		Text:       strings.Join(parts, " "),
		Timestamp:  eventTime(e.Timestamp),
		SourceType: "console-api",
	})
}

func (h *Handle) onException(e *runtime.EventExceptionThrown) {
	if e == nil || e.ExceptionDetails == nil {
		return
	}
	details := e.ExceptionDetails
	text := details.Text
	if details.Exception != nil && details.Exception.Description != "" {
		text = details.Exception.Description
	}
	// Descriptions embed the stack after the first line; keep the message
	// clean and carry frames separately.
	message, stack := splitDescription(text)
	if stack == "" {
		stack = formatStack(details.StackTrace)
	}
	h.appendPageError(PageErrorEntry{
		Level:      LevelError,
		Text:       message,
		Timestamp:  eventTime(e.Timestamp),
		StackTrace: stack,
	})
}

func (h *Handle) onRequestWillBeSent(e *network.EventRequestWillBeSent) {
	if e == nil || e.Request == nil {
		return
	}
	h.pendingMu.Lock()
	h.pending[string(e.RequestID)] = pendingRequest{
		url:      e.Request.URL,
		method:   e.Request.Method,
		recorded: time.Now(),
	}
	h.pendingMu.Unlock()
}

func (h *Handle) onResponseReceived(e *network.EventResponseReceived) {
	if e == nil || e.Response == nil {
		return
	}
	h.pendingMu.Lock()
	req, ok := h.pending[string(e.RequestID)]
	if ok {
		delete(h.pending, string(e.RequestID))
	}
	h.pendingMu.Unlock()

	h.appendNetwork(NetworkEntry{
		EventKind: "response",
		URL:       e.Response.URL,
		Method:    req.method,
		Status:    e.Response.Status,
		MimeType:  e.Response.MimeType,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handle) onLoadingFailed(e *network.EventLoadingFailed) {
	if e == nil {
		return
	}
	h.pendingMu.Lock()
	req, ok := h.pending[string(e.RequestID)]
	if ok {
		delete(h.pending, string(e.RequestID))
	}
	h.pendingMu.Unlock()
	if !ok {
		// No request bookkeeping means no URL to report; drop it.
		return
	}

	h.appendNetwork(NetworkEntry{
		EventKind: "error",
		URL:       req.url,
		Method:    req.method,
		ErrorText: e.ErrorText,
		Timestamp: time.Now().UTC(),
	})
}

// janitor evicts pending requests that never saw a response or failure.
func (h *Handle) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			threshold := time.Now().Add(-pendingTTL)
			h.pendingMu.Lock()
			for id, req := range h.pending {
				if req.recorded.Before(threshold) {
					delete(h.pending, id)
				}
			}
			h.pendingMu.Unlock()
		case <-h.done:
			return
		}
	}
}

// normalizeLevel folds CDP console API types into the closed level set.
func normalizeLevel(apiType string) string {
	switch apiType {
	case "error", "assert":
		return LevelError
	case "warning":
		return LevelWarning
	case "debug", "verbose", "trace":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// eventTime converts a CDP wall-clock timestamp, falling back to capture
// time when the event carried none.
func eventTime(ts *runtime.Timestamp) time.Time {
	if ts == nil {
		return time.Now().UTC()
	}
	return ts.Time().UTC()
}

// remoteObjectText renders one console argument as text.
func remoteObjectText(o *runtime.RemoteObject) string {
	if o == nil {
		return ""
	}
	if len(o.Value) > 0 {
		var s string
		if err := json.Unmarshal([]byte(o.Value), &s); err == nil {
			return s
		}
		return string(o.Value)
	}
	if o.Description != "" {
		return o.Description
	}
	return string(o.Type)
}

// splitDescription separates an exception description into its first-line
// message and the "    at ..." frames Chromium appends to it.
func splitDescription(desc string) (string, string) {
	message, rest, found := strings.Cut(desc, "\n")
	if !found {
		return desc, ""
	}
	return message, message + "\n" + rest
}

// formatStack renders structured call frames in the familiar
// "at fn (url:line:col)" shape.
func formatStack(st *runtime.StackTrace) string {
	if st == nil || len(st.CallFrames) == 0 {
		return ""
	}
	var b strings.Builder
	for i, frame := range st.CallFrames {
		if frame == nil {
			continue
		}
		name := frame.FunctionName
		if name == "" {
			name = "(anonymous)"
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "    at %s (%s:%d:%d)", name, frame.URL, frame.LineNumber+1, frame.ColumnNumber+1)
	}
	return b.String()
}
