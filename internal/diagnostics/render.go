package diagnostics

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout matches the ISO-8601 millisecond shape emitted by the
// selenium log APIs, so existing tooling can keep pattern-matching it.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders a capture timestamp for tool output.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// severityLabel maps normalized levels to the selenium-style bracket tags.
func severityLabel(level string) string {
	switch level {
	case LevelError:
		return "SEVERE"
	case LevelWarning:
		return "WARNING"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// RenderConsole renders console entries as "[LEVEL] timestamp" header
// lines followed by the message.
func RenderConsole(entries []ConsoleEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] %s\n%s", severityLabel(e.Level), FormatTimestamp(e.Timestamp), e.Text)
	}
	return b.String()
}

// RenderPageErrors renders page-error entries in the same header shape.
func RenderPageErrors(entries []PageErrorEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] %s\n%s", severityLabel(e.Level), FormatTimestamp(e.Timestamp), e.Text)
	}
	return b.String()
}

// RenderNetwork renders network entries; responses and failures share the
// header shape with distinct kind tags.
func RenderNetwork(entries []NetworkEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.EventKind {
		case "error":
			fmt.Fprintf(&b, "[NETWORK-ERROR] %s\n%s %s -> %s",
				FormatTimestamp(e.Timestamp), e.Method, e.URL, e.ErrorText)
		default:
			fmt.Fprintf(&b, "[NETWORK] %s\n%s %s -> %d (%s)",
				FormatTimestamp(e.Timestamp), e.Method, e.URL, e.Status, e.MimeType)
		}
	}
	return b.String()
}

// FindErrorByTimestamp locates the first page-error entry whose formatted
// timestamp matches ts exactly.
func FindErrorByTimestamp(entries []PageErrorEntry, ts string) (PageErrorEntry, bool) {
	for _, e := range entries {
		if FormatTimestamp(e.Timestamp) == ts {
			return e, true
		}
	}
	return PageErrorEntry{}, false
}

// RenderStackTrace renders one page error with its stack trace, limiting
// frame lines when maxLines > 0.
func RenderStackTrace(e PageErrorEntry, maxLines int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Type: %s\n", e.Level)
	fmt.Fprintf(&b, "Message: %s\n", e.Text)
	b.WriteString("\nStack Trace:\n")
	if e.StackTrace == "" {
		b.WriteString("(no stack trace available)")
		return b.String()
	}
	lines := strings.Split(e.StackTrace, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
