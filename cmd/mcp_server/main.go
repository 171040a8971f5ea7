// Command mcp_server serves the browser automation tools over the MCP
// stdio transport. Stdout carries protocol frames only; all logging goes
// to the rotating log file.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/browser_agent/internal/config"
	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/mcp"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
	"github.com/dgnsrekt/browser_agent/internal/session"
	"github.com/dgnsrekt/browser_agent/internal/tools"
)

const serverVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = io.WriteString(os.Stderr, "config load failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	if err := setupLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}

	slog.Info("mcp server starting",
		"default_browser", cfg.DefaultBrowser,
		"headless", cfg.Headless,
		"eval_timeout_ms", cfg.EvalTimeoutMS,
		"screenshot_dir", cfg.ScreenshotDir,
		"log_level", cfg.LogLevel,
	)

	shots, err := screenshot.NewStore(cfg.ScreenshotDir)
	if err != nil {
		slog.Error("screenshot store setup failed", "dir", cfg.ScreenshotDir, "error", err)
		shots = nil
	}

	registry := session.NewRegistry()
	diag := diagnostics.NewManager(nil)
	ctrl := session.NewController(registry, diag, nil, time.Duration(cfg.EvalTimeoutMS)*time.Millisecond)
	svc := tools.NewService(cfg, ctrl, shots)

	server := mcp.NewServer("browser-agent", serverVersion, svc.Definitions(), os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		slog.Error("mcp transport failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, err := range ctrl.Shutdown(shutdownCtx) {
		slog.Warn("session shutdown error", "error", err)
	}
	slog.Info("mcp server stopped")
}

// setupLogger routes slog to the rotating file. Stdout is explicitly
// excluded: MCP clients own it.
func setupLogger(level, filename string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	h := slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
