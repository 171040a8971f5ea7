// Command http_server serves the browser automation operations over HTTP,
// including the live diagnostics WebSocket stream.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/browser_agent/internal/api"
	"github.com/dgnsrekt/browser_agent/internal/config"
	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
	"github.com/dgnsrekt/browser_agent/internal/netutil"
	"github.com/dgnsrekt/browser_agent/internal/screenshot"
	"github.com/dgnsrekt/browser_agent/internal/session"
	"github.com/dgnsrekt/browser_agent/internal/stream"
	"github.com/dgnsrekt/browser_agent/internal/tools"
)

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

	slog.Info("http server config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"default_browser", cfg.DefaultBrowser,
		"eval_timeout_ms", cfg.EvalTimeoutMS,
		"log_level", cfg.LogLevel,
	)

	plan := netutil.BindPlan{
		Preferred:    cfg.BindAddr,
		Fallbacks:    cfg.PortCandidates,
		AutoFallback: cfg.PortAutoFallback,
	}
	bindAddr, err := plan.Select()
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}

	shots, err := screenshot.NewStore(cfg.ScreenshotDir)
	if err != nil {
		slog.Error("screenshot store setup failed", "dir", cfg.ScreenshotDir, "error", err)
		shots = nil
	}

	broker := stream.NewBroker()
	registry := session.NewRegistry()
	diag := diagnostics.NewManager(broker.Notify)
	ctrl := session.NewController(registry, diag, nil, time.Duration(cfg.EvalTimeoutMS)*time.Millisecond)
	svc := tools.NewService(cfg, ctrl, shots)

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc, broker)}

	go func() {
		slog.Info("http server listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
	for _, err := range ctrl.Shutdown(ctx) {
		slog.Warn("session shutdown error", "error", err)
	}
}

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

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(h))
	return nil
}
