// Package config reads agent configuration from environment variables and
// an optional .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the browser agent.
type Config struct {
	// Browser defaults applied when a start request omits them.
	DefaultBrowser string
	Headless       bool
	WindowSize     string

	// Per-operation driver timeout.
	EvalTimeoutMS int

	// HTTP surface settings.
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Screenshot persistence.
	ScreenshotDir string

	// Logging.
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and an optional
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		DefaultBrowser:   strings.ToLower(getEnvOrDefault("BROWSER_AGENT_DEFAULT_BROWSER", "chrome")),
		Headless:         getEnvBoolOrDefault("BROWSER_AGENT_HEADLESS", true),
		WindowSize:       getEnvOrDefault("BROWSER_AGENT_WINDOW_SIZE", "1920,1080"),
		EvalTimeoutMS:    getEnvIntOrDefault("BROWSER_AGENT_EVAL_TIMEOUT_MS", 15000),
		BindAddr:         getEnvOrDefault("BROWSER_AGENT_BIND_ADDR", "127.0.0.1:8320"),
		PortCandidates:   splitList(getEnvOrDefault("BROWSER_AGENT_PORT_CANDIDATES", "127.0.0.1:8321,127.0.0.1:8322")),
		PortAutoFallback: getEnvBoolOrDefault("BROWSER_AGENT_PORT_AUTO_FALLBACK", true),
		ScreenshotDir:    getEnvOrDefault("BROWSER_AGENT_SCREENSHOT_DIR", "./screenshots"),
		LogLevel:         strings.ToLower(getEnvOrDefault("BROWSER_AGENT_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("BROWSER_AGENT_LOG_FILE", "logs/browser_agent.log"),
	}
	if cfg.EvalTimeoutMS < 1000 {
		cfg.EvalTimeoutMS = 1000
	}
	return cfg, nil
}

func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
