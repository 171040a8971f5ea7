package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultBrowser != "chrome" {
		t.Fatalf("DefaultBrowser = %q, want chrome", cfg.DefaultBrowser)
	}
	if !cfg.Headless {
		t.Fatalf("Headless = false, want true")
	}
	if cfg.EvalTimeoutMS != 15000 {
		t.Fatalf("EvalTimeoutMS = %d, want 15000", cfg.EvalTimeoutMS)
	}
	if cfg.BindAddr != "127.0.0.1:8320" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if len(cfg.PortCandidates) != 2 {
		t.Fatalf("PortCandidates = %v", cfg.PortCandidates)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BROWSER_AGENT_DEFAULT_BROWSER", "EDGE")
	t.Setenv("BROWSER_AGENT_HEADLESS", "false")
	t.Setenv("BROWSER_AGENT_EVAL_TIMEOUT_MS", "30000")
	t.Setenv("BROWSER_AGENT_PORT_CANDIDATES", "127.0.0.1:9001, 127.0.0.1:9002 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultBrowser != "edge" {
		t.Fatalf("DefaultBrowser = %q, want edge", cfg.DefaultBrowser)
	}
	if cfg.Headless {
		t.Fatalf("Headless = true, want false")
	}
	if cfg.EvalTimeoutMS != 30000 {
		t.Fatalf("EvalTimeoutMS = %d", cfg.EvalTimeoutMS)
	}
	want := []string{"127.0.0.1:9001", "127.0.0.1:9002"}
	if len(cfg.PortCandidates) != len(want) {
		t.Fatalf("PortCandidates = %v, want %v", cfg.PortCandidates, want)
	}
	for i := range want {
		if cfg.PortCandidates[i] != want[i] {
			t.Fatalf("PortCandidates[%d] = %q, want %q", i, cfg.PortCandidates[i], want[i])
		}
	}
}

func TestLoadClampsTinyTimeout(t *testing.T) {
	t.Setenv("BROWSER_AGENT_EVAL_TIMEOUT_MS", "10")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EvalTimeoutMS != 1000 {
		t.Fatalf("EvalTimeoutMS = %d, want clamp to 1000", cfg.EvalTimeoutMS)
	}
}
