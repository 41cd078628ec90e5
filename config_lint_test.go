package goOwner

import (
	"testing"
	"time"
)

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

func TestLint_DefaultConfigNoWarnings(t *testing.T) {
	cfg := DefaultConfig()
	if ws := cfg.Lint(); len(ws) != 0 {
		t.Fatalf("default config should lint clean, got %v", ws.Codes())
	}
}

func TestLint_PlaintextRemoteBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.URL = "http://shop.example.com"
	if !containsCode(cfg.Lint().Codes(), "plaintext_backend") {
		t.Error("expected plaintext_backend warning")
	}

	cfg.Backend.URL = "https://shop.example.com"
	if containsCode(cfg.Lint().Codes(), "plaintext_backend") {
		t.Error("https backend must not warn")
	}

	cfg.Backend.URL = "http://127.0.0.1:9000"
	if containsCode(cfg.Lint().Codes(), "plaintext_backend") {
		t.Error("loopback backend must not warn")
	}
}

func TestLint_LocalTrust(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Verify.Mode = ModeLocal
	if !containsCode(cfg.Lint().Codes(), "local_trust") {
		t.Error("expected local_trust warning")
	}
}

func TestLint_LargeLeeway(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Verify.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}
}

func TestLint_NoTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP.Timeout = 0
	if !containsCode(cfg.Lint().Codes(), "no_http_timeout") {
		t.Error("expected no_http_timeout warning")
	}
}

func TestLint_AuditUnbuffered(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 0
	if !containsCode(cfg.Lint().Codes(), "audit_unbuffered") {
		t.Error("expected audit_unbuffered warning")
	}
}

func TestLint_HistogramsWithoutMetrics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.Enabled = false
	if !containsCode(cfg.Lint().Codes(), "histograms_without_metrics") {
		t.Error("expected histograms_without_metrics warning")
	}
}
