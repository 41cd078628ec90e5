package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goOwner "github.com/MrEthical07/goOwner"
	"github.com/MrEthical07/goOwner/internal/backendtest"
)

type harness struct {
	backend *backendtest.Server
	base    []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := backendtest.New(backendtest.Options{})
	t.Cleanup(backend.Close)
	return &harness{
		backend: backend,
		base: []string{
			"--backend", backend.URL,
			"--store", "file",
			"--store-path", filepath.Join(t.TempDir(), "session.json"),
			"--log-level", "error",
		},
	}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	// Base flags go right after the subcommand so a test can override them.
	full := append([]string{args[0]}, h.base...)
	full = append(full, args[1:]...)
	err := run(context.Background(), full, &out)
	return out.String(), err
}

func TestLoginVerifyHeaderLogout(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "login", "--user", backendtest.DefaultEmail, "--password", backendtest.DefaultPassword)
	if err != nil || !strings.Contains(out, "logged in") {
		t.Fatalf("login: %v %q", err, out)
	}

	out, err = h.run(t, "verify")
	if err != nil || !strings.Contains(out, "authenticated (confirmed)") {
		t.Fatalf("verify: %v %q", err, out)
	}

	out, err = h.run(t, "header")
	if err != nil || !strings.HasPrefix(out, "Authorization: Bearer ") {
		t.Fatalf("header: %v %q", err, out)
	}

	if _, err := h.run(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := h.run(t, "header"); !errors.Is(err, goOwner.ErrNotAuthenticated) {
		t.Fatalf("expected goOwner.ErrNotAuthenticated after logout, got %v", err)
	}
	out, err = h.run(t, "verify")
	if !errors.Is(err, goOwner.ErrNotAuthenticated) || !strings.Contains(out, "no_credential") {
		t.Fatalf("verify after logout: %v %q", err, out)
	}
}

func TestLoginFailureMessage(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "login", "--user", backendtest.DefaultEmail, "--password", "wrongpass")
	if err == nil || err.Error() != "Invalid owner credentials" {
		t.Fatalf("expected backend message, got %v", err)
	}
	if _, err := h.run(t, "login", "--user", backendtest.DefaultEmail); err == nil {
		t.Fatal("expected missing password error")
	}
}

func TestLoginPasswordFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv("OWNERCTL_PASSWORD", backendtest.DefaultPassword)

	if _, err := h.run(t, "login", "--user", backendtest.DefaultEmail); err != nil {
		t.Fatalf("login with env password: %v", err)
	}
}

func TestOrdersAndCoupons(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run(t, "orders"); !errors.Is(err, goOwner.ErrNotAuthenticated) {
		t.Fatalf("expected goOwner.ErrNotAuthenticated, got %v", err)
	}
	if _, err := h.run(t, "login", "--user", backendtest.DefaultEmail, "--password", backendtest.DefaultPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := h.run(t, "orders", "--status", "pending")
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	if !strings.Contains(out, "AUR-1001") || strings.Contains(out, "AUR-1002") {
		t.Fatalf("unexpected orders output:\n%s", out)
	}

	out, err = h.run(t, "coupons")
	if err != nil || !strings.Contains(out, "WELCOME10") {
		t.Fatalf("coupons: %v\n%s", err, out)
	}
}

func TestMetricsCommand(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if !strings.Contains(out, "goowner_verify_skipped_total 1") {
		t.Fatalf("unexpected metrics output:\n%s", out)
	}
}

func TestMemoryAndEmbeddedRedisStores(t *testing.T) {
	h := newHarness(t)
	for _, store := range []string{"memory", "redis"} {
		out, err := h.run(t, "login", "--user", backendtest.DefaultEmail, "--password", backendtest.DefaultPassword, "--store", store)
		if err != nil || !strings.Contains(out, "logged in") {
			t.Fatalf("%s login: %v %q", store, err, out)
		}
	}
}

func TestInvalidSettings(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run(t, "verify", "--store", "etcd"); err == nil || !strings.Contains(err.Error(), "unknown --store") {
		t.Fatalf("expected unknown store error, got %v", err)
	}
	if _, err := h.run(t, "verify", "--mode", "optimistic"); err == nil {
		t.Fatal("expected invalid mode error")
	}
	if _, err := h.run(t, "verify", "--log-level", "loud"); err == nil {
		t.Fatal("expected invalid log level error")
	}
}

func TestConfigFile(t *testing.T) {
	h := newHarness(t)
	cfg := filepath.Join(t.TempDir(), "ownerctl.yaml")
	content := "backend: " + h.backend.URL + "\nmode: hybrid\n"
	if err := os.WriteFile(cfg, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"login", "--user", backendtest.DefaultEmail, "--password", backendtest.DefaultPassword,
		"--config", cfg, "--store", "memory", "--log-level", "error",
	}, &out)
	if err != nil {
		t.Fatalf("login with config file: %v", err)
	}
	if h.backend.LoginCalls() != 1 {
		t.Fatalf("expected the configured backend to be used, got %d calls", h.backend.LoginCalls())
	}

	if err := run(context.Background(), []string{"verify", "--config", filepath.Join(t.TempDir(), "missing.yaml")}, &out); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
