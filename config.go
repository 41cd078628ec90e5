package goOwner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds every tunable of the facade. Configure it before Build and treat it as
// immutable afterwards; the builder keeps its own copy.
type Config struct {
	Backend BackendConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Verify  VerifyConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig locates the backend API and its owner endpoints.
type BackendConfig struct {
	URL        string // scheme://host[:port], no trailing slash
	APIPrefix  string // "/api"
	LoginPath  string // "/owner/login"
	VerifyPath string // "/owner/verify"
}

// Endpoint joins URL, APIPrefix and path.
func (b BackendConfig) Endpoint(path string) string {
	base := strings.TrimRight(b.URL, "/")
	prefix := "/" + strings.Trim(b.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + prefix + path
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig configures the http.Client the builder creates when none is supplied.
type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
STORAGE CONFIG
====================================
*/

// StorageConfig names the key the credential is persisted under.
type StorageConfig struct {
	Key string
}

/*
====================================
VERIFY CONFIG
====================================
*/

// ValidationMode selects how Verify treats a stored credential.
type ValidationMode int

const (
	// ModeStrict always confirms the credential with the backend.
	ModeStrict ValidationMode = iota
	// ModeHybrid clears locally expired JWT credentials without a round trip and confirms
	// the rest with the backend.
	ModeHybrid
	// ModeLocal trusts an unexpired JWT credential without a round trip. Opaque credentials
	// still go to the backend.
	ModeLocal
)

// String returns the config spelling of the mode.
func (m ValidationMode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeHybrid:
		return "hybrid"
	case ModeLocal:
		return "local"
	default:
		return fmt.Sprintf("ValidationMode(%d)", int(m))
	}
}

// ParseValidationMode is the inverse of ValidationMode.String.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ModeStrict, nil
	case "hybrid":
		return ModeHybrid, nil
	case "local", "jwt-only", "jwtonly":
		return ModeLocal, nil
	default:
		return ModeStrict, fmt.Errorf("%w: unknown validation mode %q", ErrInvalidConfig, s)
	}
}

// VerifyConfig controls Verify.
type VerifyConfig struct {
	Mode   ValidationMode
	Leeway time.Duration // clock skew tolerated on exp checks
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration matching the storefront's defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			URL:        "http://localhost:8006",
			APIPrefix:  "/api",
			LoginPath:  "/owner/login",
			VerifyPath: "/owner/verify",
		},
		HTTP: HTTPConfig{
			Timeout:   15 * time.Second,
			UserAgent: "goOwner/1",
		},
		Storage: StorageConfig{
			Key: "ownerToken",
		},
		Verify: VerifyConfig{
			Mode:   ModeStrict,
			Leeway: 30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first hard configuration error, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("Backend URL must be set")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("Backend URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("Backend URL scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("Backend URL must include a host")
	}
	if strings.TrimSpace(c.Backend.LoginPath) == "" {
		return errors.New("Backend LoginPath must be set")
	}
	if strings.TrimSpace(c.Backend.VerifyPath) == "" {
		return errors.New("Backend VerifyPath must be set")
	}

	if c.HTTP.Timeout < 0 {
		return errors.New("HTTP Timeout must be >= 0")
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("Storage Key must be set")
	}

	switch c.Verify.Mode {
	case ModeStrict, ModeHybrid, ModeLocal:
	default:
		return errors.New("invalid Verify Mode")
	}
	if c.Verify.Leeway < 0 || c.Verify.Leeway > 5*time.Minute {
		return errors.New("Verify Leeway must be within [0, 5m]")
	}

	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must be >= 0")
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a non-fatal configuration smell.
type LintWarning struct {
	Code    string
	Message string
}

// LintResult is the ordered list of warnings produced by Lint.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that are valid but likely unintended.
func (c *Config) Lint() LintResult {
	var ws LintResult

	if u, err := url.Parse(c.Backend.URL); err == nil && u.Scheme == "http" && !isLoopbackHost(u.Hostname()) {
		ws = append(ws, LintWarning{
			Code:    "plaintext_backend",
			Message: "bearer credentials will travel over plain HTTP to a non-local backend",
		})
	}
	if c.HTTP.Timeout == 0 {
		ws = append(ws, LintWarning{
			Code:    "no_http_timeout",
			Message: "HTTP Timeout is 0; verify and login may block indefinitely",
		})
	}
	if c.Verify.Mode == ModeLocal {
		ws = append(ws, LintWarning{
			Code:    "local_trust",
			Message: "ModeLocal trusts unexpired tokens without asking the backend; revocations go unnoticed until expiry",
		})
	}
	if c.Verify.Leeway > time.Minute {
		ws = append(ws, LintWarning{
			Code:    "leeway_large",
			Message: "Verify Leeway above one minute",
		})
	}
	if c.Audit.Enabled && c.Audit.BufferSize == 0 {
		ws = append(ws, LintWarning{
			Code:    "audit_unbuffered",
			Message: "Audit enabled with BufferSize 0; every event blocks the caller",
		})
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		ws = append(ws, LintWarning{
			Code:    "histograms_without_metrics",
			Message: "EnableLatencyHistograms has no effect while Metrics is disabled",
		})
	}

	return ws
}

func isLoopbackHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost")
}
