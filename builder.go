package goOwner

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goOwner/internal/httpclient"
	"github.com/MrEthical07/goOwner/storage"
	"go.uber.org/zap"
)

// Builder assembles a Facade.
//
// Configure it during initialization; Build may be called once.
type Builder struct {
	config    Config
	store     storage.Store
	client    *http.Client
	logger    *zap.Logger
	auditSink AuditSink
	now       func() time.Time

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration. The builder keeps a copy.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackendURL sets Config.Backend.URL.
func (b *Builder) WithBackendURL(url string) *Builder {
	b.config.Backend.URL = url
	return b
}

// WithValidationMode sets Config.Verify.Mode.
func (b *Builder) WithValidationMode(mode ValidationMode) *Builder {
	b.config.Verify.Mode = mode
	return b
}

// WithStore sets where the credential is persisted. Without it the facade keeps the
// credential in process memory only.
func (b *Builder) WithStore(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithHTTPClient supplies the client for login and verify calls. It is used as-is;
// Config.HTTP.Timeout only applies to the client the builder creates.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.client = client
	return b
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination. Audit.Enabled must also be set for events
// to flow.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the backend latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides time.Now, used for local expiry checks and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a Facade in StateVerifying. Call
// Facade.Verify once at startup to resolve it.
func (b *Builder) Build() (*Facade, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("goowner")

	for _, w := range cfg.Lint() {
		logger.Warn("config lint", zap.String("code", w.Code), zap.String("message", w.Message))
	}

	store := b.store
	if store == nil {
		store = storage.NewMemory()
		logger.Debug("no credential store configured, using process memory")
	}

	client := b.client
	if client == nil {
		client = httpclient.New(httpclient.WithTimeout(cfg.HTTP.Timeout))
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	f := &Facade{
		config:  cfg,
		store:   store,
		client:  client,
		logger:  logger,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		now:     now,
		state:   StateVerifying,
	}

	b.built = true
	return f, nil
}
