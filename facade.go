package goOwner

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MrEthical07/goOwner/storage"
	"go.uber.org/zap"
)

// Facade is the single access point for the owner session. All methods are safe for
// concurrent use.
//
// The session cell (state, epoch, last verify result) is guarded by mu, which is never
// held across network or storage I/O. Credential writes are serialized by writeMu
// (always taken before mu), and each write is committed to the cell with an epoch bump,
// so a Verify that loses a race to Login or Logout detects it through the epoch and
// leaves the newer state alone.
type Facade struct {
	config  Config
	store   storage.Store
	client  *http.Client
	logger  *zap.Logger
	audit   *auditDispatcher
	metrics *Metrics
	now     func() time.Time

	writeMu sync.Mutex

	mu         sync.Mutex
	state      State
	epoch      uint64
	inFlight   int
	lastVerify VerifyResult
}

// Close flushes queued audit events and stops the dispatcher.
func (f *Facade) Close() {
	if f == nil {
		return
	}
	if f.audit != nil {
		f.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped.
func (f *Facade) AuditDropped() uint64 {
	if f == nil || f.audit == nil {
		return 0
	}
	return f.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (f *Facade) MetricsSnapshot() MetricsSnapshot {
	if f == nil || f.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return f.metrics.Snapshot()
}

func (f *Facade) metricInc(id MetricID) {
	if f == nil || f.metrics == nil {
		return
	}
	f.metrics.Inc(id)
}

func (f *Facade) observeLatency(start time.Time) {
	if f.metrics == nil || !f.metrics.LatencyEnabled() {
		return
	}
	f.metrics.Observe(MetricBackendLatency, f.now().Sub(start))
}

// BackendURL returns the configured backend base URL.
func (f *Facade) BackendURL() string {
	if f == nil {
		return ""
	}
	return f.config.Backend.URL
}

// Config returns a copy of the facade's configuration.
func (f *Facade) Config() Config {
	return cloneConfig(f.config)
}

// State returns the current state.
func (f *Facade) State() State {
	if f == nil {
		return StateAnonymous
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Authenticated reports whether the facade currently trusts its credential. With a shared
// store this may lag a logout done by another process until the next Verify.
func (f *Facade) Authenticated() bool {
	return f.State() == StateAuthenticated
}

// Snapshot returns a copy of the session cell.
func (f *Facade) Snapshot() Snapshot {
	if f == nil {
		return Snapshot{State: StateAnonymous}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return Snapshot{
		State:         f.state,
		Authenticated: f.state == StateAuthenticated,
		Verifying:     f.state == StateVerifying,
		VerifyPending: f.inFlight > 0,
		LastVerify:    f.lastVerify,
	}
}

// Token returns the stored credential. Storage failures read as absent.
func (f *Facade) Token(ctx context.Context) (string, bool) {
	if f == nil {
		return "", false
	}
	token, found, err := f.store.Get(ctx, f.config.Storage.Key)
	if err != nil {
		f.metricInc(MetricStorageError)
		f.logger.Warn("credential read failed", zap.Error(err))
		return "", false
	}
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// AuthHeader returns the header to attach to protected backend requests: empty when no
// credential is stored, otherwise exactly one "Authorization: Bearer <token>". The store
// is read on every call.
func (f *Facade) AuthHeader(ctx context.Context) http.Header {
	h := http.Header{}
	token, ok := f.Token(ctx)
	if !ok {
		return h
	}
	h.Set("Authorization", "Bearer "+token)
	return h
}

// Logout forgets the credential. It makes no network call and is safe when nothing is
// stored. The facade is anonymous afterwards even when the store fails; the error reports
// that the persisted credential may survive.
func (f *Facade) Logout(ctx context.Context) error {
	if f == nil {
		return ErrFacadeNotReady
	}
	f.metricInc(MetricLogout)

	f.writeMu.Lock()
	err := f.store.Delete(context.WithoutCancel(ctx), f.config.Storage.Key)
	f.mu.Lock()
	f.epoch++
	f.state = StateAnonymous
	f.mu.Unlock()
	f.writeMu.Unlock()

	if err != nil {
		f.metricInc(MetricStorageError)
		f.logger.Warn("credential delete failed on logout", zap.Error(err))
		f.emitAudit(ctx, auditEventLogout, false, "", auditReasonStorage, err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	f.logger.Debug("logged out")
	f.emitAudit(ctx, auditEventLogout, true, "", "", nil)
	return nil
}

// newRequest builds a backend request carrying the request id and user agent.
func (f *Facade) newRequest(ctx context.Context, method, path string, body *requestBody) (*http.Request, string, error) {
	requestID := EnsureRequestID(ctx)
	req, err := http.NewRequestWithContext(ctx, method, f.config.Backend.Endpoint(path), body.reader())
	if err != nil {
		return nil, requestID, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.config.HTTP.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.HTTP.UserAgent)
	}
	req.Header.Set(RequestIDHeader, requestID)
	return req, requestID, nil
}
