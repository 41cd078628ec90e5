package goOwner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/goOwner/jwt"
	"github.com/MrEthical07/goOwner/storage"
	"go.uber.org/zap"
)

// Verify confirms the stored credential and settles the session state. It never fails
// outright: every failure collapses into an anonymous session with the stored credential
// removed, and the result says why.
//
// Without a stored credential no network call is made. Depending on Config.Verify.Mode
// a JWT credential may be settled from its exp claim alone.
func (f *Facade) Verify(ctx context.Context) VerifyResult {
	if f == nil {
		return VerifyResult{Reason: VerifyBackendError, Err: ErrFacadeNotReady}
	}
	ctx = WithRequestID(ctx, EnsureRequestID(ctx))

	// The state is left alone while the check runs: only a freshly built facade is
	// Verifying, and an authenticated owner stays authenticated until the result lands.
	f.mu.Lock()
	epoch := f.epoch
	f.inFlight++
	f.mu.Unlock()

	token, found, err := f.store.Get(ctx, f.config.Storage.Key)
	if err != nil {
		f.metricInc(MetricStorageError)
		return f.settle(ctx, epoch, "", VerifyResult{
			Reason: VerifyStorageError,
			Err:    fmt.Errorf("%w: %v", ErrStorageUnavailable, err),
		})
	}
	if !found || token == "" {
		return f.settle(ctx, epoch, "", VerifyResult{Reason: VerifyNoCredential, Err: ErrNoCredential})
	}

	if result, ok := f.verifyLocal(token); ok {
		return f.settle(ctx, epoch, token, result)
	}

	return f.settle(ctx, epoch, token, f.verifyRemote(ctx, token))
}

// verifyLocal settles a JWT credential from its claims when the validation mode allows.
// ok is false when a round trip is still needed.
func (f *Facade) verifyLocal(token string) (VerifyResult, bool) {
	mode := f.config.Verify.Mode
	if mode == ModeStrict {
		return VerifyResult{}, false
	}

	claims, err := jwt.Inspect(token)
	if err != nil {
		// Opaque credential, only the backend can judge it.
		return VerifyResult{}, false
	}

	if claims.ExpiredAt(f.now(), f.config.Verify.Leeway) {
		return VerifyResult{Reason: VerifyExpired, Err: ErrCredentialExpired}, true
	}
	if mode == ModeLocal {
		if _, hasExp := claims.Expiry(); hasExp {
			return VerifyResult{Authenticated: true, Reason: VerifyTrustedLocal}, true
		}
	}
	return VerifyResult{}, false
}

// maxVerifyBody bounds how much of the verify answer is drained.
const maxVerifyBody = 64 << 10

func (f *Facade) verifyRemote(ctx context.Context, token string) VerifyResult {
	req, _, err := f.newRequest(ctx, http.MethodGet, f.config.Backend.VerifyPath, nil)
	if err != nil {
		return VerifyResult{Reason: VerifyNetworkError, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := f.now()
	resp, err := f.client.Do(req)
	f.observeLatency(start)
	if err != nil {
		return VerifyResult{Reason: VerifyNetworkError, Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxVerifyBody))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return VerifyResult{Authenticated: true, Reason: VerifyConfirmed, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return VerifyResult{
			Reason:     VerifyRejected,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: status %d", ErrCredentialRejected, resp.StatusCode),
		}
	default:
		return VerifyResult{
			Reason:     VerifyBackendError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode),
		}
	}
}

// settle commits result unless a login or logout moved the epoch since Verify started.
// A failed result removes token from the store, but only if it is still the stored value.
func (f *Facade) settle(ctx context.Context, epoch uint64, token string, result VerifyResult) VerifyResult {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.mu.Lock()
	f.inFlight--
	if f.epoch != epoch {
		current := f.state
		f.mu.Unlock()

		f.metricInc(MetricVerifySuperseded)
		f.logger.Debug("verify superseded", zap.Stringer("discarded", result.Reason))
		return VerifyResult{
			Authenticated: current == StateAuthenticated,
			Reason:        VerifySuperseded,
			Err:           ErrVerifySuperseded,
		}
	}
	f.mu.Unlock()

	// writeMu keeps Login and Logout out until the commit below, so the epoch cannot
	// move while the store is touched without mu.
	var clearErr error
	cleared := false
	if !result.Authenticated && token != "" {
		cleared, clearErr = storage.DeleteIfEqual(context.WithoutCancel(ctx), f.store, f.config.Storage.Key, token)
	}

	f.mu.Lock()
	f.epoch++
	if result.Authenticated {
		f.state = StateAuthenticated
	} else {
		f.state = StateAnonymous
	}
	f.lastVerify = result
	f.mu.Unlock()

	f.recordVerify(ctx, result, cleared, clearErr)
	return result
}

func (f *Facade) recordVerify(ctx context.Context, result VerifyResult, cleared bool, clearErr error) {
	switch result.Reason {
	case VerifyNoCredential:
		f.metricInc(MetricVerifySkipped)
		f.emitAudit(ctx, auditEventVerifySkipped, false, "", result.Reason.String(), nil)
		return
	case VerifyConfirmed:
		f.metricInc(MetricVerifySuccess)
	case VerifyTrustedLocal:
		f.metricInc(MetricVerifySuccess)
		f.metricInc(MetricVerifyLocal)
	case VerifyExpired:
		f.metricInc(MetricVerifyFailure)
		f.metricInc(MetricVerifyLocal)
	default:
		f.metricInc(MetricVerifyFailure)
	}

	if result.Authenticated {
		f.logger.Debug("credential verified", zap.Stringer("reason", result.Reason))
		f.emitAudit(ctx, auditEventVerifySuccess, true, "", result.Reason.String(), nil)
		return
	}

	f.logger.Info("verify failed",
		zap.Stringer("reason", result.Reason),
		zap.Int("status", result.StatusCode),
		zap.Error(result.Err),
	)
	f.emitAudit(ctx, auditEventVerifyFailure, false, "", result.Reason.String(), result.Err)

	if clearErr != nil {
		f.metricInc(MetricStorageError)
		f.logger.Warn("credential clear failed", zap.Error(clearErr))
		return
	}
	if cleared {
		f.metricInc(MetricCredentialCleared)
		f.emitAudit(ctx, auditEventCredentialCleared, true, "", result.Reason.String(), nil)
	}
}

// IsAuthFailure reports whether err means the credential itself is bad, as opposed to
// the backend or storage being unreachable.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrCredentialRejected) || errors.Is(err, ErrCredentialExpired) || errors.Is(err, ErrNoCredential)
}
