package goOwner

import "errors"

var (
	// ErrNotAuthenticated is returned by helpers that require an authenticated owner session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoCredential reports that no credential is persisted.
	ErrNoCredential = errors.New("no stored credential")
	// ErrCredentialRejected reports that the backend answered a verify call with 4xx.
	ErrCredentialRejected = errors.New("credential rejected by backend")
	// ErrCredentialExpired reports a credential whose exp claim is in the past.
	ErrCredentialExpired = errors.New("credential expired")
	// ErrBackendUnavailable reports a 5xx answer or a transport failure.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrLoginFailed is the generic login failure.
	ErrLoginFailed = errors.New("login failed")
	// ErrMissingAccessToken reports a 2xx login answer without a token.
	ErrMissingAccessToken = errors.New("login response missing access token")
	// ErrStorageUnavailable reports a failing credential store.
	ErrStorageUnavailable = errors.New("credential storage unavailable")
	// ErrVerifySuperseded reports a verify round trip overtaken by a login or logout.
	ErrVerifySuperseded = errors.New("verify superseded by newer session change")
	// ErrFacadeNotReady is returned when a nil or unbuilt facade is used.
	ErrFacadeNotReady = errors.New("facade not initialized")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid config")
)

// DefaultLoginMessage is shown when the backend gives no usable error detail.
const DefaultLoginMessage = "Login failed"
