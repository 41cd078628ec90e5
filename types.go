package goOwner

import "fmt"

// State is the facade's position in the session state machine.
//
//	Anonymous     --login ok-->         Authenticated
//	Authenticated --logout-->           Anonymous
//	Verifying     --no credential-->    Anonymous
//	Verifying     --verify ok-->        Authenticated
//	Verifying     --verify failure-->   Anonymous
//	Authenticated --verify failure-->   Anonymous
type State uint8

const (
	// StateVerifying is held from construction until the first Verify settles. Later
	// Verify calls keep the current state while their round trip runs.
	StateVerifying State = iota
	// StateAnonymous means no trusted credential.
	StateAnonymous
	// StateAuthenticated means the credential was confirmed or freshly issued.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateVerifying:
		return "verifying"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// VerifyReason explains how a Verify call resolved.
type VerifyReason uint8

const (
	// VerifyNoCredential: nothing stored, no network call made.
	VerifyNoCredential VerifyReason = iota
	// VerifyConfirmed: the backend accepted the credential.
	VerifyConfirmed
	// VerifyTrustedLocal: an unexpired JWT was trusted without a round trip (ModeLocal).
	VerifyTrustedLocal
	// VerifyRejected: the backend answered 4xx.
	VerifyRejected
	// VerifyExpired: the credential's exp claim is in the past.
	VerifyExpired
	// VerifyBackendError: the backend answered 5xx or something unexpected.
	VerifyBackendError
	// VerifyNetworkError: the request never completed.
	VerifyNetworkError
	// VerifyStorageError: the credential store failed.
	VerifyStorageError
	// VerifySuperseded: a login or logout finished while the round trip was in flight.
	VerifySuperseded
)

func (r VerifyReason) String() string {
	switch r {
	case VerifyNoCredential:
		return "no_credential"
	case VerifyConfirmed:
		return "confirmed"
	case VerifyTrustedLocal:
		return "trusted_local"
	case VerifyRejected:
		return "rejected"
	case VerifyExpired:
		return "expired"
	case VerifyBackendError:
		return "backend_error"
	case VerifyNetworkError:
		return "network_error"
	case VerifyStorageError:
		return "storage_error"
	case VerifySuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("VerifyReason(%d)", uint8(r))
	}
}

// VerifyResult is the outcome of Facade.Verify. Err carries the underlying cause for
// observability and is never meant to be surfaced to the owner.
type VerifyResult struct {
	Authenticated bool
	Reason        VerifyReason
	StatusCode    int
	Err           error
}

// LoginResult is the outcome of Facade.Login. Message is suitable for display; Err keeps
// the classified cause (ErrLoginFailed, ErrBackendUnavailable, ErrMissingAccessToken,
// ErrStorageUnavailable) for callers that branch on it.
type LoginResult struct {
	Success    bool
	Message    string
	StatusCode int
	Err        error
}

// Snapshot is a point-in-time copy of the session cell.
type Snapshot struct {
	State         State
	Authenticated bool
	Verifying     bool
	// VerifyPending reports a Verify round trip in flight. State is not changed by it.
	VerifyPending bool
	// LastVerify is the result of the most recent settled Verify. Login does not touch it.
	LastVerify VerifyResult
}
