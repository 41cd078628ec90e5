package goOwner

import (
	"context"
	"errors"

	"github.com/MrEthical07/goOwner/internal/apierror"
)

const (
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventVerifySuccess     = "verify_success"
	auditEventVerifyFailure     = "verify_failure"
	auditEventVerifySkipped     = "verify_skipped"
	auditEventLogout            = "logout"
	auditEventCredentialCleared = "credential_cleared"
)

const (
	auditReasonRejected     = "rejected"
	auditReasonUnavailable  = "backend_unavailable"
	auditReasonMissingToken = "missing_token"
	auditReasonStorage      = "storage_unavailable"
	auditReasonInternal     = "internal_error"
)

// AuditErrorCode is the stable error classification recorded on audit events.
type AuditErrorCode string

const (
	auditErrRejected     AuditErrorCode = "rejected"
	auditErrExpired      AuditErrorCode = "expired"
	auditErrUnavailable  AuditErrorCode = "backend_unavailable"
	auditErrMissingToken AuditErrorCode = "missing_token"
	auditErrStorage      AuditErrorCode = "storage_unavailable"
	auditErrInternal     AuditErrorCode = "internal_error"
)

func auditReasonFor(err error) string {
	switch {
	case errors.Is(err, ErrBackendUnavailable):
		return auditReasonUnavailable
	case errors.Is(err, ErrMissingAccessToken):
		return auditReasonMissingToken
	case errors.Is(err, ErrStorageUnavailable):
		return auditReasonStorage
	default:
		return auditReasonInternal
	}
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}
	var apiErr *apierror.Error
	switch {
	case errors.Is(err, ErrCredentialRejected), errors.As(err, &apiErr) && apiErr.ClientError():
		return auditErrRejected
	case errors.Is(err, ErrCredentialExpired):
		return auditErrExpired
	case errors.Is(err, ErrBackendUnavailable), apiErr != nil:
		return auditErrUnavailable
	case errors.Is(err, ErrMissingAccessToken):
		return auditErrMissingToken
	case errors.Is(err, ErrStorageUnavailable):
		return auditErrStorage
	default:
		return auditErrInternal
	}
}

// emitAudit records an event. identifier is the login e-mail when known; the secret and
// the credential are never recorded.
func (f *Facade) emitAudit(ctx context.Context, eventType string, success bool, identifier, reason string, err error) {
	if f == nil || f.audit == nil {
		return
	}
	requestID, _ := RequestIDFromContext(ctx)

	event := AuditEvent{
		Timestamp:  f.now().UTC(),
		EventType:  eventType,
		RequestID:  requestID,
		Identifier: identifier,
		Success:    success,
		Reason:     reason,
		Error:      string(auditErrorCode(err)),
		Metadata: map[string]string{
			"mode": f.config.Verify.Mode.String(),
		},
	}

	f.audit.Emit(ctx, event)
}
