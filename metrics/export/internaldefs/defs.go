package internaldefs

import (
	goOwner "github.com/MrEthical07/goOwner"
)

// CounterDef names one facade counter for export.
type CounterDef struct {
	ID   goOwner.MetricID
	Name string
	Help string
}

// HistogramDef names one facade histogram for export.
type HistogramDef struct {
	ID   goOwner.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in render order.
var CounterDefs = []CounterDef{
	{ID: goOwner.MetricLoginSuccess, Name: "goowner_login_success_total", Help: "Logins that stored a credential."},
	{ID: goOwner.MetricLoginFailure, Name: "goowner_login_failure_total", Help: "Logins rejected by the backend."},
	{ID: goOwner.MetricLoginError, Name: "goowner_login_error_total", Help: "Logins that failed on transport, response shape or storage."},
	{ID: goOwner.MetricVerifySuccess, Name: "goowner_verify_success_total", Help: "Verifications that ended authenticated."},
	{ID: goOwner.MetricVerifyFailure, Name: "goowner_verify_failure_total", Help: "Verifications that ended anonymous."},
	{ID: goOwner.MetricVerifySkipped, Name: "goowner_verify_skipped_total", Help: "Verifications with no stored credential."},
	{ID: goOwner.MetricVerifySuperseded, Name: "goowner_verify_superseded_total", Help: "Verifications overtaken by a login or logout."},
	{ID: goOwner.MetricVerifyLocal, Name: "goowner_verify_local_total", Help: "Verifications settled from token claims without a round trip."},
	{ID: goOwner.MetricLogout, Name: "goowner_logout_total", Help: "Logout calls."},
	{ID: goOwner.MetricCredentialCleared, Name: "goowner_credential_cleared_total", Help: "Stored credentials removed after failed verification."},
	{ID: goOwner.MetricStorageError, Name: "goowner_storage_error_total", Help: "Failed credential store operations."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goOwner.MetricBackendLatency, Name: "goowner_backend_latency_seconds", Help: "Login and verify round-trip latency."},
}

// HistogramBounds are the upper bounds of the facade's latency buckets, in seconds.
var HistogramBounds = []string{
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramBoundSuffix spells HistogramBounds for use inside instrument names.
var HistogramBoundSuffix = []string{
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "goowner_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// NormalizeBuckets copies raw into a fixed array, zero-filling missing buckets.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
