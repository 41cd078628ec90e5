// Package goOwner provides the owner session facade for the storefront back-office: a
// single holder of the owner's bearer credential that gates the admin area and decorates
// every outgoing admin API request.
//
// The facade is a pure client. Credential issuance, verification, and every business rule
// live in the backend API; this package only exchanges credentials, persists the returned
// token through a [storage.Store], and reports a definite session state.
//
// Facade methods are safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// goOwner is the public surface. It exposes [Facade], [Builder], [Config], and value types
// ([VerifyResult], [LoginResult], [Snapshot], [MetricsSnapshot]). Persistence lives in
// storage/, token inspection in jwt/, HTTP adapters in middleware/, and the typed admin
// API in admin/.
//
// # Failure contract
//
//   - Verify never returns an error: every failure resolves to an anonymous session and a
//     structured [VerifyReason].
//   - Login reports failures to the caller with the backend's message, and never touches
//     the stored credential when it fails.
//   - Logout and AuthHeader never perform network I/O.
package goOwner
