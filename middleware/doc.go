// Package middleware adapts goOwner.Facade to net/http: an outgoing RoundTripper that
// decorates backend requests, and handler guards for the admin area.
//
// # Guards
//
//   - [RequireOwner] serves the handler for an authenticated owner, otherwise redirects
//     to the login page without an error message.
//   - [RequireVerifiedOwner] re-confirms the credential with the backend on every request.
//   - [RedirectIfOwner] sends an already authenticated owner away from the login page.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Facade calls. Every session decision is
// delegated to the Facade; nothing here reads storage or talks to the backend itself.
package middleware
