// Package internal holds helpers private to goOwner.
//
// # Sub-packages
//
//   - apierror: decodes the backend's {"detail": ...} error payloads
//   - backendtest: in-process stub of the storefront backend for tests and examples
//   - httpclient: the default *http.Client for backend calls
//
// Nothing here is part of the public goOwner API.
package internal
