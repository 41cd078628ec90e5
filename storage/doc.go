// Package storage persists small string values (the owner credential, the storefront
// cart) behind a key/value [Store] so session logic runs the same against process memory,
// a file in the user's config directory, or a shared Redis.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT interpret tokens, decide whether a
// session is authenticated, or talk to the backend API.
//
// # What this package must NOT do
//
//   - Import goOwner, jwt, or admin (no upward imports).
//   - Log or otherwise expose stored values.
package storage
