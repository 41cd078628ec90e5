// Package jwt reads and issues the backend's HS256 owner tokens.
//
// Clients never hold the signing secret, so [Inspect] decodes claims without verifying
// the signature; its only use is deciding, from the exp claim, whether a stored credential
// is worth a verify round trip. [Manager] signs and verifies tokens exactly like the
// backend does and exists for stub backends and tests.
package jwt
