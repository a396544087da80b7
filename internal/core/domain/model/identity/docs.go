// Package identity holds the credential records that API callers authenticate
// with: a public key identifier, a shared secret used for HMAC-SHA256 request
// signatures, an active flag and an optional IP allowlist.
//
// Identities are provisioned administratively and only ever deactivated by the
// core; the secret is never returned by any read path after creation.
package identity
