// Package identity implements shopgate's user identity foundation.
//
// It contains the storefront's security principal (User + Role), the store
// interface used by the auth gate, and security primitives (ULID, password
// hashing, verification-code hashing).
//
// This package is intentionally dependency-light and security-first.
package identity
