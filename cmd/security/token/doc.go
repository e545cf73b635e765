// Package token provides one-time-code hashing primitives for shopgate.
//
// It is the single source of truth for email-verification code hashing:
// codes are mailed to the customer in plaintext and stored server-side only
// as a digest.
//
// Behavior:
// - Default dev mode: SHA-256(code) when no HMAC key is configured.
// - Production-enforced mode: HMAC-SHA256(code, key) when policy requires it.
// - Stable 64-char hex output for storage and constant-time comparison.
//
// Environment:
// - SHOPGATE_CODE_HMAC_KEY: when set, enables HMAC mode.
//
// Policy: if RequireCodeHMAC=true, callers MUST enforce a minimum key size
// (>= 32 bytes) and MUST use HMAC (no SHA fallback).
package token
