// Package password provides password hashing and verification for shopgate.
//
// It implements Argon2id with a PHC-style encoded string format:
// - Argon2id parameters configurable via environment variables
// - min/max length policy validation
// - strict hash decoding with anti-DoS bounds during Verify
//
// Hash strings are treated as untrusted input during Verify; verification
// refuses hashes whose parameters exceed reasonable bounds.
package password
