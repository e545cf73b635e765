package identity

import (
	"crypto/rand"
	"encoding/base64"

	"shopgate/cmd/security/token"
)

// Email-verification code hashing:
//
// identity delegates code hashing to cmd/security/token as the single source
// of truth. Output is always a 64-char hex string.
//
// Recommendation (prod): set SHOPGATE_CODE_HMAC_KEY to a long random secret
// (>= 32 bytes).

// NewVerificationCode returns a cryptographically random one-time code.
// It is URL-safe (base64url) and is mailed to the customer; the server stores
// only a hash (see HashVerificationCodeHex).
func NewVerificationCode(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashVerificationCodeHex returns the server-stored hash for one-time codes.
// It uses HMAC-SHA256 if SHOPGATE_CODE_HMAC_KEY is set; otherwise SHA-256.
func HashVerificationCodeHex(code string) string {
	return token.HashVerificationCodeHex(code)
}
