// Package session implements shopgate's stateless session credential.
//
// A credential is a PASETO v4.public token (Ed25519-signed) carrying the
// customer's id, email and role. There is no server-side session table:
// verification is purely cryptographic, and the user record is re-loaded on
// every resolution so role changes and deactivation bite already-issued
// credentials.
//
// Credentials travel in an HttpOnly, SameSite=Strict cookie and live for a
// fixed seven days. Logout clears the cookie; there is no server-side
// revocation list, so a stolen credential stays valid until natural expiry.
package session
