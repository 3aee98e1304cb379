package token

import "errors"

// Token-shape and usability errors. The HTTP boundary translates these into
// user-facing responses; the session core surfaces them as-is.
var (
	// ErrMalformedToken means the token string is not a structurally valid
	// compact JWT.
	ErrMalformedToken = errors.New("malformed token")

	// ErrSignatureInvalid means the token did not verify against the
	// service's public key, or was signed with the wrong algorithm.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenExpired means the token's exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenBlacklisted means the token was revoked by logout before its
	// natural expiry.
	ErrTokenBlacklisted = errors.New("token blacklisted")
)
