package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled means the credentials were fine but the principal
	// is inactive.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrRefreshTokenInvalid means the presented refresh token is absent
	// from the registry or does not match the stored one. A rotated-away
	// token hits this even while its signature is still valid.
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
)
