// Package registry is the shared revocation and rotation store: a key-value
// registry with per-key expiry that holds the single live refresh token per
// subject and the blacklist of revoked access tokens. All shared mutable
// state of the session core lives here; operations are atomic per key but
// never transactional across keys.
package registry

import (
	"context"
	"errors"
	"time"
)

// Key prefixes for the registry namespaces.
const (
	refreshTokenPrefix = "refresh_token:"
	blacklistPrefix    = "blacklist:"
)

// ErrUnavailable is returned when the registry cannot be reached. Callers
// must treat it as an infrastructure failure, never as "key absent".
var ErrUnavailable = errors.New("registry unavailable")

// RefreshTokenKey returns the registry key holding the currently valid
// refresh token for a subject (the user's normalized email).
func RefreshTokenKey(subject string) string {
	return refreshTokenPrefix + subject
}

// BlacklistKey returns the registry key marking an access token as revoked.
// The token literal itself is the key suffix.
func BlacklistKey(token string) string {
	return blacklistPrefix + token
}

// Store is the contract the session core consumes. Every call may block on
// network I/O, so callers pass the request context and must propagate
// cancellation.
type Store interface {
	// SetWithTTL writes value under key, overwriting any prior value, and
	// expires the key after ttl.
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value under key, or ok=false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Exists reports whether key currently holds a value.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
