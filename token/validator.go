package token

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/edumanager/auth-server/registry"
)

// Validator decides whether a presented token is currently usable. The checks
// run cheapest first: signature and structure locally, then expiry from the
// decoded claims, and only then the blacklist lookup, which costs a registry
// round trip.
type Validator struct {
	codec   *Codec
	store   registry.Store
	nowFunc func() time.Time
}

// ValidatorOption modifies a Validator during construction.
type ValidatorOption func(*Validator)

// WithValidatorNowFunc sets the clock (primarily for testing).
func WithValidatorNowFunc(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.nowFunc = now
	}
}

func NewValidator(codec *Codec, store registry.Store, options ...ValidatorOption) (*Validator, error) {
	if codec == nil {
		return nil, errors.New("[NewValidator] codec is required")
	}
	if store == nil {
		return nil, errors.New("[NewValidator] store is required")
	}

	validator := &Validator{
		codec:   codec,
		store:   store,
		nowFunc: time.Now,
	}

	for _, opt := range options {
		opt(validator)
	}

	return validator, nil
}

// Validate runs the full usability check chain and returns the decoded
// claims, or ErrMalformedToken, ErrSignatureInvalid, ErrTokenExpired,
// ErrTokenBlacklisted, or registry.ErrUnavailable.
func (v *Validator) Validate(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := v.codec.Decode(tokenStr)
	if err != nil {
		return nil, err
	}

	if claims.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}
	if !v.nowFunc().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	blacklisted, err := v.store.Exists(ctx, registry.BlacklistKey(tokenStr))
	if err != nil {
		return nil, errors.Wrap(err, "[Validator.Validate] blacklist check")
	}
	if blacklisted {
		return nil, ErrTokenBlacklisted
	}

	return claims, nil
}

// IsUsable reports whether the token passes every check in Validate. Registry
// failures read as unusable, which fails closed.
func (v *Validator) IsUsable(ctx context.Context, tokenStr string) bool {
	_, err := v.Validate(ctx, tokenStr)
	return err == nil
}

// Decode returns the claims without running usability checks. For callers
// that already validated the token, or that need claims from a token whose
// usability is decided elsewhere (refresh rotation, logout).
func (v *Validator) Decode(tokenStr string) (*Claims, error) {
	return v.codec.Decode(tokenStr)
}

// SubjectOf decodes the token and returns its subject claim.
func (v *Validator) SubjectOf(tokenStr string) (string, error) {
	claims, err := v.codec.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
