package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/edumanager/auth-server/internal/config"
	"github.com/edumanager/auth-server/registry"
	"github.com/edumanager/auth-server/users"
)

// Issuer creates access and refresh tokens for authenticated principals.
// Access issuance is pure; refresh issuance additionally records the token in
// the registry so it can be rotated and revoked.
type Issuer struct {
	codec           *Codec
	store           registry.Store
	issuer          string
	audience        string
	accessValidity  time.Duration
	refreshValidity time.Duration
	nowFunc         func() time.Time
}

// IssuerOption modifies an Issuer during construction.
type IssuerOption func(*Issuer)

// WithIssuerNowFunc sets the clock (primarily for testing).
func WithIssuerNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(codec *Codec, store registry.Store, cfg *config.Config, options ...IssuerOption) (*Issuer, error) {
	if codec == nil {
		return nil, errors.New("[NewIssuer] codec is required")
	}
	if store == nil {
		return nil, errors.New("[NewIssuer] store is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewIssuer] config is required")
	}

	issuer := &Issuer{
		codec:           codec,
		store:           store,
		issuer:          cfg.Issuer,
		audience:        cfg.Audience,
		accessValidity:  cfg.AccessValidity,
		refreshValidity: cfg.RefreshValidity,
		nowFunc:         time.Now,
	}

	for _, opt := range options {
		opt(issuer)
	}

	return issuer, nil
}

// IssueAccessToken builds and signs an access token for the principal. The
// authorities string comes from the stored role, derived by the caller.
func (i *Issuer) IssueAccessToken(user *users.User, authorities string) (string, error) {
	now := i.nowFunc()

	claims := &Claims{
		Authorities: authorities,
		UserID:      user.ID,
		Email:       user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.Email,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessValidity)),
			ID:        uuid.New().String(),
		},
	}

	accessToken, err := i.codec.Encode(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueAccessToken] encode")
	}

	return accessToken, nil
}

// IssueRefreshToken builds, signs, and records a refresh token. The registry
// holds at most one live refresh token per subject: the write unconditionally
// overwrites any prior record, which invalidates it. A failed write aborts
// issuance so the caller never receives a token that was not durably
// recorded.
func (i *Issuer) IssueRefreshToken(ctx context.Context, user *users.User) (string, error) {
	now := i.nowFunc()

	claims := &Claims{
		UserID:    user.ID,
		TokenType: string(KindRefresh),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.Email,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshValidity)),
		},
	}

	refreshToken, err := i.codec.Encode(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueRefreshToken] encode")
	}

	key := registry.RefreshTokenKey(user.Email)
	if err := i.store.SetWithTTL(ctx, key, refreshToken, i.refreshValidity); err != nil {
		return "", errors.Wrap(err, "[Issuer.IssueRefreshToken] persist")
	}

	return refreshToken, nil
}

// AccessValidity returns the configured access token lifetime.
func (i *Issuer) AccessValidity() time.Duration {
	return i.accessValidity
}
