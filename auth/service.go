package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/edumanager/auth-server/registry"
	"github.com/edumanager/auth-server/token"
	"github.com/edumanager/auth-server/users"
)

// TokenTypeBearer is the token-type label returned with every pair.
const TokenTypeBearer = "Bearer"

// TokenPair is what a successful login or refresh hands back to the caller.
// It is ephemeral: beyond the refresh token's registry record, nothing here
// is persisted by the session core.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionService orchestrates the session lifecycle: login, refresh-token
// rotation, and logout. Per subject the session moves Anonymous →
// Authenticated → Refreshed* → Revoked; all shared state across those
// transitions lives in the registry, so the service itself is safe for
// concurrent use.
type SessionService struct {
	verifier  CredentialVerifier
	userRepo  users.UserRepo
	issuer    *token.Issuer
	validator *token.Validator
	store     registry.Store
	nowFunc   func() time.Time
}

// SessionServiceOption modifies a SessionService during construction.
type SessionServiceOption func(*SessionService)

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) SessionServiceOption {
	return func(s *SessionService) {
		s.nowFunc = now
	}
}

func NewSessionService(
	verifier CredentialVerifier,
	userRepo users.UserRepo,
	issuer *token.Issuer,
	validator *token.Validator,
	store registry.Store,
	options ...SessionServiceOption,
) (*SessionService, error) {
	if verifier == nil {
		return nil, errors.New("[NewSessionService] verifier is required")
	}
	if userRepo == nil {
		return nil, errors.New("[NewSessionService] user repo is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewSessionService] issuer is required")
	}
	if validator == nil {
		return nil, errors.New("[NewSessionService] validator is required")
	}
	if store == nil {
		return nil, errors.New("[NewSessionService] store is required")
	}

	service := &SessionService{
		verifier:  verifier,
		userRepo:  userRepo,
		issuer:    issuer,
		validator: validator,
		store:     store,
		nowFunc:   time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Login verifies the credentials and issues a fresh token pair. The
// authorities embedded in the access token come from the stored role, never
// from the request. Fails with ErrInvalidCredentials or ErrAccountDisabled.
func (s *SessionService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if !user.Active {
		return nil, ErrAccountDisabled
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionService.Login] issue pair")
	}

	log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("user logged in")

	return pair, nil
}

// Refresh rotates a refresh token: the presented token must match the
// registry record for its subject by exact string equality, which is the
// anti-replay guard. A rotated-away token fails here even though its
// signature is still valid and unexpired; the registry is authoritative
// over cryptographic validity for refresh tokens.
//
// Two concurrent calls with the same still-valid token can both pass the
// equality check before either overwrites the record; both then receive
// distinct pairs but only the later overwrite's refresh token survives in
// the registry. The losing pair's refresh token self-invalidates on its next
// use. This race is accepted: its impact is bounded and the store offers no
// efficient cross-key transaction.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	subject, err := s.validator.SubjectOf(refreshToken)
	if err != nil {
		return nil, err
	}

	stored, ok, err := s.store.Get(ctx, registry.RefreshTokenKey(subject))
	if err != nil {
		return nil, errors.Wrap(err, "[SessionService.Refresh] registry get")
	}
	// An expired refresh token never reaches a mismatch here: its record's
	// TTL equals the token validity, so the record is already gone.
	if !ok || stored != refreshToken {
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.GetByEmail(subject)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, errors.Wrap(err, "[SessionService.Refresh] load principal")
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "[SessionService.Refresh] issue pair")
	}

	log.Info().Str("email", user.Email).Msg("refresh token rotated")

	return pair, nil
}

// Logout revokes the access token for the remainder of its lifetime and
// deletes the subject's refresh record. Both writes must persist: a registry
// failure is surfaced rather than reported as a successful logout, since a
// revocation that did not stick would leave the token live. Logging out
// twice with the same token just re-marks the same key.
func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.validator.Decode(accessToken)
	if err != nil {
		return err
	}
	if claims.ExpiresAt == nil {
		return token.ErrMalformedToken
	}

	remaining := claims.ExpiresAt.Time.Sub(s.nowFunc())
	if remaining > 0 {
		// TTL equals the remaining lifetime so the mark never outlives
		// the token it marks.
		if err := s.store.SetWithTTL(ctx, registry.BlacklistKey(accessToken), "true", remaining); err != nil {
			return errors.Wrap(err, "[SessionService.Logout] blacklist")
		}
	}

	if err := s.store.Delete(ctx, registry.RefreshTokenKey(claims.Subject)); err != nil {
		return errors.Wrap(err, "[SessionService.Logout] delete refresh record")
	}

	log.Info().Str("email", claims.Subject).Msg("user logged out")

	return nil
}

func (s *SessionService) issuePair(ctx context.Context, user *users.User) (*TokenPair, error) {
	accessToken, err := s.issuer.IssueAccessToken(user, user.Role.Authority())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issuer.IssueRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.issuer.AccessValidity().Seconds()),
	}, nil
}
