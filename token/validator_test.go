package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edumanager/auth-server/registry"
	fakeregistry "github.com/edumanager/auth-server/registry/registryfake"
	"github.com/edumanager/auth-server/token"
	"github.com/edumanager/auth-server/users"
)

type validatorFixture struct {
	codec     *token.Codec
	store     *fakeregistry.FakeStore
	issuer    *token.Issuer
	validator *token.Validator
	now       time.Time
}

func setupValidator(t *testing.T) *validatorFixture {
	t.Helper()

	f := &validatorFixture{
		codec: token.NewCodec(token.NewKeyPairSigner(testKeyPair(t))),
		store: fakeregistry.NewFakeStore(),
		now:   time.Now(),
	}
	nowFunc := func() time.Time { return f.now }
	f.store.SetNowFunc(nowFunc)

	issuer, err := token.NewIssuer(f.codec, f.store, testConfig(), token.WithIssuerNowFunc(nowFunc))
	require.NoError(t, err)
	f.issuer = issuer

	validator, err := token.NewValidator(f.codec, f.store, token.WithValidatorNowFunc(nowFunc))
	require.NoError(t, err)
	f.validator = validator

	return f
}

func TestValidatorAcceptsFreshToken(t *testing.T) {
	f := setupValidator(t)
	ctx := context.Background()

	accessToken, err := f.issuer.IssueAccessToken(testUser(), users.RoleParent.Authority())
	require.NoError(t, err)

	require.True(t, f.validator.IsUsable(ctx, accessToken))

	claims, err := f.validator.Validate(ctx, accessToken)
	require.NoError(t, err)
	require.Equal(t, "parent@school.example", claims.Subject)
}

func TestValidatorRejectsExpiredToken(t *testing.T) {
	f := setupValidator(t)
	ctx := context.Background()

	accessToken, err := f.issuer.IssueAccessToken(testUser(), users.RoleParent.Authority())
	require.NoError(t, err)

	f.now = f.now.Add(24*time.Hour + time.Second)

	_, err = f.validator.Validate(ctx, accessToken)
	require.ErrorIs(t, err, token.ErrTokenExpired)
	require.False(t, f.validator.IsUsable(ctx, accessToken))
}

func TestValidatorRejectsBlacklistedToken(t *testing.T) {
	f := setupValidator(t)
	ctx := context.Background()

	accessToken, err := f.issuer.IssueAccessToken(testUser(), users.RoleParent.Authority())
	require.NoError(t, err)

	require.NoError(t, f.store.SetWithTTL(ctx, registry.BlacklistKey(accessToken), "true", time.Hour))

	_, err = f.validator.Validate(ctx, accessToken)
	require.ErrorIs(t, err, token.ErrTokenBlacklisted)
}

func TestValidatorExpiryBeatsBlacklistLookup(t *testing.T) {
	f := setupValidator(t)
	ctx := context.Background()

	accessToken, err := f.issuer.IssueAccessToken(testUser(), users.RoleParent.Authority())
	require.NoError(t, err)

	// Store down, token expired: the local expiry check short-circuits
	// before the registry round trip.
	f.store.SetFailing(true)
	f.now = f.now.Add(25 * time.Hour)

	_, err = f.validator.Validate(ctx, accessToken)
	require.ErrorIs(t, err, token.ErrTokenExpired)
}

func TestValidatorFailsClosedOnStoreError(t *testing.T) {
	f := setupValidator(t)
	ctx := context.Background()

	accessToken, err := f.issuer.IssueAccessToken(testUser(), users.RoleParent.Authority())
	require.NoError(t, err)

	f.store.SetFailing(true)
	require.False(t, f.validator.IsUsable(ctx, accessToken))

	_, err = f.validator.Validate(ctx, accessToken)
	require.ErrorIs(t, err, registry.ErrUnavailable)
}

func TestValidatorSubjectOf(t *testing.T) {
	f := setupValidator(t)

	accessToken, err := f.issuer.IssueAccessToken(testUser(), users.RoleParent.Authority())
	require.NoError(t, err)

	subject, err := f.validator.SubjectOf(accessToken)
	require.NoError(t, err)
	require.Equal(t, "parent@school.example", subject)

	_, err = f.validator.SubjectOf("nonsense")
	require.ErrorIs(t, err, token.ErrMalformedToken)
}
