package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edumanager/auth-server/auth"
	"github.com/edumanager/auth-server/internal/config"
	fakeregistry "github.com/edumanager/auth-server/registry/registryfake"
	"github.com/edumanager/auth-server/server"
	"github.com/edumanager/auth-server/token"
	"github.com/edumanager/auth-server/token/keys"
	"github.com/edumanager/auth-server/users"
	fakeuserrepo "github.com/edumanager/auth-server/users/repofake"
)

const (
	testEmail    = "jane.doe@school.example"
	testPassword = "Student123!"
)

var (
	serverKeyPairOnce sync.Once
	serverKeyPair     *keys.KeyPair
)

func serverKeys(t *testing.T) *keys.KeyPair {
	t.Helper()
	serverKeyPairOnce.Do(func() {
		kp, err := keys.GenerateRSAKeyPair(2048)
		if err != nil {
			t.Fatalf("generate key pair: %v", err)
		}
		serverKeyPair = kp
	})
	return serverKeyPair
}

type serverFixture struct {
	srv      *server.Server
	userRepo *fakeuserrepo.FakeUserRepo
	store    *fakeregistry.FakeStore
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()

	f := &serverFixture{
		userRepo: fakeuserrepo.NewFakeUserRepo(),
		store:    fakeregistry.NewFakeStore(),
	}

	cfg := &config.Config{
		Issuer:          "edu-manager",
		Audience:        "edu-manager-api",
		AccessValidity:  24 * time.Hour,
		RefreshValidity: 7 * 24 * time.Hour,
	}

	codec := token.NewCodec(token.NewKeyPairSigner(serverKeys(t)))

	issuer, err := token.NewIssuer(codec, f.store, cfg)
	require.NoError(t, err)

	validator, err := token.NewValidator(codec, f.store)
	require.NoError(t, err)

	sessions, err := auth.NewSessionService(
		auth.NewRepoVerifier(f.userRepo),
		f.userRepo,
		issuer,
		validator,
		f.store,
	)
	require.NoError(t, err)

	f.srv = server.New(sessions, validator, f.userRepo)

	hash, err := users.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, f.userRepo.Upsert(&users.User{
		Email:        testEmail,
		PasswordHash: hash,
		Name:         "Jane Doe",
		Role:         users.RoleStudent,
		Active:       true,
	}))

	return f
}

func (f *serverFixture) do(t *testing.T, method, path string, body any, authToken string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f *serverFixture) login(t *testing.T) auth.TokenPair {
	t.Helper()

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin, map[string]string{
		"email":    testEmail,
		"password": testPassword,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func TestLoginEndpointReturnsTokenPair(t *testing.T) {
	f := setupServer(t)

	pair := f.login(t)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, auth.TokenTypeBearer, pair.TokenType)
	require.Equal(t, int64(86400), pair.ExpiresIn)
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	f := setupServer(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogin, map[string]string{
		"email":    testEmail,
		"password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginEndpointMalformedBody(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuthLogin, bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileRequiresToken(t *testing.T) {
	f := setupServer(t)

	rec := f.do(t, http.MethodGet, server.RouteUserProfile, nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileWithValidToken(t *testing.T) {
	f := setupServer(t)
	pair := f.login(t)

	rec := f.do(t, http.MethodGet, server.RouteUserProfile, nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var user users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, testEmail, user.Email)
	require.Equal(t, users.RoleStudent, user.Role)
	require.Empty(t, user.PasswordHash)
}

func TestProfileWithGarbageToken(t *testing.T) {
	f := setupServer(t)

	rec := f.do(t, http.MethodGet, server.RouteUserProfile, nil, "not.a.token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpointRotatesToken(t *testing.T) {
	f := setupServer(t)
	pair := f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthRefresh, map[string]string{
		"refresh_token": pair.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var next auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	require.NotEmpty(t, next.AccessToken)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The superseded refresh token no longer matches the registry record.
	rec = f.do(t, http.MethodPost, server.RouteAuthRefresh, map[string]string{
		"refresh_token": pair.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpointMissingToken(t *testing.T) {
	f := setupServer(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthRefresh, map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutEndpointRevokesAccess(t *testing.T) {
	f := setupServer(t)
	pair := f.login(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogout, nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	// The revoked token no longer opens protected routes.
	rec = f.do(t, http.MethodGet, server.RouteUserProfile, nil, pair.AccessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out again with the same token stays a no-op.
	rec = f.do(t, http.MethodPost, server.RouteAuthLogout, nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutEndpointWithoutToken(t *testing.T) {
	f := setupServer(t)

	rec := f.do(t, http.MethodPost, server.RouteAuthLogout, nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegistryOutageMapsToServiceUnavailable(t *testing.T) {
	f := setupServer(t)
	pair := f.login(t)

	f.store.SetFailing(true)

	rec := f.do(t, http.MethodGet, server.RouteUserProfile, nil, pair.AccessToken)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}
