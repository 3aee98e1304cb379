package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/edumanager/auth-server/auth"
	"github.com/edumanager/auth-server/registry"
	"github.com/edumanager/auth-server/token"
	"github.com/edumanager/auth-server/users"
)

const contentTypeJSON = "application/json; charset=utf-8"

var errMissingBearer = errors.New("missing bearer token")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// LoginHandler authenticates credentials and returns a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		pair, err := s.sessions.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}

// RefreshHandler rotates a refresh token and returns the new pair.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "refresh_token is required"})
			return
		}

		pair, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, pair)
	}
}

// LogoutHandler revokes the presented access token.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		tokenStr, ok := bearerToken(r)
		if !ok {
			writeError(w, errMissingBearer)
			return
		}

		if err := s.sessions.Logout(r.Context(), tokenStr); err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// ProfileHandler returns the authenticated principal. It exists to give the
// Protect middleware a protected resource.
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, errMissingBearer)
			return
		}

		user, err := s.userRepo.GetByEmail(claims.Subject)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response body")
	}
}

// writeError translates the error taxonomy into HTTP responses. Registry
// unavailability maps to 503 so clients can retry with backoff; everything
// credential- or token-shaped maps to 401/403.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrRefreshTokenInvalid),
		errors.Is(err, token.ErrMalformedToken),
		errors.Is(err, token.ErrSignatureInvalid),
		errors.Is(err, token.ErrTokenExpired),
		errors.Is(err, token.ErrTokenBlacklisted),
		errors.Is(err, errMissingBearer):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	case errors.Is(err, auth.ErrAccountDisabled):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "account disabled"})
	case errors.Is(err, users.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, registry.ErrUnavailable):
		log.Err(err).Msg("registry unavailable")
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service unavailable"})
	default:
		log.Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
