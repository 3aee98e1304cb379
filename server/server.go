package server

import (
	"net/http"

	"github.com/edumanager/auth-server/auth"
	"github.com/edumanager/auth-server/token"
	"github.com/edumanager/auth-server/users"
)

// Server is the thin HTTP boundary over the session core. It owns route
// registration, bearer extraction, and error translation; every decision
// about credentials and tokens is delegated downward.
type Server struct {
	mux       *http.ServeMux
	sessions  *auth.SessionService
	validator *token.Validator
	userRepo  users.UserRepo
	guard     *Guard
}

func New(sessions *auth.SessionService, validator *token.Validator, userRepo users.UserRepo) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		sessions:  sessions,
		validator: validator,
		userRepo:  userRepo,
		guard:     NewGuard(DefaultPublicPaths...),
	}

	s.initRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoute(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}
