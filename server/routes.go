package server

// Route paths exposed by the auth API.
const (
	RouteAuthLogin   = "/api/auth/login"
	RouteAuthRefresh = "/api/auth/refresh"
	RouteAuthLogout  = "/api/auth/logout"
	RouteUserProfile = "/api/users/profile"
)

func (s *Server) initRoutes() {
	s.registerRoute(RouteAuthLogin, s.LoginHandler())
	s.registerRoute(RouteAuthRefresh, s.RefreshHandler())
	// Logout stays unguarded so a second logout with an already-blacklisted
	// token remains a no-op instead of a 401.
	s.registerRoute(RouteAuthLogout, s.LogoutHandler())
	s.registerRoute(RouteUserProfile, s.Protect(s.ProfileHandler()))
}
