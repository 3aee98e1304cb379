package server

import "strings"

// DefaultPublicPaths lists the request paths that skip token validation,
// checked in order before the Validator runs. A trailing "/**" matches the
// whole subtree; everything else is an exact match.
var DefaultPublicPaths = []string{
	RouteAuthLogin,
	RouteAuthRefresh,
	"/api/auth/signup",
	"/api/auth/check-email",
	"/swagger-ui/**",
	"/v3/api-docs/**",
	"/actuator/**",
}

// Guard answers whether a path is publicly accessible, using a plain
// ordered pattern list.
type Guard struct {
	patterns []string
}

func NewGuard(patterns ...string) *Guard {
	return &Guard{patterns: patterns}
}

// IsPublic checks the path against each pattern in order.
func (g *Guard) IsPublic(path string) bool {
	for _, pattern := range g.patterns {
		if matchPath(pattern, path) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}
