// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/response"
)

// HasRole returns middleware that allows access only to callers with one of
// the given roles. middleware.RoleAuth must have run first; without a role in
// context the request is treated as unauthenticated.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	details := strings.Join(roles, " or ") + " role required"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w, middleware.RoleHeader+" header is missing")
				return
			}
			if !allowed[role] {
				response.Forbidden(w, details)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allows reports whether role is one of roles. Used where middleware cannot
// run, such as GraphQL resolvers.
func Allows(role string, roles ...string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
