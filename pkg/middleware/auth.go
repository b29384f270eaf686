package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/catalog/pkg/response"
)

// RoleHeader carries the caller role asserted by a trusted upstream.
const RoleHeader = "X-User-Role"

type roleKey struct{}

// RoleAuthOptions configures RoleAuth.
type RoleAuthOptions struct {
	// Roles lists the accepted role names in lower case.
	Roles []string
	// VerifyToken resolves a bearer token to a role. Nil disables bearer tokens.
	VerifyToken func(token string) (string, error)
}

// RoleAuth resolves the caller role and stores it in the request context.
// The X-User-Role header wins; without it a bearer token is tried. A missing
// or unknown role is answered with 401.
func RoleAuth(opts RoleAuthOptions) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(opts.Roles))
	for _, r := range opts.Roles {
		known[strings.ToLower(r)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(RoleHeader)
			if raw == "" && opts.VerifyToken != nil {
				if token := bearerToken(r); token != "" {
					role, err := opts.VerifyToken(token)
					if err != nil {
						response.Unauthorized(w, "Invalid token")
						return
					}
					raw = role
				}
			}

			if raw == "" {
				response.Unauthorized(w, "X-User-Role header is missing")
				return
			}

			role := strings.ToLower(strings.TrimSpace(raw))
			if !known[role] {
				response.Unauthorized(w, "Invalid role value")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// WithRole stores role in ctx.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the role stored by RoleAuth.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey{}).(string)
	return role, ok && role != ""
}

// RoleFromCtx returns the role stored on r by RoleAuth.
func RoleFromCtx(r *http.Request) (string, bool) {
	return RoleFromContext(r.Context())
}
