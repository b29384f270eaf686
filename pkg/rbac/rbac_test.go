package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/rbac"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestHasRole(t *testing.T) {
	h := rbac.HasRole("admin")(ok)

	tests := []struct {
		name   string
		role   string
		status int
		body   string
	}{
		{"admin passes", "admin", http.StatusNoContent, ""},
		{"user forbidden", "user", http.StatusForbidden, `"details":"admin role required"`},
		{"no role unauthorized", "", http.StatusUnauthorized, `"code":"UNAUTHORIZED"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				req = req.WithContext(middleware.WithRole(req.Context(), tt.role))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestAllows(t *testing.T) {
	assert.True(t, rbac.Allows("admin", "admin", "user"))
	assert.False(t, rbac.Allows("guest", "admin"))
}
