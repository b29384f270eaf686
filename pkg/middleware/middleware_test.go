package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/pkg/middleware"
)

func roleEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := middleware.RoleFromCtx(r)
		_, _ = io.WriteString(w, role)
	})
}

func errorDetails(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   struct {
			Code    string `json:"code"`
			Details string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code, body.Error.Details
}

func TestRoleAuthHeader(t *testing.T) {
	h := middleware.RoleAuth(middleware.RoleAuthOptions{Roles: []string{"admin", "user"}})(roleEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RoleHeader, "ADMIN")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String(), "role is lower-cased")
}

func TestRoleAuthMissingAndInvalid(t *testing.T) {
	h := middleware.RoleAuth(middleware.RoleAuthOptions{Roles: []string{"admin", "user"}})(roleEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, details := errorDetails(t, rec)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.Equal(t, "X-User-Role header is missing", details)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RoleHeader, "superuser")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, details = errorDetails(t, rec)
	assert.Equal(t, "Invalid role value", details)
}

func TestRoleAuthBearerToken(t *testing.T) {
	opts := middleware.RoleAuthOptions{
		Roles: []string{"admin", "user"},
		VerifyToken: func(token string) (string, error) {
			if token == "good" {
				return "user", nil
			}
			return "", errors.New("bad token")
		},
	}
	h := middleware.RoleAuth(opts)(roleEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "user", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The header takes precedence over a token.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	req.Header.Set(middleware.RoleHeader, "admin")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestRateLimit(t *testing.T) {
	h := middleware.RateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))

	rec = send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	code, _ := errorDetails(t, rec)
	assert.Equal(t, "TOO_MANY_REQUESTS", code)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code, "limits are per client")
}

func TestSanitizeBodyAndQuery(t *testing.T) {
	var gotBody map[string]any
	var gotQuery string
	h := middleware.Sanitize(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
	}))

	body := `{"name":"  <b>Desk</b> lamp <script>alert(1)</script> ","category":"Tom & Jerry","price":19.99,"tags":[" a "]}`
	req := httptest.NewRequest(http.MethodPost, "/?search=%20%3Ci%3Elamp%3C/i%3E%20", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "Desk lamp", gotBody["name"])
	assert.Equal(t, "Tom & Jerry", gotBody["category"])
	assert.Equal(t, 19.99, gotBody["price"])
	assert.Equal(t, []any{"a"}, gotBody["tags"])
	assert.Equal(t, "lamp", gotQuery)
}

func TestSanitizeLeavesMalformedJSON(t *testing.T) {
	var got string
	h := middleware.Sanitize(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"name":`, got)
}

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	code, _ := errorDetails(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS(middleware.DefaultCORSOptions())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-Role")
}

func TestCORSRestrictedOrigins(t *testing.T) {
	opts := middleware.DefaultCORSOptions()
	opts.AllowedOrigins = []string{"https://shop.example.com"}
	h := middleware.CORS(opts)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
