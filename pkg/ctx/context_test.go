package ctx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/pkg/apperr"
	appctx "github.com/shashiranjanraj/catalog/pkg/ctx"
	"github.com/shashiranjanraj/catalog/pkg/response"
)

type body struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination map[string]any  `json:"pagination"`
	Error      *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func serve(h appctx.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Success("Product retrieved successfully", map[string]any{"id": "1"})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	b := decode(t, rec)
	assert.True(t, b.Success)
	assert.Equal(t, "Product retrieved successfully", b.Message)
	assert.JSONEq(t, `{"id":"1"}`, string(b.Data))
	assert.Nil(t, b.Error)
	assert.Nil(t, b.Pagination)
}

func TestPaginatedEnvelope(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Paginated("Products retrieved successfully", []string{}, response.Pagination{
			CurrentPage: 2, TotalPages: 3, TotalItems: 25, ItemsPerPage: 10, HasNextPage: true, HasPreviousPage: true,
		})
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	b := decode(t, rec)
	assert.Equal(t, float64(2), b.Pagination["currentPage"])
	assert.Equal(t, float64(25), b.Pagination["totalItems"])
	assert.Equal(t, true, b.Pagination["hasNextPage"])
}

func TestBindJSONValid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lamp","sku":"ab-1"}`))
	rec := serve(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
			SKU  string `json:"sku"  validate:"required,min=3"`
		}
		require.True(t, c.BindJSON(&input))
		assert.Equal(t, "Lamp", input.Name)
		c.Success("ok", nil)
	}, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBindJSONValidationFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	rec := serve(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name" validate:"required"`
		}
		assert.False(t, c.BindJSON(&input))
	}, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	b := decode(t, rec)
	assert.False(t, b.Success)
	assert.Equal(t, "Validation failed", b.Message)
	require.NotNil(t, b.Error)
	assert.Equal(t, "VALIDATION_ERROR", b.Error.Code)
	assert.JSONEq(t, `[{"field":"name","message":"The name field is required."}]`, string(b.Error.Details))
}

func TestBindJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Lamp","sku":"X"}`))
	rec := serve(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name"`
		}
		assert.False(t, c.BindJSON(&input))
	}, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	b := decode(t, rec)
	assert.JSONEq(t, `[{"field":"sku","message":"The sku field is not allowed."}]`, string(b.Error.Details))
}

func TestBindJSONMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	rec := serve(func(c *appctx.Context) {
		var input struct {
			Name string `json:"name"`
		}
		assert.False(t, c.BindJSON(&input))
	}, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Error.Code)
}

func TestFailHidesUnclassifiedErrors(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Fail(errors.New("connection refused"))
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	b := decode(t, rec)
	assert.Equal(t, "Internal server error", b.Message)
	assert.Equal(t, "INTERNAL_ERROR", b.Error.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestFailUsesAppErrorStatus(t *testing.T) {
	rec := serve(func(c *appctx.Context) {
		c.Fail(apperr.NotFound("Product not found"))
	}, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	b := decode(t, rec)
	assert.Equal(t, "Product not found", b.Message)
	assert.Equal(t, "NOT_FOUND", b.Error.Code)
}

func TestRequestHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?category=Lighting", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	req.Header.Set("X-User-Role", "admin")

	serve(func(c *appctx.Context) {
		assert.Equal(t, "Lighting", c.Query("category"))
		assert.Equal(t, "", c.Query("type"))
		assert.Equal(t, "admin", c.Header("X-User-Role"))
		assert.Equal(t, "1.2.3.4", appctx.ClientIP(c.R))
	}, req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", appctx.ClientIP(req))
}
