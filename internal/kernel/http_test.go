package kernel_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gql "github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/app/graphql"
	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/internal/kernel"
	"github.com/shashiranjanraj/catalog/pkg/auth"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/database"
	pkggraphql "github.com/shashiranjanraj/catalog/pkg/graphql"
	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/testkit"
)

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination map[string]any  `json:"pagination"`
	Error      *struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type fixture struct {
	handler http.Handler
	service *services.ProductService
}

func newFixture(t *testing.T, opts kernel.Options) *fixture {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, db.AutoMigrate(&repositories.ProductRecord{}))

	store := cache.NewMemoryStore()
	svc := services.NewProductService(
		repositories.NewSQLProductRepository(db),
		services.NewStatsCache(store, services.DefaultStatsTTL),
		nil,
	)

	schema, err := graphql.NewSchema(svc)
	require.NoError(t, err)

	opts.Service = svc
	opts.Cache = store
	opts.GraphQL = pkggraphql.Handler(schema)
	return &fixture{handler: kernel.NewHTTPKernel(opts).Handler(), service: svc}
}

func (f *fixture) do(t *testing.T, method, path, role, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set(middleware.RoleHeader, role)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (f *fixture) seed(t *testing.T, products ...models.Product) []*models.Product {
	t.Helper()
	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		created, err := f.service.CreateProduct(context.Background(), p)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func product(sku string, typ models.ProductType, price string, qty int) models.Product {
	return models.Product{
		SKU:      sku,
		Name:     "Product " + sku,
		Category: "lighting",
		Type:     typ,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	}
}

func fieldErrors(t *testing.T, env envelope) []fieldError {
	t.Helper()
	require.NotNil(t, env.Error)
	var errs []fieldError
	require.NoError(t, json.Unmarshal(env.Error.Details, &errs))
	return errs
}

func fields(errs []fieldError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

// TestScenarios runs the request flows in testdata, each file against its
// own empty store.
func TestScenarios(t *testing.T) {
	testkit.RunDir(t, "testdata", func(t *testing.T) http.Handler {
		return newFixture(t, kernel.Options{}).handler
	})
}

func TestCreateProductSanitizesInput(t *testing.T) {
	f := newFixture(t, kernel.Options{})

	rec, env := f.do(t, http.MethodPost, "/api/products", "admin",
		`{"sku":"LAMP-1","name":"  <b>Desk</b> Lamp ","description":"<script>alert(1)</script>Bright","category":"lighting","price":10,"quantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Desk Lamp", created.Name)
	require.NotNil(t, created.Description)
	assert.Equal(t, "Bright", *created.Description)
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t, kernel.Options{})
	p := f.seed(t, product("LAMP-1", models.ProductTypePublic, "10", 1))[0]
	path := "/api/products/" + p.ID

	rec, env := f.do(t, http.MethodPut, path, "admin", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []fieldError{{Field: "body", Message: "At least one field must be provided for update."}}, fieldErrors(t, env))

	rec, env = f.do(t, http.MethodPut, path, "admin", `{"discountPrice":15}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "discount checked against the stored price")
	assert.Equal(t, []string{"discountPrice"}, fields(fieldErrors(t, env)))

	rec, env = f.do(t, http.MethodPut, path, "admin", `{"price":20,"discountPrice":15,"description":"Bright"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Product updated successfully", env.Message)

	var updated models.Product
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, updated.DiscountPrice)
	assert.True(t, updated.DiscountPrice.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "LAMP-1", updated.SKU)

	rec, env = f.do(t, http.MethodPut, path, "admin", `{"discountPrice":null,"description":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Nil(t, updated.DiscountPrice)
	assert.Nil(t, updated.Description)

	rec, env = f.do(t, http.MethodPut, path, "admin", `{"sku":"OTHER-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"sku"}, fields(fieldErrors(t, env)))

	rec, _ = f.do(t, http.MethodPut, "/api/products/missing", "admin", `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t, kernel.Options{})
	p := f.seed(t, product("LAMP-1", models.ProductTypePublic, "10", 1))[0]

	rec, env := f.do(t, http.MethodDelete, "/api/products/"+p.ID, "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", env.Message)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"sku":"LAMP-1"}`, p.ID), string(env.Data))

	rec, _ = f.do(t, http.MethodGet, "/api/products/"+p.ID, "admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/api/products/"+p.ID, "admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsAreInvalidatedByMutations(t *testing.T) {
	f := newFixture(t, kernel.Options{})
	f.seed(t, product("LAMP-1", models.ProductTypePublic, "10", 2))

	stats := func() models.ProductStats {
		rec, env := f.do(t, http.MethodGet, "/api/products/stats", "admin", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Statistics retrieved successfully", env.Message)
		var s models.ProductStats
		require.NoError(t, json.Unmarshal(env.Data, &s))
		return s
	}

	first := stats()
	assert.Equal(t, 1, first.TotalProducts)
	assert.True(t, first.TotalInventoryValue.Equal(decimal.NewFromInt(20)))

	rec, env := f.do(t, http.MethodPost, "/api/products", "admin",
		`{"sku":"CHAIR-1","name":"Office Chair","category":"furniture","price":100,"quantity":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	second := stats()
	assert.Equal(t, 2, second.TotalProducts)
	assert.Equal(t, 1, second.OutOfStockCount)

	var chair models.Product
	require.NoError(t, json.Unmarshal(env.Data, &chair))
	rec, _ = f.do(t, http.MethodDelete, "/api/products/"+chair.ID, "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, stats().TotalProducts)
}

func TestBearerTokenCarriesRole(t *testing.T) {
	f := newFixture(t, kernel.Options{VerifyToken: auth.RoleFromToken})

	token, err := auth.GenerateToken("tests", "admin", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/products/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t, kernel.Options{RateLimitMax: 2, RateLimitWindow: time.Minute})

	for i := 0; i < 2; i++ {
		rec, _ := f.do(t, http.MethodGet, "/api/products", "user", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := f.do(t, http.MethodGet, "/api/products", "user", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	f := newFixture(t, kernel.Options{})

	rec, env := f.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"store":"up","cache":"up"}`, string(env.Data))

	rec, env = f.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = f.do(t, http.MethodPatch, "/api/products", "admin", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Error.Code)
}

func TestGraphQLRespectsRoles(t *testing.T) {
	f := newFixture(t, kernel.Options{})
	f.seed(t,
		product("PUB-1", models.ProductTypePublic, "10", 1),
		product("PRIV-1", models.ProductTypePrivate, "30", 5),
	)

	query := func(role, q string) *gql.Result {
		body, err := json.Marshal(map[string]string{"query": q})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.RoleHeader, role)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res gql.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		return &res
	}

	res := query("user", `{ products(type: "private") { items { sku type } pagination { totalItems } } }`)
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{
		"products": map[string]any{
			"items":      []any{map[string]any{"sku": "PUB-1", "type": "public"}},
			"pagination": map[string]any{"totalItems": float64(1)},
		},
	}, res.Data)

	res = query("user", `{ productStats { totalProducts } }`)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "admin role required", res.Errors[0].Message)

	res = query("admin", `{ productStats { totalProducts averagePrice } }`)
	require.Empty(t, res.Errors)
	assert.Equal(t, map[string]any{
		"productStats": map[string]any{"totalProducts": float64(2), "averagePrice": float64(80)},
	}, res.Data)
}
