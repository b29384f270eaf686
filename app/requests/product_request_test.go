package requests_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/requests"
	"github.com/shashiranjanraj/catalog/pkg/validate"
)

func decodeCreate(t *testing.T, body string) (requests.CreateProductRequest, validate.Errors) {
	t.Helper()
	var req requests.CreateProductRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req, validate.Struct(&req)
}

func decodeUpdate(t *testing.T, body string) (requests.UpdateProductRequest, validate.Errors) {
	t.Helper()
	var req requests.UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	errs := validate.Struct(&req)
	if !validate.HasErrors(errs) {
		errs = req.Validate()
	}
	return req, errs
}

func TestCreateProductRequestValid(t *testing.T) {
	req, errs := decodeCreate(t, `{
		"sku": "lamp-01", "name": "Desk Lamp", "description": "  Warm light ",
		"category": "lighting", "price": 25.5, "discountPrice": 19.99, "quantity": 0
	}`)
	require.Empty(t, errs)

	p := req.ToProduct()
	assert.Equal(t, "LAMP-01", p.SKU)
	assert.Equal(t, "Warm light", *p.Description)
	assert.Equal(t, models.ProductType(""), p.Type, "type defaults later")
	assert.Equal(t, "25.5", p.Price.String())
	assert.Equal(t, "19.99", p.DiscountPrice.String())
	assert.Equal(t, 0, p.Quantity)
}

func TestCreateProductRequestRequiredFields(t *testing.T) {
	_, errs := decodeCreate(t, `{}`)

	for _, field := range []string{"sku", "name", "category", "price", "quantity"} {
		assert.Equal(t, "The "+field+" field is required.", errs.Get(field))
	}
	assert.False(t, errs.Has("description"))
	assert.False(t, errs.Has("type"))
}

func TestCreateProductRequestRules(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"sku pattern", `{"sku":"bad sku!"}`, "sku", "The sku format is invalid."},
		{"sku length", `{"sku":"ab"}`, "sku", "The sku must be at least 3 characters."},
		{"name length", `{"name":"ab"}`, "name", "The name must be at least 3 characters."},
		{"type", `{"type":"secret"}`, "type", "The selected type is invalid."},
		{"type null", `{"type":null}`, "type", "The type field must not be null."},
		{"price positive", `{"price":0}`, "price", "The price must be greater than 0."},
		{"price precision", `{"price":1.234}`, "price", "The price must have at most 2 decimal places."},
		{"discount below price", `{"price":10,"discountPrice":10}`, "discountPrice", "The discountPrice must be less than price."},
		{"discount negative", `{"price":10,"discountPrice":-1}`, "discountPrice", "The discountPrice must be greater than or equal to 0."},
		{"quantity negative", `{"quantity":-1}`, "quantity", "The quantity must be greater than or equal to 0."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := decodeCreate(t, tt.body)
			assert.Equal(t, tt.msg, errs.Get(tt.field))
		})
	}
}

func TestCreateProductRequestNulls(t *testing.T) {
	req, errs := decodeCreate(t, `{"sku":"abc","name":"Lamp","category":"ab","price":5,"quantity":1,"description":null,"discountPrice":null}`)
	require.Empty(t, errs)

	p := req.ToProduct()
	assert.Nil(t, p.Description)
	assert.Nil(t, p.DiscountPrice)
}

func TestUpdateProductRequestNeedsOneField(t *testing.T) {
	_, errs := decodeUpdate(t, `{}`)
	assert.True(t, errs.Has("body"))
}

func TestUpdateProductRequestPatch(t *testing.T) {
	req, errs := decodeUpdate(t, `{"name":" New name ","discountPrice":null,"quantity":0}`)
	require.Empty(t, errs)

	patch := req.ToPatch()
	assert.Equal(t, "New name", *patch.Name)
	assert.True(t, patch.DiscountPrice.Set)
	assert.Nil(t, patch.DiscountPrice.Value)
	assert.Equal(t, 0, *patch.Quantity)
	assert.False(t, patch.Description.Set)
	assert.Nil(t, patch.Price)
}

func TestUpdateProductRequestRules(t *testing.T) {
	_, errs := decodeUpdate(t, `{"name":null,"price":-5}`)
	assert.Equal(t, "The name field must not be null.", errs.Get("name"))
	assert.Equal(t, "The price must be greater than 0.", errs.Get("price"))

	_, errs = decodeUpdate(t, `{"discountPrice":50}`)
	assert.Empty(t, errs, "discount alone is checked against the stored price later")

	_, errs = decodeUpdate(t, `{"price":20,"discountPrice":25}`)
	assert.Equal(t, "The discountPrice must be less than price.", errs.Get("discountPrice"))
}
