package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/pkg/validate"
)

type optional[T any] struct {
	set   bool
	value *T
}

func (o optional[T]) ValidateValue() (any, bool) {
	if !o.set || o.value == nil {
		return nil, o.set
	}
	return *o.value, true
}

func some[T any](v T) optional[T] { return optional[T]{set: true, value: &v} }
func null[T any]() optional[T]     { return optional[T]{set: true} }

type productInput struct {
	SKU           string   `json:"sku"           validate:"required,regex=^[A-Za-z0-9_-]+$,min=3,max=50"`
	Name          string   `json:"name"          validate:"required,min=3,max=200"`
	Description   *string  `json:"description"   validate:"nullable,max=1000"`
	Type          string   `json:"type"          validate:"nullable,in=public,private"`
	Price         *float64 `json:"price"         validate:"required,gt=0,decimals=2"`
	DiscountPrice *float64 `json:"discountPrice" validate:"nullable,gte=0,decimals=2,ltfield=price"`
	Quantity      *int     `json:"quantity"      validate:"required,integer,gte=0"`
}

func ptr[T any](v T) *T { return &v }

func validProduct() productInput {
	return productInput{
		SKU:      "ABC-123",
		Name:     "Desk lamp",
		Price:    ptr(19.99),
		Quantity: ptr(0),
	}
}

func TestValidInput(t *testing.T) {
	in := validProduct()
	in.DiscountPrice = ptr(9.5)
	in.Type = "private"

	assert.Empty(t, validate.Struct(in))
	assert.Empty(t, validate.Struct(&in), "pointer to struct is dereferenced")
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	require.True(t, validate.HasErrors(errs))

	assert.True(t, errs.Has("sku"))
	assert.True(t, errs.Has("name"))
	assert.True(t, errs.Has("price"))
	assert.True(t, errs.Has("quantity"))
	assert.False(t, errs.Has("description"))
	assert.False(t, errs.Has("discountPrice"))
}

func TestErrorsKeepFieldOrder(t *testing.T) {
	errs := validate.Struct(productInput{})

	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"sku", "name", "price", "quantity"}, fields)
}

func TestZeroBehindPointerIsPresent(t *testing.T) {
	in := validProduct()
	in.Quantity = ptr(0)
	in.DiscountPrice = ptr(0.0)

	assert.Empty(t, validate.Struct(in))
}

func TestRegexRule(t *testing.T) {
	in := validProduct()
	in.SKU = "ABC 123!"

	errs := validate.Struct(in)
	assert.Equal(t, "The sku format is invalid.", errs.Get("sku"))
}

func TestStringLength(t *testing.T) {
	in := validProduct()
	in.Name = "ab"
	assert.True(t, validate.Struct(in).Has("name"))

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'x'
	}
	in = validProduct()
	in.Description = ptr(string(long))
	assert.True(t, validate.Struct(in).Has("description"))
}

func TestDecimalsRule(t *testing.T) {
	in := validProduct()
	in.Price = ptr(10.999)
	assert.Equal(t, "The price must have at most 2 decimal places.", validate.Struct(in).Get("price"))

	in.Price = ptr(10.5)
	assert.Empty(t, validate.Struct(in))
}

func TestNumericBounds(t *testing.T) {
	in := validProduct()
	in.Price = ptr(0.0)
	assert.True(t, validate.Struct(in).Has("price"))

	in = validProduct()
	in.Quantity = ptr(-1)
	assert.True(t, validate.Struct(in).Has("quantity"))
}

func TestLtFieldRule(t *testing.T) {
	in := validProduct()
	in.DiscountPrice = ptr(19.99)
	assert.Equal(t, "The discountPrice must be less than price.", validate.Struct(in).Get("discountPrice"))

	in.DiscountPrice = ptr(25.0)
	assert.True(t, validate.Struct(in).Has("discountPrice"))

	in.DiscountPrice = ptr(19.98)
	assert.Empty(t, validate.Struct(in))
}

func TestLtFieldSkippedWithoutSibling(t *testing.T) {
	type patch struct {
		Price         optional[float64] `json:"price"         validate:"gt=0"`
		DiscountPrice optional[float64] `json:"discountPrice" validate:"nullable,gte=0,ltfield=price"`
	}

	assert.Empty(t, validate.Struct(patch{DiscountPrice: some(500.0)}))
	assert.True(t, validate.Struct(patch{Price: some(10.0), DiscountPrice: some(500.0)}).Has("discountPrice"))
}

func TestInRule(t *testing.T) {
	in := validProduct()
	in.Type = "secret"
	assert.Equal(t, "The selected type is invalid.", validate.Struct(in).Get("type"))

	in.Type = "public"
	assert.Empty(t, validate.Struct(in))
}

func TestUnwrapperAbsentNullAndSet(t *testing.T) {
	type patch struct {
		Name        optional[string] `json:"name"        validate:"min=3,max=200"`
		Description optional[string] `json:"description" validate:"nullable,max=5"`
	}

	assert.Empty(t, validate.Struct(patch{}), "absent fields run no rules")

	errs := validate.Struct(patch{Name: null[string]()})
	assert.Equal(t, "The name field must not be null.", errs.Get("name"))

	assert.Empty(t, validate.Struct(patch{Description: null[string]()}), "nullable accepts null")
	assert.True(t, validate.Struct(patch{Name: some("ab")}).Has("name"))
	assert.True(t, validate.Struct(patch{Description: some("too long")}).Has("description"))
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Code string `json:"code" validate:"nullable,regex=^[A-Z]+$"`
	}
	assert.Empty(t, validate.Struct(in{Code: ""}))
	assert.Empty(t, validate.Struct(in{Code: "LAMP"}))
	assert.NotEmpty(t, validate.Struct(in{Code: "lamp"}))
}

func TestUpperBounds(t *testing.T) {
	type in struct {
		Score float64 `json:"score" validate:"required,lte=100"`
		Rank  int     `json:"rank"  validate:"lt=10"`
	}
	errs := validate.Struct(in{Score: 150, Rank: 10})
	assert.Equal(t, "The score must be less than or equal to 100.", errs.Get("score"))
	assert.Equal(t, "The rank must be less than 10.", errs.Get("rank"))
	assert.Empty(t, validate.Struct(in{Score: 75, Rank: 3}))
}

func TestInListFollowedByRule(t *testing.T) {
	type in struct {
		Type string `json:"type" validate:"in=public,private,max=7"`
	}
	assert.Empty(t, validate.Struct(in{Type: "private"}))
	assert.Equal(t, "The selected type is invalid.", validate.Struct(in{Type: "secret"}).Get("type"))
}

func TestErrorsString(t *testing.T) {
	errs := validate.Errors{
		{Field: "name", Message: "bad"},
		{Field: "price", Message: "worse"},
	}
	assert.Equal(t, "name: bad; price: worse", errs.Error())
	assert.Equal(t, "", errs.Get("sku"))
}
