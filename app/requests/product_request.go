// Package requests holds the validated request payloads of the HTTP API.
package requests

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/validate"
)

// CreateProductRequest is the POST /api/products body.
type CreateProductRequest struct {
	SKU           *string           `json:"sku"           validate:"required,regex=^[A-Za-z0-9_-]+$,min=3,max=50"`
	Name          *string           `json:"name"          validate:"required,min=3,max=200"`
	Description   Optional[string]  `json:"description"   validate:"nullable,max=1000"`
	Category      *string           `json:"category"      validate:"required,min=2,max=100"`
	Type          Optional[string]  `json:"type"          validate:"in=public,private"`
	Price         *float64          `json:"price"         validate:"required,gt=0,decimals=2"`
	DiscountPrice Optional[float64] `json:"discountPrice" validate:"nullable,gte=0,decimals=2,ltfield=price"`
	Quantity      *int              `json:"quantity"      validate:"required,gte=0"`
}

// ToProduct converts a validated request into a new product.
func (r CreateProductRequest) ToProduct() models.Product {
	p := models.Product{
		SKU:           models.NormalizeSKU(*r.SKU),
		Name:          strings.TrimSpace(*r.Name),
		Description:   description(r.Description.Value),
		Category:      strings.TrimSpace(*r.Category),
		Price:         decimal.NewFromFloat(*r.Price),
		DiscountPrice: money(r.DiscountPrice.Value),
		Quantity:      *r.Quantity,
	}
	if r.Type.Value != nil {
		p.Type = models.ProductType(*r.Type.Value)
	}
	return p
}

// UpdateProductRequest is the PUT /api/products/{id} body. The SKU cannot
// change, so it is rejected as an unknown field.
type UpdateProductRequest struct {
	Name          Optional[string]  `json:"name"          validate:"min=3,max=200"`
	Description   Optional[string]  `json:"description"   validate:"nullable,max=1000"`
	Category      Optional[string]  `json:"category"      validate:"min=2,max=100"`
	Type          Optional[string]  `json:"type"          validate:"in=public,private"`
	Price         Optional[float64] `json:"price"         validate:"gt=0,decimals=2"`
	DiscountPrice Optional[float64] `json:"discountPrice" validate:"nullable,gte=0,decimals=2,ltfield=price"`
	Quantity      Optional[int]     `json:"quantity"      validate:"gte=0"`
}

// Validate requires at least one field.
func (r UpdateProductRequest) Validate() validate.Errors {
	if r.Name.Set || r.Description.Set || r.Category.Set || r.Type.Set ||
		r.Price.Set || r.DiscountPrice.Set || r.Quantity.Set {
		return nil
	}
	return validate.Errors{{Field: "body", Message: "At least one field must be provided for update."}}
}

// ToPatch converts a validated request into a product patch.
func (r UpdateProductRequest) ToPatch() models.ProductPatch {
	var patch models.ProductPatch
	if r.Name.Value != nil {
		name := strings.TrimSpace(*r.Name.Value)
		patch.Name = &name
	}
	if r.Description.Set {
		patch.Description = models.Nullable[string]{Set: true, Value: description(r.Description.Value)}
	}
	if r.Category.Value != nil {
		category := strings.TrimSpace(*r.Category.Value)
		patch.Category = &category
	}
	if r.Type.Value != nil {
		t := models.ProductType(*r.Type.Value)
		patch.Type = &t
	}
	if r.Price.Value != nil {
		patch.Price = money(r.Price.Value)
	}
	if r.DiscountPrice.Set {
		patch.DiscountPrice = models.Nullable[decimal.Decimal]{Set: true, Value: money(r.DiscountPrice.Value)}
	}
	if r.Quantity.Value != nil {
		q := *r.Quantity.Value
		patch.Quantity = &q
	}
	return patch
}

// description stores blank descriptions as null.
func description(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func money(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
