package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductType controls who may see a product.
type ProductType string

const (
	ProductTypePublic  ProductType = "public"
	ProductTypePrivate ProductType = "private"
)

func (t ProductType) Valid() bool {
	return t == ProductTypePublic || t == ProductTypePrivate
}

// Product is the single catalogue entity.
type Product struct {
	ID            string           `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Category      string           `json:"category"`
	Type          ProductType      `json:"type"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Quantity      int              `json:"quantity"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// InventoryValue is price × quantity.
func (p Product) InventoryValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// NormalizeSKU trims and upper-cases a SKU; SKUs are compared in this form.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// ProductPatch lists the mutable fields of a product. Nil means "leave as is".
// SKU is deliberately absent: it never changes after creation.
type ProductPatch struct {
	Name          *string
	Description   Nullable[string]
	Category      *string
	Type          *ProductType
	Price         *decimal.Decimal
	DiscountPrice Nullable[decimal.Decimal]
	Quantity      *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && !p.Description.Set && p.Category == nil && p.Type == nil &&
		p.Price == nil && !p.DiscountPrice.Set && p.Quantity == nil
}

// ApplyTo returns a copy of product with the patch applied.
func (p ProductPatch) ApplyTo(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description.Set {
		product.Description = p.Description.Value
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Type != nil {
		product.Type = *p.Type
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.DiscountPrice.Set {
		product.DiscountPrice = p.DiscountPrice.Value
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	return product
}

// Nullable distinguishes "not provided" from "set to null".
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Null returns a Nullable that clears the field.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// Value returns a Nullable holding v.
func Value[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }
