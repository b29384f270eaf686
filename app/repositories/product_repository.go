package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/catalog/app/models"
)

var (
	// ErrProductNotFound is returned when no product has the given id.
	// Malformed ids are reported the same way.
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateSKU is returned when the unique SKU index rejects a write.
	ErrDuplicateSKU = errors.New("product sku already exists")
)

// SortField is a whitelisted sort key.
type SortField string

const (
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
	SortByQuantity  SortField = "quantity"
	SortByCreatedAt SortField = "createdAt"
)

// ParseSortField maps a client value onto the whitelist, defaulting to createdAt.
func ParseSortField(s string) SortField {
	switch f := SortField(s); f {
	case SortByName, SortByPrice, SortByQuantity, SortByCreatedAt:
		return f
	}
	return SortByCreatedAt
}

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	Category string
	Type     models.ProductType
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Search is a case-insensitive literal substring of name or description.
	Search string
}

// ListOptions orders and pages a listing. Ties on SortBy are broken by id.
type ListOptions struct {
	SortBy     SortField
	Descending bool
	Skip       int
	Limit      int
}

func (o ListOptions) sortField() SortField {
	if o.SortBy == "" {
		return SortByCreatedAt
	}
	return o.SortBy
}

// ProductRepository is the storage contract for products. Only the product
// service calls it.
type ProductRepository interface {
	// Create assigns ID and timestamps on p. ErrDuplicateSKU on conflict.
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// Find returns one page of matches and the total number of matches.
	Find(ctx context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error)
	// All returns every product in one query. Used for statistics and export.
	All(ctx context.Context) ([]models.Product, error)
	// UpdateByID applies patch and returns the stored result.
	UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	// DeleteByID removes the product and returns it as it was.
	DeleteByID(ctx context.Context, id string) (*models.Product, error)
	Ping(ctx context.Context) error
}
