package services

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/pkg/validate"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit within int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

// ListParams are the raw listing parameters as received from the client.
type ListParams struct {
	Page     string
	Limit    string
	Category string
	Type     string
	Search   string
	Sort     string
	Order    string
	MinPrice string
	MaxPrice string
}

// ProductQuery is a normalized listing request ready for the repository.
type ProductQuery struct {
	Filter  repositories.ProductFilter
	Options repositories.ListOptions
	Page    int
	Limit   int
}

// BuildProductQuery normalizes params for role. Paging and sorting never
// fail; a malformed or negative price bound returns validate.Errors.
func BuildProductQuery(params ListParams, role models.Role) (ProductQuery, error) {
	q := ProductQuery{
		Page:  parsePage(params.Page),
		Limit: parseLimit(params.Limit),
	}

	var errs validate.Errors
	var err string
	if q.Filter.MinPrice, err = parsePrice("minPrice", params.MinPrice); err != "" {
		errs = append(errs, validate.FieldError{Field: "minPrice", Message: err})
	}
	if q.Filter.MaxPrice, err = parsePrice("maxPrice", params.MaxPrice); err != "" {
		errs = append(errs, validate.FieldError{Field: "maxPrice", Message: err})
	}
	if validate.HasErrors(errs) {
		return ProductQuery{}, errs
	}

	q.Filter.Category = strings.TrimSpace(params.Category)
	q.Filter.Type = models.ProductType(strings.TrimSpace(params.Type))
	q.Filter.Search = strings.TrimSpace(params.Search)
	VisibilityFor(role).Apply(&q.Filter)

	q.Options = repositories.ListOptions{
		SortBy:     repositories.ParseSortField(params.Sort),
		Descending: params.Order == "desc",
		Skip:       (q.Page - 1) * q.Limit,
		Limit:      q.Limit,
	}
	return q, nil
}

func parsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case errors.Is(err, strconv.ErrRange) && n > 0, n > MaxPage:
		return MaxPage
	case err != nil || n < 1:
		return DefaultPage
	}
	return n
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil || n < 1:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

func parsePrice(field, raw string) (*decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, "The " + field + " must be a number."
	}
	if d.IsNegative() {
		return nil, "The " + field + " must be greater than or equal to 0."
	}
	return &d, ""
}

// Page is one page of products with its pagination metadata.
type Page struct {
	Items           []models.Product
	CurrentPage     int
	TotalPages      int
	TotalItems      int64
	ItemsPerPage    int
	HasNextPage     bool
	HasPreviousPage bool
}

// NewPage computes the pagination metadata for items on page of size limit.
func NewPage(items []models.Product, page, limit int, total int64) Page {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	if items == nil {
		items = []models.Product{}
	}
	return Page{
		Items:           items,
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
