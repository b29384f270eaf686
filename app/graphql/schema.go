// Package graphql exposes a read-only GraphQL view of the catalogue. It goes
// through the same service, so visibility and caching rules are shared with
// the REST API.
package graphql

import (
	"errors"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	gql "github.com/shashiranjanraj/catalog/pkg/graphql"
	"github.com/shashiranjanraj/catalog/pkg/middleware"
)

var errAdminRequired = errors.New("admin role required")

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"sku":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description":   &graphql.Field{Type: graphql.String},
		"category":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"type":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price":         &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"discountPrice": &graphql.Field{Type: graphql.Float},
		"quantity":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var paginationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Pagination",
	Fields: graphql.Fields{
		"currentPage":     &graphql.Field{Type: graphql.Int},
		"totalPages":      &graphql.Field{Type: graphql.Int},
		"totalItems":      &graphql.Field{Type: graphql.Int},
		"itemsPerPage":    &graphql.Field{Type: graphql.Int},
		"hasNextPage":     &graphql.Field{Type: graphql.Boolean},
		"hasPreviousPage": &graphql.Field{Type: graphql.Boolean},
	},
})

var productPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductPage",
	Fields: graphql.Fields{
		"items":      &graphql.Field{Type: graphql.NewList(productType)},
		"pagination": &graphql.Field{Type: paginationType},
	},
})

var groupType = graphql.NewObject(graphql.ObjectConfig{
	Name: "StatGroup",
	Fields: graphql.Fields{
		"key":        &graphql.Field{Type: graphql.String},
		"count":      &graphql.Field{Type: graphql.Int},
		"totalValue": &graphql.Field{Type: graphql.Float},
	},
})

var statsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductStats",
	Fields: graphql.Fields{
		"totalProducts":        &graphql.Field{Type: graphql.Int},
		"totalInventoryValue":  &graphql.Field{Type: graphql.Float},
		"totalDiscountedValue": &graphql.Field{Type: graphql.Float},
		"averagePrice":         &graphql.Field{Type: graphql.Float},
		"outOfStockCount":      &graphql.Field{Type: graphql.Int},
		"productsByCategory":   &graphql.Field{Type: graphql.NewList(groupType)},
		"productsByType":       &graphql.Field{Type: graphql.NewList(groupType)},
	},
})

// listArgs mirror the REST query string.
var listArgs = graphql.FieldConfigArgument{
	"page":     &graphql.ArgumentConfig{Type: graphql.Int},
	"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
	"category": &graphql.ArgumentConfig{Type: graphql.String},
	"type":     &graphql.ArgumentConfig{Type: graphql.String},
	"search":   &graphql.ArgumentConfig{Type: graphql.String},
	"sort":     &graphql.ArgumentConfig{Type: graphql.String},
	"order":    &graphql.ArgumentConfig{Type: graphql.String},
	"minPrice": &graphql.ArgumentConfig{Type: graphql.Float},
	"maxPrice": &graphql.ArgumentConfig{Type: graphql.Float},
}

// NewSchema builds the schema over svc.
func NewSchema(svc *services.ProductService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: productPageType,
				Args: listArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					page, err := svc.GetProducts(p.Context, listParams(p.Args), callerRole(p))
					if err != nil {
						return nil, err
					}
					items := make([]map[string]interface{}, len(page.Items))
					for i, prod := range page.Items {
						items[i] = productMap(prod)
					}
					return map[string]interface{}{
						"items": items,
						"pagination": map[string]interface{}{
							"currentPage":     page.CurrentPage,
							"totalPages":      page.TotalPages,
							"totalItems":      page.TotalItems,
							"itemsPerPage":    page.ItemsPerPage,
							"hasNextPage":     page.HasNextPage,
							"hasPreviousPage": page.HasPreviousPage,
						},
					}, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					prod, err := svc.GetProductByID(p.Context, id, callerRole(p))
					if errors.Is(err, repositories.ErrProductNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return productMap(*prod), nil
				},
			},
			"productStats": &graphql.Field{
				Type: statsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if !callerRole(p).IsAdmin() {
						return nil, errAdminRequired
					}
					stats, err := svc.GetProductStats(p.Context)
					if err != nil {
						return nil, err
					}
					return statsMap(*stats), nil
				},
			},
		},
	})
	return gql.NewSchema(query)
}

func callerRole(p graphql.ResolveParams) models.Role {
	raw, _ := middleware.RoleFromContext(p.Context)
	role, _ := models.ParseRole(raw)
	return role
}

func listParams(args map[string]interface{}) services.ListParams {
	str := func(k string) string {
		switch v := args[k].(type) {
		case string:
			return v
		case int:
			return strconv.Itoa(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return ""
	}
	return services.ListParams{
		Page:     str("page"),
		Limit:    str("limit"),
		Category: str("category"),
		Type:     str("type"),
		Search:   str("search"),
		Sort:     str("sort"),
		Order:    str("order"),
		MinPrice: str("minPrice"),
		MaxPrice: str("maxPrice"),
	}
}

func productMap(p models.Product) map[string]interface{} {
	m := map[string]interface{}{
		"id":        p.ID,
		"sku":       p.SKU,
		"name":      p.Name,
		"category":  p.Category,
		"type":      string(p.Type),
		"price":     p.Price.InexactFloat64(),
		"quantity":  p.Quantity,
		"createdAt": p.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt": p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.DiscountPrice != nil {
		m["discountPrice"] = p.DiscountPrice.InexactFloat64()
	}
	return m
}

func statsMap(s models.ProductStats) map[string]interface{} {
	byCategory := make([]map[string]interface{}, len(s.ProductsByCategory))
	for i, g := range s.ProductsByCategory {
		byCategory[i] = map[string]interface{}{"key": g.Category, "count": g.Count, "totalValue": g.TotalValue.InexactFloat64()}
	}
	byType := make([]map[string]interface{}, len(s.ProductsByType))
	for i, g := range s.ProductsByType {
		byType[i] = map[string]interface{}{"key": string(g.Type), "count": g.Count, "totalValue": g.TotalValue.InexactFloat64()}
	}
	return map[string]interface{}{
		"totalProducts":        s.TotalProducts,
		"totalInventoryValue":  s.TotalInventoryValue.InexactFloat64(),
		"totalDiscountedValue": s.TotalDiscountedValue.InexactFloat64(),
		"averagePrice":         s.AveragePrice.InexactFloat64(),
		"outOfStockCount":      s.OutOfStockCount,
		"productsByCategory":   byCategory,
		"productsByType":       byType,
	}
}
