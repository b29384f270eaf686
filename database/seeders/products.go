package seeders

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/pkg/logger"
)

func init() {
	Register("products", SeedProducts)
}

func text(s string) *string { return &s }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

// DemoProducts is the catalogue SeedProducts creates.
func DemoProducts() []models.Product {
	return []models.Product{
		{SKU: "LAMP-001", Name: "Desk Lamp", Description: text("Adjustable LED desk lamp"), Category: "lighting", Type: models.ProductTypePublic, Price: money("39.90"), DiscountPrice: moneyPtr("29.90"), Quantity: 25},
		{SKU: "BULB-002", Name: "Smart Bulb", Description: text("Colour changing E27 bulb"), Category: "lighting", Type: models.ProductTypePublic, Price: money("14.50"), Quantity: 120},
		{SKU: "CHAIR-001", Name: "Office Chair", Description: text("Ergonomic mesh chair"), Category: "furniture", Type: models.ProductTypePublic, Price: money("189.00"), Quantity: 8},
		{SKU: "DESK-001", Name: "Standing Desk", Description: text("Electric height adjustable desk"), Category: "furniture", Type: models.ProductTypePrivate, Price: money("499.00"), DiscountPrice: moneyPtr("449.00"), Quantity: 3},
		{SKU: "CABLE-010", Name: "USB-C Cable", Category: "accessories", Type: models.ProductTypePublic, Price: money("9.99"), Quantity: 0},
		{SKU: "DOCK-001", Name: "Laptop Dock", Description: text("Prototype dock, internal only"), Category: "accessories", Type: models.ProductTypePrivate, Price: money("129.00"), Quantity: 2},
	}
}

// SeedProducts creates DemoProducts. SKUs that already exist are skipped, so
// seeding twice is harmless.
func SeedProducts(ctx context.Context, svc *services.ProductService) error {
	for _, p := range DemoProducts() {
		if _, err := svc.CreateProduct(ctx, p); err != nil {
			if errors.Is(err, repositories.ErrDuplicateSKU) {
				logger.Debug("seed: sku exists", "sku", p.SKU)
				continue
			}
			return err
		}
	}
	return nil
}
