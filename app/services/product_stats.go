package services

import (
	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/catalog/app/models"
)

// AggregateProductStats computes the statistics snapshot in one pass over
// products. Groups appear in the order their key is first seen.
//
// AveragePrice is total inventory value divided by product count.
func AggregateProductStats(products []models.Product) models.ProductStats {
	stats := models.ProductStats{
		TotalProducts:        len(products),
		TotalInventoryValue:  decimal.Zero,
		TotalDiscountedValue: decimal.Zero,
		AveragePrice:         decimal.Zero,
		ProductsByCategory:   []models.CategoryStat{},
		ProductsByType:       []models.TypeStat{},
	}

	categoryIdx := map[string]int{}
	typeIdx := map[models.ProductType]int{}

	for _, p := range products {
		value := p.InventoryValue()
		qty := decimal.NewFromInt(int64(p.Quantity))

		stats.TotalInventoryValue = stats.TotalInventoryValue.Add(value)
		if p.DiscountPrice != nil {
			stats.TotalDiscountedValue = stats.TotalDiscountedValue.Add(p.DiscountPrice.Mul(qty))
		}
		if p.Quantity == 0 {
			stats.OutOfStockCount++
		}

		i, ok := categoryIdx[p.Category]
		if !ok {
			i = len(stats.ProductsByCategory)
			categoryIdx[p.Category] = i
			stats.ProductsByCategory = append(stats.ProductsByCategory, models.CategoryStat{Category: p.Category, TotalValue: decimal.Zero})
		}
		stats.ProductsByCategory[i].Count++
		stats.ProductsByCategory[i].TotalValue = stats.ProductsByCategory[i].TotalValue.Add(value)

		j, ok := typeIdx[p.Type]
		if !ok {
			j = len(stats.ProductsByType)
			typeIdx[p.Type] = j
			stats.ProductsByType = append(stats.ProductsByType, models.TypeStat{Type: p.Type, TotalValue: decimal.Zero})
		}
		stats.ProductsByType[j].Count++
		stats.ProductsByType[j].TotalValue = stats.ProductsByType[j].TotalValue.Add(value)
	}

	if stats.TotalProducts > 0 {
		stats.AveragePrice = stats.TotalInventoryValue.Div(decimal.NewFromInt(int64(stats.TotalProducts)))
	}
	return stats
}
