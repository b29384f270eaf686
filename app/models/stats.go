package models

import "github.com/shopspring/decimal"

// ProductStats is the derived, cacheable statistics snapshot.
type ProductStats struct {
	TotalProducts        int             `json:"totalProducts"`
	TotalInventoryValue  decimal.Decimal `json:"totalInventoryValue"`
	TotalDiscountedValue decimal.Decimal `json:"totalDiscountedValue"`
	AveragePrice         decimal.Decimal `json:"averagePrice"`
	OutOfStockCount      int             `json:"outOfStockCount"`
	ProductsByCategory   []CategoryStat  `json:"productsByCategory"`
	ProductsByType       []TypeStat      `json:"productsByType"`
}

type CategoryStat struct {
	Category   string          `json:"category"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

type TypeStat struct {
	Type       ProductType     `json:"type"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
}
