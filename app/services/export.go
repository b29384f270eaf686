package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/logger"
	"github.com/shashiranjanraj/catalog/pkg/storage"
)

// CatalogExport is the document written by ExportCatalog.
type CatalogExport struct {
	ExportedAt time.Time           `json:"exportedAt"`
	Stats      models.ProductStats `json:"stats"`
	Products   []models.Product    `json:"products"`
}

// ExportCatalog writes every product plus fresh statistics to disk under
// dir and returns the file path.
func (s *ProductService) ExportCatalog(ctx context.Context, disk storage.Disk, dir string, now time.Time) (string, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return "", err
	}

	doc := CatalogExport{
		ExportedAt: now.UTC(),
		Stats:      AggregateProductStats(products),
		Products:   products,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: encode: %w", err)
	}

	path := fmt.Sprintf("%s/catalog-%s.json", dir, now.UTC().Format("20060102T150405Z"))
	if err := disk.Put(ctx, path, data); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	logger.WithCtx(ctx).Info("catalog exported", "path", path, "products", len(products))
	return path, nil
}
