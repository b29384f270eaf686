package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/pkg/storage"
)

func TestExportCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.repo.On("All", ctx).Return([]models.Product{lamp()}, nil).Once()

	disk := storage.NewLocalDisk(t.TempDir(), "")
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	path, err := f.svc.ExportCatalog(ctx, disk, "exports", at)
	require.NoError(t, err)
	assert.Equal(t, "exports/catalog-20240301T123000Z.json", path)

	data, err := disk.Get(ctx, path)
	require.NoError(t, err)

	var doc services.CatalogExport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.True(t, doc.ExportedAt.Equal(at))
	assert.Equal(t, 1, doc.Stats.TotalProducts)
	require.Len(t, doc.Products, 1)
	assert.Equal(t, "LAMP-1", doc.Products[0].SKU)
}
