package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/database"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
	"github.com/shashiranjanraj/catalog/pkg/orm"
)

// ProductRecord is the GORM row for the products table. Migrations create the
// table from it.
type ProductRecord struct {
	ID            string              `gorm:"primaryKey;size:36"`
	SKU           string              `gorm:"column:sku;size:50;not null;uniqueIndex"`
	Name          string              `gorm:"size:200;not null"`
	Description   *string             `gorm:"size:1000"`
	Category      string              `gorm:"size:100;not null;index"`
	Type          string              `gorm:"size:10;not null;index"`
	Price         decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	DiscountPrice decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Quantity      int                 `gorm:"not null"`
	CreatedAt     time.Time           `gorm:"index"`
	UpdatedAt     time.Time
}

func (ProductRecord) TableName() string { return "products" }

func (rec ProductRecord) toModel() models.Product {
	p := models.Product{
		ID:          rec.ID,
		SKU:         rec.SKU,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    rec.Category,
		Type:        models.ProductType(rec.Type),
		Price:       rec.Price,
		Quantity:    rec.Quantity,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}
	if rec.DiscountPrice.Valid {
		dp := rec.DiscountPrice.Decimal
		p.DiscountPrice = &dp
	}
	return p
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// sortColumns maps sort keys onto column names.
var sortColumns = map[SortField]string{
	SortByName:      "name",
	SortByPrice:     "price",
	SortByQuantity:  "quantity",
	SortByCreatedAt: "created_at",
}

// SQLProductRepository stores products through GORM on any supported driver.
type SQLProductRepository struct {
	db *gorm.DB
}

func NewSQLProductRepository(db *gorm.DB) *SQLProductRepository {
	return &SQLProductRepository{db: db}
}

func (r *SQLProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStoreQuery("sql", "create", time.Now())

	rec := ProductRecord{
		ID:            uuid.NewString(),
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Type:          string(p.Type),
		Price:         p.Price,
		DiscountPrice: nullDecimal(p.DiscountPrice),
		Quantity:      p.Quantity,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("products: insert: %w", err)
	}
	p.ID = rec.ID
	p.CreatedAt = rec.CreatedAt.UTC()
	p.UpdatedAt = rec.UpdatedAt.UTC()
	return nil
}

func (r *SQLProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveStoreQuery("sql", "find_by_id", time.Now())

	rec, err := first(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	p := rec.toModel()
	return &p, nil
}

func first(db *gorm.DB, id string) (*ProductRecord, error) {
	var rec ProductRecord
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("products: find one: %w", err)
	}
	return &rec, nil
}

// filtered applies filter to a fresh query. Count and Find each need their
// own, since Count mutates the statement.
func (r *SQLProductRepository) filtered(ctx context.Context, filter ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&ProductRecord{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	return q.Scopes(orm.ContainsFold(filter.Search, "name", "description"))
}

func (r *SQLProductRepository) Find(ctx context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error) {
	defer metrics.ObserveStoreQuery("sql", "find", time.Now())

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	var recs []ProductRecord
	err := r.filtered(ctx, filter).
		Scopes(
			orm.OrderBy(sortColumns[opts.sortField()], "id", opts.Descending),
			orm.Paginate(opts.Skip, opts.Limit),
		).
		Find(&recs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("products: find: %w", err)
	}
	return toModels(recs), total, nil
}

func (r *SQLProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveStoreQuery("sql", "all", time.Now())

	var recs []ProductRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("products: find all: %w", err)
	}
	return toModels(recs), nil
}

func toModels(recs []ProductRecord) []models.Product {
	products := make([]models.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, rec.toModel())
	}
	return products
}

func (r *SQLProductRepository) UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	defer metrics.ObserveStoreQuery("sql", "update", time.Now())

	var updated *ProductRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := first(tx, id)
		if err != nil {
			return err
		}

		// A map so that explicit NULLs and zero values are written.
		changes := map[string]interface{}{"updated_at": tx.NowFunc()}
		if patch.Name != nil {
			changes["name"] = *patch.Name
		}
		if patch.Description.Set {
			changes["description"] = patch.Description.Value
		}
		if patch.Category != nil {
			changes["category"] = *patch.Category
		}
		if patch.Type != nil {
			changes["type"] = string(*patch.Type)
		}
		if patch.Price != nil {
			changes["price"] = *patch.Price
		}
		if patch.DiscountPrice.Set {
			changes["discount_price"] = nullDecimal(patch.DiscountPrice.Value)
		}
		if patch.Quantity != nil {
			changes["quantity"] = *patch.Quantity
		}

		if err := tx.Model(rec).Updates(changes).Error; err != nil {
			return fmt.Errorf("products: update: %w", err)
		}
		updated, err = first(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	p := updated.toModel()
	return &p, nil
}

func (r *SQLProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveStoreQuery("sql", "delete", time.Now())

	var deleted *ProductRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := first(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(rec).Error; err != nil {
			return fmt.Errorf("products: delete: %w", err)
		}
		deleted = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	p := deleted.toModel()
	return &p, nil
}

func (r *SQLProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

var _ ProductRepository = (*SQLProductRepository)(nil)
