package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
)

// ProductsCollection is the collection products are stored in.
const ProductsCollection = "products"

type productDocument struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty"`
	SKU           string                `bson:"sku"`
	Name          string                `bson:"name"`
	Description   *string               `bson:"description"`
	Category      string                `bson:"category"`
	Type          string                `bson:"type"`
	Price         primitive.Decimal128  `bson:"price"`
	DiscountPrice *primitive.Decimal128 `bson:"discountPrice"`
	Quantity      int                   `bson:"quantity"`
	CreatedAt     time.Time             `bson:"createdAt"`
	UpdatedAt     time.Time             `bson:"updatedAt"`
}

func (d productDocument) toModel() models.Product {
	p := models.Product{
		ID:          d.ID.Hex(),
		SKU:         d.SKU,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Type:        models.ProductType(d.Type),
		Price:       fromDecimal128(d.Price),
		Quantity:    d.Quantity,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DiscountPrice != nil {
		dp := fromDecimal128(*d.DiscountPrice)
		p.DiscountPrice = &dp
	}
	return p
}

// toDecimal128 fails for amounts with more significant digits than
// Decimal128 holds; such a value is never stored.
func toDecimal128(field string, d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("products: %s %s: %w", field, d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// MongoProductRepository stores products in a MongoDB collection.
type MongoProductRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		col: db.Collection(ProductsCollection),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// EnsureIndexes creates the unique SKU index and the filter/sort indexes.
// It is idempotent.
func (r *MongoProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetName("sku_unique")},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
		{Keys: bson.D{{Key: "type", Value: 1}}, Options: options.Index().SetName("type")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at_desc")},
	})
	if err != nil {
		return fmt.Errorf("products: ensure indexes: %w", err)
	}
	return nil
}

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveStoreQuery("mongo", "create", time.Now())

	now := r.now()
	doc, err := newProductDocument(p, now)
	if err != nil {
		return err
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("products: insert: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func newProductDocument(p *models.Product, now time.Time) (productDocument, error) {
	price, err := toDecimal128("price", p.Price)
	if err != nil {
		return productDocument{}, err
	}
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Type:        string(p.Type),
		Price:       price,
		Quantity:    p.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.DiscountPrice != nil {
		dp, err := toDecimal128("discountPrice", *p.DiscountPrice)
		if err != nil {
			return productDocument{}, err
		}
		doc.DiscountPrice = &dp
	}
	return doc, nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveStoreQuery("mongo", "find_by_id", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	var doc productDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("products: find one: %w", err)
	}
	p := doc.toModel()
	return &p, nil
}

// mongoFilter translates filter into a query document.
func mongoFilter(filter ProductFilter) (bson.M, error) {
	q := bson.M{}
	if filter.Category != "" {
		q["category"] = filter.Category
	}
	if filter.Type != "" {
		q["type"] = string(filter.Type)
	}
	if filter.MinPrice != nil || filter.MaxPrice != nil {
		price := bson.M{}
		if filter.MinPrice != nil {
			v, err := toDecimal128("minPrice", *filter.MinPrice)
			if err != nil {
				return nil, err
			}
			price["$gte"] = v
		}
		if filter.MaxPrice != nil {
			v, err := toDecimal128("maxPrice", *filter.MaxPrice)
			if err != nil {
				return nil, err
			}
			price["$lte"] = v
		}
		q["price"] = price
	}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
		}
	}
	return q, nil
}

func (r *MongoProductRepository) Find(ctx context.Context, filter ProductFilter, opts ListOptions) ([]models.Product, int64, error) {
	defer metrics.ObserveStoreQuery("mongo", "find", time.Now())

	q, err := mongoFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("products: count: %w", err)
	}

	dir := 1
	if opts.Descending {
		dir = -1
	}
	findOpts := options.Find().
		SetSort(bson.D{{Key: string(opts.sortField()), Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(opts.Skip))
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := r.col.Find(ctx, q, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("products: find: %w", err)
	}
	products, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *MongoProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveStoreQuery("mongo", "all", time.Now())

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("products: find all: %w", err)
	}
	return decodeAll(ctx, cur)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]models.Product, error) {
	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

func (r *MongoProductRepository) UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	defer metrics.ObserveStoreQuery("mongo", "update", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	set, err := mongoSet(patch, r.now())
	if err != nil {
		return nil, err
	}

	var doc productDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("products: update: %w", err)
	}
	p := doc.toModel()
	return &p, nil
}

// mongoSet builds the $set document for patch.
func mongoSet(patch models.ProductPatch, now time.Time) (bson.M, error) {
	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description.Set {
		set["description"] = patch.Description.Value
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Price != nil {
		v, err := toDecimal128("price", *patch.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = v
	}
	if patch.DiscountPrice.Set {
		if patch.DiscountPrice.Value == nil {
			set["discountPrice"] = nil
		} else {
			v, err := toDecimal128("discountPrice", *patch.DiscountPrice.Value)
			if err != nil {
				return nil, err
			}
			set["discountPrice"] = v
		}
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	return set, nil
}

func (r *MongoProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	defer metrics.ObserveStoreQuery("mongo", "delete", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	var doc productDocument
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("products: delete: %w", err)
	}
	p := doc.toModel()
	return &p, nil
}

func (r *MongoProductRepository) Ping(ctx context.Context) error {
	return r.col.Database().Client().Ping(ctx, nil)
}

var _ ProductRepository = (*MongoProductRepository)(nil)
