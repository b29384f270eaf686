package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/pkg/event"
	"github.com/shashiranjanraj/catalog/pkg/logger"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
)

var (
	// ErrDiscountNotBelowPrice is returned when a product would end up with
	// a discount price that is not strictly below its price.
	ErrDiscountNotBelowPrice = errors.New("discount price must be less than price")
	// ErrEmptyUpdate is returned for a patch that changes nothing.
	ErrEmptyUpdate = errors.New("at least one field must be provided for update")
)

// ProductService is the catalogue's business logic. It owns the statistics
// cache and invalidates it on every successful mutation.
type ProductService struct {
	repo   repositories.ProductRepository
	stats  *StatsCache
	events *event.Bus
}

// NewProductService wires the service. events may be nil.
func NewProductService(repo repositories.ProductRepository, stats *StatsCache, events *event.Bus) *ProductService {
	return &ProductService{repo: repo, stats: stats, events: events}
}

// CreateProduct stores p with a normalized SKU and a default type of public.
func (s *ProductService) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	p.SKU = models.NormalizeSKU(p.SKU)
	if p.Type == "" {
		p.Type = models.ProductTypePublic
	}
	if p.DiscountPrice != nil && !p.DiscountPrice.LessThan(p.Price) {
		return nil, ErrDiscountNotBelowPrice
	}

	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "create", event.ProductCreated, &p)
	logger.WithCtx(ctx).Info("product created", "id", p.ID, "sku", p.SKU)
	return &p, nil
}

// GetProductByID returns the product if role may see it. Hidden products are
// reported as repositories.ErrProductNotFound.
func (s *ProductService) GetProductByID(ctx context.Context, id string, role models.Role) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !VisibilityFor(role).Allows(*p) {
		return nil, repositories.ErrProductNotFound
	}
	return p, nil
}

// GetProducts lists one page of the products role may see.
func (s *ProductService) GetProducts(ctx context.Context, params ListParams, role models.Role) (Page, error) {
	q, err := BuildProductQuery(params, role)
	if err != nil {
		return Page{}, err
	}
	items, total, err := s.repo.Find(ctx, q.Filter, q.Options)
	if err != nil {
		return Page{}, err
	}
	return NewPage(items, q.Page, q.Limit, total), nil
}

// GetProductStats serves the cached snapshot, recomputing it on a miss.
func (s *ProductService) GetProductStats(ctx context.Context) (*models.ProductStats, error) {
	if stats, ok := s.stats.Get(ctx); ok {
		return stats, nil
	}

	start := time.Now()
	products, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	stats := AggregateProductStats(products)
	metrics.StatsComputeDuration.Observe(time.Since(start).Seconds())

	if err := s.stats.Set(ctx, &stats); err != nil {
		logger.WithCtx(ctx).Warn("stats cache write failed", "error", err)
	}
	return &stats, nil
}

// UpdateProduct applies patch. The discount rule is checked against the
// product as it would be after the update.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := patch.ApplyTo(*current)
	if merged.DiscountPrice != nil && !merged.DiscountPrice.LessThan(merged.Price) {
		return nil, ErrDiscountNotBelowPrice
	}

	updated, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "update", event.ProductUpdated, updated)
	logger.WithCtx(ctx).Info("product updated", "id", updated.ID, "sku", updated.SKU)
	return updated, nil
}

// DeleteProduct removes the product and returns it as it was.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "delete", event.ProductDeleted, deleted)
	logger.WithCtx(ctx).Info("product deleted", "id", deleted.ID, "sku", deleted.SKU)
	return deleted, nil
}

// AllProducts returns the whole catalogue, regardless of visibility.
func (s *ProductService) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.All(ctx)
}

// ClearStatsCache drops the cached snapshot.
func (s *ProductService) ClearStatsCache(ctx context.Context) error {
	if err := s.stats.Invalidate(ctx); err != nil {
		return fmt.Errorf("clear stats cache: %w", err)
	}
	return nil
}

// Ping checks the product store.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// afterMutation runs before the caller responds: the next stats read must
// see the change.
func (s *ProductService) afterMutation(ctx context.Context, op, name string, p *models.Product) {
	metrics.ProductMutations.WithLabelValues(op).Inc()
	if err := s.stats.Invalidate(ctx); err != nil {
		logger.WithCtx(ctx).Error("stats cache invalidation failed", "op", op, "error", err)
	}
	s.events.Fire(event.Event{Name: name, Payload: *p})
}
