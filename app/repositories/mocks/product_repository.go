// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
)

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductRepository) Find(ctx context.Context, filter repositories.ProductFilter, opts repositories.ListOptions) ([]models.Product, int64, error) {
	args := m.Called(ctx, filter, opts)
	var products []models.Product
	if res := args.Get(0); res != nil {
		products = res.([]models.Product)
	}
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductRepository) UpdateByID(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	args := m.Called(ctx, id, patch)
	if res := args.Get(0); res != nil {
		return res.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductRepository) DeleteByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProductRepository) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)
