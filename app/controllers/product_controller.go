package controllers

import (
	"errors"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/requests"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/pkg/apperr"
	"github.com/shashiranjanraj/catalog/pkg/ctx"
	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/response"
	"github.com/shashiranjanraj/catalog/pkg/validate"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// Store handles POST /api/products.
func (pc *ProductController) Store(c *ctx.Context) {
	var input requests.CreateProductRequest
	if !c.BindJSON(&input) {
		return
	}

	product, err := pc.service.CreateProduct(c.Context(), input.ToProduct())
	if err != nil {
		c.Fail(classify(err))
		return
	}
	c.Created("Product created successfully", product)
}

// Index handles GET /api/products.
func (pc *ProductController) Index(c *ctx.Context) {
	params := services.ListParams{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		MinPrice: c.Query("minPrice"),
		MaxPrice: c.Query("maxPrice"),
	}

	page, err := pc.service.GetProducts(c.Context(), params, role(c))
	if err != nil {
		c.Fail(classify(err))
		return
	}
	c.Paginated("Products retrieved successfully", page.Items, response.Pagination{
		CurrentPage:     page.CurrentPage,
		TotalPages:      page.TotalPages,
		TotalItems:      page.TotalItems,
		ItemsPerPage:    page.ItemsPerPage,
		HasNextPage:     page.HasNextPage,
		HasPreviousPage: page.HasPreviousPage,
	})
}

// Stats handles GET /api/products/stats.
func (pc *ProductController) Stats(c *ctx.Context) {
	stats, err := pc.service.GetProductStats(c.Context())
	if err != nil {
		c.Fail(classify(err))
		return
	}
	c.Success("Statistics retrieved successfully", stats)
}

// Show handles GET /api/products/{id}.
func (pc *ProductController) Show(c *ctx.Context) {
	product, err := pc.service.GetProductByID(c.Context(), c.Param("id"), role(c))
	if err != nil {
		c.Fail(classify(err))
		return
	}
	c.Success("Product retrieved successfully", product)
}

// Update handles PUT /api/products/{id}.
func (pc *ProductController) Update(c *ctx.Context) {
	var input requests.UpdateProductRequest
	if !c.BindJSON(&input) {
		return
	}

	product, err := pc.service.UpdateProduct(c.Context(), c.Param("id"), input.ToPatch())
	if err != nil {
		c.Fail(classify(err))
		return
	}
	c.Success("Product updated successfully", product)
}

// Destroy handles DELETE /api/products/{id}.
func (pc *ProductController) Destroy(c *ctx.Context) {
	product, err := pc.service.DeleteProduct(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(classify(err))
		return
	}
	c.Success("Product deleted successfully", map[string]string{
		"id":  product.ID,
		"sku": product.SKU,
	})
}

func role(c *ctx.Context) models.Role {
	raw, _ := middleware.RoleFromContext(c.Context())
	r, _ := models.ParseRole(raw)
	return r
}

// classify maps domain errors onto API errors. Anything else is left for
// response.Fail to report as a 500.
func classify(err error) error {
	var verrs validate.Errors
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		return apperr.NotFound("Product not found")
	case errors.Is(err, repositories.ErrDuplicateSKU):
		return apperr.DuplicateSKU(err)
	case errors.Is(err, services.ErrDiscountNotBelowPrice):
		return apperr.Validation(validate.Errors{{Field: "discountPrice", Message: "The discountPrice must be less than price."}})
	case errors.Is(err, services.ErrEmptyUpdate):
		return apperr.Validation(validate.Errors{{Field: "body", Message: "At least one field must be provided for update."}})
	case errors.As(err, &verrs):
		return apperr.Validation(verrs)
	}
	return err
}
