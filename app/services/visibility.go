package services

import (
	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/app/repositories"
)

// Visibility is the product visibility rule for one caller role. Listings
// and single-product reads both go through it.
type Visibility struct {
	publicOnly bool
}

// VisibilityFor returns the rule for role. Only admins see private products.
func VisibilityFor(role models.Role) Visibility {
	return Visibility{publicOnly: !role.IsAdmin()}
}

// Apply narrows filter to what the role may see, overriding any requested type.
func (v Visibility) Apply(filter *repositories.ProductFilter) {
	if v.publicOnly {
		filter.Type = models.ProductTypePublic
	}
}

// Allows reports whether the role may see p.
func (v Visibility) Allows(p models.Product) bool {
	return !v.publicOnly || p.Type == models.ProductTypePublic
}
