package routes

import (
	"net/http"

	"github.com/shashiranjanraj/catalog/app/controllers"
	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/ctx"
	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/rbac"
	"github.com/shashiranjanraj/catalog/pkg/router"
)

// API holds the handlers mounted by RegisterAPI. Events, Stream and GraphQL
// are optional; nil leaves the route out.
type API struct {
	Products *controllers.ProductController
	Events   http.Handler // WebSocket feed
	Stream   http.Handler // Server-Sent Events feed
	GraphQL  http.Handler

	// VerifyToken resolves a bearer token to a role name. Nil accepts only
	// the X-User-Role header.
	VerifyToken func(token string) (string, error)
}

func RegisterAPI(r *router.Router, api API) {
	roleAuth := middleware.RoleAuth(middleware.RoleAuthOptions{
		Roles:       []string{string(models.RoleAdmin), string(models.RoleUser)},
		VerifyToken: api.VerifyToken,
	})
	adminOnly := rbac.HasRole(string(models.RoleAdmin))

	pc := api.Products
	products := r.Group("/api/products", roleAuth)
	products.Post("/", "products.store", ctx.Wrap(pc.Store), adminOnly)
	products.Get("/", "products.index", ctx.Wrap(pc.Index))
	products.Get("/stats", "products.stats", ctx.Wrap(pc.Stats), adminOnly)
	if api.Events != nil {
		products.Get("/events", "products.events", api.Events.ServeHTTP, adminOnly)
	}
	if api.Stream != nil {
		products.Get("/events/stream", "products.stream", api.Stream.ServeHTTP, adminOnly)
	}
	products.Get("/{id}", "products.show", ctx.Wrap(pc.Show))
	products.Put("/{id}", "products.update", ctx.Wrap(pc.Update), adminOnly)
	products.Delete("/{id}", "products.destroy", ctx.Wrap(pc.Destroy), adminOnly)

	if api.GraphQL != nil {
		r.Post("/graphql", "graphql", api.GraphQL.ServeHTTP, roleAuth)
	}
}
