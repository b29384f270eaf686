// Package kernel builds the catalog's HTTP handler: the global middleware
// stack, the operational endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/catalog/app/controllers"
	"github.com/shashiranjanraj/catalog/app/routes"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/pkg/apperr"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
	"github.com/shashiranjanraj/catalog/pkg/middleware"
	"github.com/shashiranjanraj/catalog/pkg/reqid"
	"github.com/shashiranjanraj/catalog/pkg/response"
	"github.com/shashiranjanraj/catalog/pkg/router"
)

const healthTimeout = 3 * time.Second

// Options are the collaborators the kernel mounts. Service is required.
type Options struct {
	Service *services.ProductService
	Cache   cache.Store
	Events  http.Handler
	Stream  http.Handler
	GraphQL http.Handler

	VerifyToken     func(token string) (string, error)
	CORSOrigins     []string // nil allows any origin
	RateLimitMax    int
	RateLimitWindow time.Duration
}

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(opts Options) *HTTPKernel {
	r := router.New()

	// Global middleware, outermost first: metrics (total latency), recovery,
	// request id (before anything logs), logger, CORS, rate limit, sanitize.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	cors := middleware.DefaultCORSOptions()
	if len(opts.CORSOrigins) > 0 {
		cors.AllowedOrigins = opts.CORSOrigins
	}
	r.Use(middleware.CORS(cors))
	if opts.RateLimitMax > 0 && opts.RateLimitWindow > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitMax, opts.RateLimitWindow))
	}
	r.Use(middleware.Sanitize)

	r.Get("/metrics", "metrics", metrics.Handler().ServeHTTP)
	r.Get("/health", "health", health(opts.Service, opts.Cache))

	routes.RegisterAPI(r, routes.API{
		Products:    controllers.NewProductController(opts.Service),
		Events:      opts.Events,
		Stream:      opts.Stream,
		GraphQL:     opts.GraphQL,
		VerifyToken: opts.VerifyToken,
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, apperr.MethodNotAllowed())
	})

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// Routes lists the mounted routes for `route:list`.
func (k *HTTPKernel) Routes() []router.RouteInfo {
	return k.router.Routes()
}

// health pings the product store and the cache. Either failing answers 503.
func health(svc *services.ProductService, store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := map[string]string{"store": "up", "cache": "up"}
		healthy := true

		if err := svc.Ping(ctx); err != nil {
			status["store"] = "down"
			healthy = false
		}
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				status["cache"] = "down"
				healthy = false
			}
		}

		if !healthy {
			response.Error(w, apperr.Unavailable(status))
			return
		}
		response.Success(w, "OK", status)
	}
}
