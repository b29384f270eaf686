// Package bootstrap wires the product store, the stats cache, the event feed
// and the product service from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gql "github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/catalog/app/graphql"
	"github.com/shashiranjanraj/catalog/app/repositories"
	"github.com/shashiranjanraj/catalog/app/services"
	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/internal/kernel"
	"github.com/shashiranjanraj/catalog/pkg/auth"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/database"
	"github.com/shashiranjanraj/catalog/pkg/event"
	pkggraphql "github.com/shashiranjanraj/catalog/pkg/graphql"
	"github.com/shashiranjanraj/catalog/pkg/logger"
	"github.com/shashiranjanraj/catalog/pkg/mongodb"
	"github.com/shashiranjanraj/catalog/pkg/sse"
	"github.com/shashiranjanraj/catalog/pkg/ws"
)

const logsCollection = "logs"

// App is a booted catalog. Close releases every connection it opened.
type App struct {
	Repo    repositories.ProductRepository
	Cache   cache.Store
	Events  *event.Bus
	Hub     *ws.Hub
	Stream  *sse.Broker
	Service *services.ProductService

	// DB is set when PRODUCT_STORE is sql.
	DB *gorm.DB

	mongo   *mongo.Client
	closers []func() error
}

// Boot connects the configured store and cache and builds the service.
// Product events are forwarded to the WebSocket hub and the SSE broker; the
// caller runs the hub.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("bootstrap: load config: %w", err)
	}

	a := &App{Events: event.NewBus(), Hub: ws.NewHub(), Stream: sse.NewBroker()}

	if err := a.openStore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.openCache(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	if config.LogToMongo() {
		if err := a.openMongoLogs(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	hub, stream := a.Hub, a.Stream
	a.Events.ListenAll(func(e event.Event) {
		hub.Publish(e)
		stream.Publish(e.Name, e)
	})

	stats := services.NewStatsCache(a.Cache, config.StatsCacheTTL())
	a.Service = services.NewProductService(a.Repo, stats, a.Events)

	logger.Info("catalog booted",
		"store", config.ProductStore(),
		"cache", a.Cache.Driver(),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch store := config.ProductStore(); store {
	case "mongo":
		client, err := a.mongoClient(ctx)
		if err != nil {
			return err
		}
		repo := repositories.NewMongoProductRepository(client.Database(config.MongoDatabase()))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		a.Repo = repo
	case "sql":
		db, err := OpenSQL()
		if err != nil {
			return err
		}
		a.DB = db
		a.closers = append(a.closers, func() error { return database.Close(db) })
		a.Repo = repositories.NewSQLProductRepository(db)
	default:
		return fmt.Errorf("bootstrap: unknown PRODUCT_STORE %q", store)
	}
	return nil
}

func (a *App) openCache(ctx context.Context) error {
	if config.CacheDriver() != "redis" {
		a.Cache = cache.NewMemoryStore()
		return nil
	}
	store, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	a.Cache = store
	a.closers = append(a.closers, store.Close)
	return nil
}

// openMongoLogs fans log records out to MONGO_DATABASE.logs.
func (a *App) openMongoLogs(ctx context.Context) error {
	client, err := a.mongoClient(ctx)
	if err != nil {
		return err
	}
	h := logger.NewMongoHandler(ctx, client.Database(config.MongoDatabase()).Collection(logsCollection), slog.LevelInfo)
	logger.Setup(h)
	// Runs before the client disconnects; closers are released in reverse.
	a.closers = append(a.closers, func() error {
		h.Close()
		logger.Setup()
		return nil
	})
	return nil
}

// mongoClient connects once and shares the client between the product
// store and the log sink.
func (a *App) mongoClient(ctx context.Context) (*mongo.Client, error) {
	if a.mongo != nil {
		return a.mongo, nil
	}
	client, err := mongodb.Connect(ctx, config.MongoURI())
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	a.mongo = client
	a.closers = append(a.closers, func() error { return mongodb.Disconnect(client) })
	return client, nil
}

// EnsureMongoIndexes connects to MONGO_URI and creates the product store's
// indexes in MONGO_DATABASE.
func EnsureMongoIndexes(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("bootstrap: load config: %w", err)
	}
	client, err := mongodb.Connect(ctx, config.MongoURI())
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer mongodb.Disconnect(client) //nolint:errcheck

	repo := repositories.NewMongoProductRepository(client.Database(config.MongoDatabase()))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

// OpenSQL opens the database named by DB_DRIVER and DATABASE_DSN.
func OpenSQL() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("bootstrap: load config: %w", err)
	}
	db, err := database.Open(config.DatabaseDriver(), config.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return db, nil
}

// Kernel builds the HTTP kernel for the booted service.
func (a *App) Kernel() (*kernel.HTTPKernel, error) {
	schema, err := graphql.NewSchema(a.Service)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: graphql schema: %w", err)
	}
	return NewKernel(a.Service, a.Cache, a.Hub, a.Stream, schema), nil
}

// NewKernel mounts svc behind the configured middleware. It needs no live
// connections, so `route:list` can use it too.
func NewKernel(svc *services.ProductService, store cache.Store, hub *ws.Hub, stream *sse.Broker, schema gql.Schema) *kernel.HTTPKernel {
	return kernel.NewHTTPKernel(kernel.Options{
		Service:         svc,
		Cache:           store,
		Events:          hub,
		Stream:          stream,
		GraphQL:         pkggraphql.Handler(schema),
		VerifyToken:     auth.RoleFromToken,
		CORSOrigins:     config.CORSOrigins(),
		RateLimitMax:    config.RateLimitMax(),
		RateLimitWindow: config.RateLimitWindow(),
	})
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
