package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shopfront/catalog_api/internal/auth"
	"github.com/shopfront/catalog_api/internal/config"
	"github.com/shopfront/catalog_api/internal/identity"
	"github.com/shopfront/catalog_api/internal/metrics"
	"github.com/shopfront/catalog_api/internal/middleware"
	"github.com/shopfront/catalog_api/internal/notification"
	"github.com/shopfront/catalog_api/internal/product"
)

// Deps aggregates shared dependencies required to wire routes. At most one of DB and
// Mongo is expected; with neither, in-memory stores are used.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Mongo   *mongo.Database
	Cache   *redis.Client
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.DB == nil && d.Mongo == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("a database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	tokens, err := auth.NewTokens(d.Cfg.JWTSecret)
	if err != nil {
		return err
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{AllowOrigins: d.Cfg.CORSOrigins}))
	app.Use(d.Metrics.Middleware())
	app.Use(middleware.Audit(d.Logger))

	// Services and handlers
	identityRepo, productRepo := stores(d)
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(identitySvc, tokens)
	productSvc := product.NewService(productRepo, notification.NewLoggerNotifier(d.Logger))

	authHandler := auth.NewHandler(authSvc, d.Logger)
	productHandler := product.NewHandler(productSvc, d.Logger)

	// Public routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).SendString("app is working...")
	})
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", d.Metrics.Handler())
	RegisterAccountRoutes(app, authHandler)

	// Protected routes
	guards := []fiber.Handler{middleware.Authenticate(tokens, d.Logger)}
	if d.Cache != nil {
		guards = append(guards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterProductRoutes(app, productHandler, guards...)

	return nil
}

func stores(d Deps) (identity.Repository, product.Repository) {
	switch {
	case d.DB != nil:
		return identity.NewPostgresRepository(d.DB), product.NewPostgresRepository(d.DB)
	case d.Mongo != nil:
		return identity.NewMongoRepository(d.Mongo), product.NewMongoRepository(d.Mongo)
	default:
		d.Logger.Warn("no database configured, using in-memory stores")
		return identity.NewMemoryRepository(), product.NewMemoryRepository()
	}
}
