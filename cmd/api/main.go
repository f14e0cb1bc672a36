package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/vendorhub-backend/api/routes"
	"github.com/angelmondragon/vendorhub-backend/internal/cart"
	"github.com/angelmondragon/vendorhub-backend/internal/catalog"
	"github.com/angelmondragon/vendorhub-backend/internal/checkout"
	"github.com/angelmondragon/vendorhub-backend/internal/customers"
	"github.com/angelmondragon/vendorhub-backend/internal/offers"
	"github.com/angelmondragon/vendorhub-backend/internal/receipts"
	"github.com/angelmondragon/vendorhub-backend/internal/users"
	"github.com/angelmondragon/vendorhub-backend/internal/wishlist"
	"github.com/angelmondragon/vendorhub-backend/pkg/auth/session"
	"github.com/angelmondragon/vendorhub-backend/pkg/config"
	"github.com/angelmondragon/vendorhub-backend/pkg/db"
	"github.com/angelmondragon/vendorhub-backend/pkg/logger"
	"github.com/angelmondragon/vendorhub-backend/pkg/metrics"
	"github.com/angelmondragon/vendorhub-backend/pkg/migrate"
	"github.com/angelmondragon/vendorhub-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT.SessionTTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:     users.NewRepository(dbClient.DB()),
		Sessions: sessionManager,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	customersService, err := customers.NewService(customers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	offersService, err := offers.NewService(offers.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create offers service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cart.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Offers:  offersService,
		Locker:  cart.RedisLocker{Client: redisClient, TTL: cfg.Checkout.CartLockTTL},
		TaxRate: cfg.Pricing.TaxRateDecimal(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	var processor checkout.PaymentProcessor
	switch cfg.Checkout.PaymentProvider {
	case "", "sandbox":
		processor = checkout.SandboxProcessor{}
	default:
		logg.Error(context.Background(), "unknown payment provider", fmt.Errorf("provider %q", cfg.Checkout.PaymentProvider))
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Repo:      checkout.NewRepository(dbClient.DB()),
		Tx:        dbClient,
		Processor: processor,
		Metrics:   metrics.NewCheckoutMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	receiptsService, err := receipts.NewService(receipts.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create receipts service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:   wishlist.NewRepository(dbClient.DB()),
		Offers: offersService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Registry:  registry,
			HTTP:      metrics.NewHTTPMetrics(registry),
			Sessions:  sessionManager,
			Users:     usersService,
			Customers: customersService,
			Catalog:   catalogService,
			Offers:    offersService,
			Cart:      cartService,
			Checkout:  checkoutService,
			Receipts:  receiptsService,
			Wishlist:  wishlistService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
