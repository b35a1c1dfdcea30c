package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/raktarhub/raktarhub-backend/api/routes"
	"github.com/raktarhub/raktarhub-backend/internal/allocation"
	"github.com/raktarhub/raktarhub-backend/internal/cache"
	"github.com/raktarhub/raktarhub-backend/internal/catalog"
	"github.com/raktarhub/raktarhub-backend/internal/picking"
	"github.com/raktarhub/raktarhub-backend/internal/projects"
	"github.com/raktarhub/raktarhub-backend/internal/racks"
	"github.com/raktarhub/raktarhub-backend/internal/reservations"
	"github.com/raktarhub/raktarhub-backend/internal/stock"
	"github.com/raktarhub/raktarhub-backend/pkg/config"
	"github.com/raktarhub/raktarhub-backend/pkg/db"
	"github.com/raktarhub/raktarhub-backend/pkg/logger"
	"github.com/raktarhub/raktarhub-backend/pkg/metrics"
	"github.com/raktarhub/raktarhub-backend/pkg/migrate"
	"github.com/raktarhub/raktarhub-backend/pkg/redis"
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

	var redisClient *redis.Client
	invalidator := cache.NewNopInvalidator()
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		invalidator = cache.NewRedisInvalidator(redisClient, logg)
	} else {
		logg.Warn(context.Background(), "redis not configured, view invalidation disabled")
	}

	registry := prometheus.NewRegistry()
	ops := metrics.NewOperationMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	rackRepo := racks.NewRepository(dbClient.DB())
	stockRepo := stock.NewRepository(dbClient.DB())
	reservationRepo := reservations.NewRepository(dbClient.DB())
	projectRepo := projects.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, invalidator)
	requireService(logg, "catalog", err)

	rackService, err := racks.NewService(rackRepo, invalidator)
	requireService(logg, "racks", err)

	stockService, err := stock.NewService(stockRepo, rackRepo, catalogRepo, reservationRepo, dbClient, invalidator, ops)
	requireService(logg, "stock", err)

	projectService, err := projects.NewService(projectRepo, reservationRepo, catalogRepo, dbClient, invalidator, ops)
	requireService(logg, "projects", err)

	allocationService, err := allocation.NewService(projectRepo, reservationRepo, stockRepo, catalogRepo, dbClient, invalidator, ops)
	requireService(logg, "allocation", err)

	pickingService, err := picking.NewService(projectRepo, reservationRepo, stockRepo, catalogRepo, dbClient, invalidator, ops)
	requireService(logg, "picking", err)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			catalogService,
			rackService,
			stockService,
			projectService,
			allocationService,
			pickingService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to create service", err)
	os.Exit(1)
}
