package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rmadriz/portfolio-backend/api/routes"
	"github.com/rmadriz/portfolio-backend/internal/auth"
	"github.com/rmadriz/portfolio-backend/internal/cache"
	"github.com/rmadriz/portfolio-backend/internal/contact"
	"github.com/rmadriz/portfolio-backend/internal/hero"
	"github.com/rmadriz/portfolio-backend/internal/media"
	"github.com/rmadriz/portfolio-backend/internal/projects"
	"github.com/rmadriz/portfolio-backend/internal/skills"
	"github.com/rmadriz/portfolio-backend/internal/storage"
	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/db"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
	"github.com/rmadriz/portfolio-backend/pkg/metrics"
	"github.com/rmadriz/portfolio-backend/pkg/migrate"
	"github.com/rmadriz/portfolio-backend/pkg/redis"
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

	// Redis is optional. Without it the response cache and login throttle
	// degrade to no-ops.
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis, continuing without cache", err)
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logg.Error(context.Background(), "error closing redis", err)
				}
			}()
		}
	}

	responseCache := cache.New(redisClient, cfg.Cache, logg)

	cloudProviders, err := storage.CloudProviders(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to configure cloud storage", err)
		os.Exit(1)
	}
	localStore, err := storage.NewLocal(cfg.Uploads.Dir, "/uploads", logg)
	if err != nil {
		logg.Error(context.Background(), "failed to configure local storage", err)
		os.Exit(1)
	}

	var limiter *redis.Client
	if redisClient != nil {
		limiter = redisClient
	}

	authService, err := newAuthService(dbClient, limiter, cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	projectsService, err := projects.NewService(dbClient, projects.NewRepository(dbClient.DB()), responseCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}

	skillsService, err := skills.NewService(skills.NewRepository(dbClient.DB()), responseCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create skills service", err)
		os.Exit(1)
	}

	contactService, err := contact.NewService(contact.NewRepository(dbClient.DB()), responseCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create contact service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(
		media.NewRepository(dbClient.DB()),
		cloudProviders,
		localStore,
		cfg.Uploads.MaxUploadBytes(),
		responseCache,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	heroService, err := hero.NewService(hero.NewRepository(dbClient.DB()), responseCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create hero service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		HTTPMetrics:  httpMetrics,
		MetricsHTTP:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Cache:        responseCache,
		AuthService:  authService,
		Projects:     projectsService,
		Skills:       skillsService,
		Contact:      contactService,
		Media:        mediaService,
		Hero:         heroService,
		UploadsDir:   cfg.Uploads.Dir,
		ServeUploads: true,
	})

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
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func newAuthService(dbClient *db.Client, limiter *redis.Client, cfg *config.Config, logg *logger.Logger) (auth.Service, error) {
	repo := auth.NewRepository(dbClient.DB())
	if limiter == nil {
		return auth.NewService(repo, nil, cfg.JWT, cfg.AuthRateLimit, logg)
	}
	return auth.NewService(repo, limiter, cfg.JWT, cfg.AuthRateLimit, logg)
}
