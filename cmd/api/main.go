package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/angelmondragon/lostfound-backend/api/routes"
	"github.com/angelmondragon/lostfound-backend/internal/audit"
	"github.com/angelmondragon/lostfound-backend/internal/auth"
	"github.com/angelmondragon/lostfound-backend/internal/catalog"
	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/internal/profiles"
	"github.com/angelmondragon/lostfound-backend/internal/users"
	"github.com/angelmondragon/lostfound-backend/pkg/auth/session"
	"github.com/angelmondragon/lostfound-backend/pkg/config"
	"github.com/angelmondragon/lostfound-backend/pkg/db"
	"github.com/angelmondragon/lostfound-backend/pkg/imaging"
	"github.com/angelmondragon/lostfound-backend/pkg/instance"
	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/metrics"
	"github.com/angelmondragon/lostfound-backend/pkg/migrate"
	"github.com/angelmondragon/lostfound-backend/pkg/redis"
	"github.com/angelmondragon/lostfound-backend/pkg/storage"
	"github.com/angelmondragon/lostfound-backend/pkg/storage/gcs"
	"github.com/angelmondragon/lostfound-backend/pkg/storage/local"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
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
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(reg)
	auditMetrics := metrics.NewAuditMetrics(reg)
	cacheMetrics := metrics.NewCacheMetrics(reg)

	blobs, err := newBlobStore(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap blob store", err)
		return err
	}

	var summaryCache catalog.SummaryCache
	if cfg.Catalog.UsesLocalCache() {
		summaryCache = catalog.NewLocalSummaryCache(cfg.Catalog.SummaryCacheTTL, cacheMetrics)
	} else {
		summaryCache = catalog.NewRedisSummaryCache(redisClient, cfg.Catalog.SummaryCacheTTL, logg, cacheMetrics)
	}

	itemRepo := items.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Items:  itemRepo,
		Cache:  summaryCache,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		return err
	}

	itemService, err := items.NewService(items.ServiceParams{
		Repo:  itemRepo,
		Blobs: blobs,
		ImageOptions: imaging.Options{
			MaxDimension: cfg.Storage.ImageMaxDimension,
			Quality:      cfg.Storage.ImageQuality,
		},
		Invalidator: catalogService,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create item service", err)
		return err
	}

	profileService, err := profiles.NewService(profiles.ServiceParams{
		DB:     dbClient,
		Items:  itemService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create profile service", err)
		return err
	}

	auditRepo := audit.NewRepository(dbClient.DB())
	recorder, err := audit.NewRecorder(audit.RecorderParams{
		Repo:        auditRepo,
		AdminPrefix: cfg.Auth.AdminPrefix,
		Config:      cfg.Audit,
		Logger:      logg,
		Metrics:     auditMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create login audit recorder", err)
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		Recorder:       recorder,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			BlobStore:    blobs,
			RateLimit:    redisClient,
			Sessions:     sessionManager,
			HTTPMetrics:  httpMetrics,
			Gatherer:     reg,
			Auth:         authService,
			Catalog:      catalogService,
			Items:        itemService,
			Profiles:     profileService,
			LoginHistory: auditRepo,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-sigCtx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}

func newBlobStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.BlobStore, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Storage.Driver), config.StorageDriverGCS) {
		return gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	}
	return local.New(cfg.Storage.LocalDir)
}
