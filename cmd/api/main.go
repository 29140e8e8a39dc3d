package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/hostelgrievance/grievance-backend/api/controllers"
	"github.com/hostelgrievance/grievance-backend/api/routes"
	"github.com/hostelgrievance/grievance-backend/internal/auth"
	"github.com/hostelgrievance/grievance-backend/internal/catalog"
	"github.com/hostelgrievance/grievance-backend/internal/complaints"
	"github.com/hostelgrievance/grievance-backend/internal/locations"
	"github.com/hostelgrievance/grievance-backend/internal/notifications"
	"github.com/hostelgrievance/grievance-backend/internal/staff"
	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/auth/session"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/db"
	"github.com/hostelgrievance/grievance-backend/pkg/instance"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
	"github.com/hostelgrievance/grievance-backend/pkg/metrics"
	"github.com/hostelgrievance/grievance-backend/pkg/migrate"
	"github.com/hostelgrievance/grievance-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		ServiceName: cfg.App.ServiceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildDeps(cfg, logg, dbClient, redisClient, sessionManager, registry)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

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
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildDeps(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessionManager *session.Manager,
	registry *prometheus.Registry,
) (routes.Deps, error) {
	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	locationRepo := locations.NewRepository(gormDB)
	staffRepo := staff.NewRepository(gormDB)
	complaintRepo := complaints.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	userService, err := users.NewService(userRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}
	catalogService, err := catalog.NewService(catalogRepo, dbClient, redisClient, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	locationService, err := locations.NewService(locationRepo, redisClient, logg)
	if err != nil {
		return routes.Deps{}, err
	}
	staffService, err := staff.NewService(staff.ServiceParams{
		DB:             dbClient,
		Staff:          staffRepo,
		Users:          userRepo,
		Locations:      locationRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	complaintService, err := complaints.NewService(complaints.ServiceParams{
		DB:            dbClient,
		Complaints:    complaintRepo,
		Staff:         staffRepo,
		Locations:     locationRepo,
		Catalog:       catalogRepo,
		Notifications: notificationRepo,
		Metrics:       metrics.NewComplaintMetrics(registry),
		Logger:        logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Store:    redisClient,
		Sessions: sessionManager,
		Ready: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
		},
		Registry:      registry,
		HTTPMetrics:   metrics.NewHTTPMetrics(registry),
		Auth:          authService,
		Users:         userService,
		Complaints:    complaintService,
		Notifications: notificationService,
		Catalog:       catalogService,
		Locations:     locationService,
		Staff:         staffService,
	}, nil
}
