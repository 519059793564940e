package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/ecommerce-service/internal/cache"
	"github.com/fjod/go_cart/ecommerce-service/internal/circuitbreaker"
	"github.com/fjod/go_cart/ecommerce-service/internal/config"
	"github.com/fjod/go_cart/ecommerce-service/internal/domain"
	h "github.com/fjod/go_cart/ecommerce-service/internal/http"
	"github.com/fjod/go_cart/ecommerce-service/internal/logger"
	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/fjod/go_cart/ecommerce-service/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New("info", "console")
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Incoming traceparent headers become the request span context, so the
	// trace ids reach the request logger.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	repo, err := openRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open repository")
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	contactCache := cache.NewManager(cache.WithTTL(cfg.ContactCacheTTL))
	breaker := circuitbreaker.New[*domain.ContactPage]("contacts-store", circuitbreaker.DefaultSettings(), log)

	router := h.NewRouter(h.RouterConfig{
		Contacts:           service.NewContactService(repo, contactCache, breaker),
		Carts:              service.NewCartService(repo),
		Health:             repo,
		Logger:             log,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "ecommerce-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("ecommerce service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func openRepository(cfg *config.Config) (*repository.Repository, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return repository.NewSQLiteRepository(cfg.SQLitePath)
	}
	return repository.NewRepository(&repository.Credentials{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
}
