//	@title			COS Relay API
//	@version		1.0
//	@description	Uploads images to Tencent Cloud Object Storage and issues pre-signed URLs.
//
//	@host		localhost:3000
//	@BasePath	/api

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cosrelay/service/internal/config"
	"github.com/cosrelay/service/internal/health"
	"github.com/cosrelay/service/internal/logger"
	"github.com/cosrelay/service/internal/metrics"
	appMiddleware "github.com/cosrelay/service/internal/middleware"
	"github.com/cosrelay/service/internal/objectkey"
	"github.com/cosrelay/service/internal/staging"
	"github.com/cosrelay/service/internal/storage"
	"github.com/cosrelay/service/internal/tracing"
	"github.com/cosrelay/service/internal/upload"

	_ "github.com/cosrelay/service/docs/swagger"
)

const serviceName = "cos-relay"

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	log := logger.Init(cfg.LogLevel, cfg.IsProduction())

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, &tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.AppEnv,
		OTLPEndpoint:   cfg.TracingEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	backend, err := storage.New(ctx, cfg.Driver, storage.Options{
		Endpoint:   cfg.Endpoint,
		AccessKey:  cfg.SecretID,
		SecretKey:  cfg.SecretKey,
		Bucket:     cfg.Bucket,
		Region:     cfg.Region,
		UseSSL:     cfg.UseSSL,
		PublicBase: cfg.PublicBase,
	})
	if err != nil {
		return err
	}
	store := metrics.NewInstrumentedStorage(backend)

	// Wire dependencies: stager + key resolver + storage → service → handler
	stager := staging.New(cfg.TempDir, cfg.UploadDir)
	svc := upload.NewService(store, stager, objectkey.NewResolver(cfg.KeyPrefix),
		time.Duration(cfg.SignExpirySeconds)*time.Second)
	uploadHandler := upload.NewHandler(svc, stager, cfg.MaxUploadSize)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metrics.HTTPMiddleware)
	r.Use(tracing.HTTPMiddleware(serviceName))

	r.Get("/health", health.LivenessHandler())
	r.Get("/ready", health.ReadinessHandler(svc, 5*time.Second))
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at http://localhost:<port>/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route(cfg.APIPrefix, uploadHandler.Routes)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv, "driver", cfg.Driver, "bucket", cfg.Bucket)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down gracefully")

		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
