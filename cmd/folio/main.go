// Package main is the entry point for the Folio API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/handlers"
	"folio/internal/middleware"
	"folio/internal/openapi"
	"folio/internal/router"
	"folio/internal/slug"
	"folio/internal/storage"
	"folio/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("FOLIO_CONFIG"), "optional config file (yaml, toml, or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(config.SetupLogger(cfg.Log, os.Stdout))
	slog.Info("configuration loaded",
		"env", cfg.Server.Env,
		"addr", cfg.Addr(),
		"db_driver", cfg.Database.Driver,
	)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The SQLite file's directory must exist before the driver opens it.
	if cfg.Database.Driver == database.DriverSQLite && cfg.Database.URL == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
			return err
		}
	}

	db, err := database.Connect(ctx, cfg.Database.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		return err
	}

	slugs := slug.New(slug.SystemClock)

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(ctx, db, slugs); err != nil {
			return err
		}
	}

	// Object storage is optional; avatar uploads answer 503 without it.
	var avatars handlers.AvatarStorage
	storageClient, err := storage.New(
		cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey,
		cfg.S3.Bucket, cfg.S3.PublicURL,
	)
	if err != nil {
		return err
	}
	if storageClient != nil {
		avatars = storageClient
		slog.Info("s3 storage configured", "endpoint", cfg.S3.Endpoint, "bucket", storageClient.Bucket())
	} else {
		slog.Warn("s3 storage not configured, avatar uploads disabled")
	}

	var limiter middleware.Limiter
	switch cfg.RateLimit.Backend {
	case "valkey":
		client, err := cache.ConnectValkey(ctx, cfg.Valkey.Host, cfg.Valkey.Port, cfg.Valkey.Password)
		if err != nil {
			return err
		}
		defer client.Close()
		limiter = cache.NewWindowLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	default:
		mem := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		defer mem.Stop()
		limiter = mem
	}
	slog.Info("rate limiter ready",
		"backend", cfg.RateLimit.Backend,
		"requests", cfg.RateLimit.Requests,
		"window", cfg.RateLimit.Window.String(),
	)

	docgen := openapi.NewGenerator()
	r := router.New(router.Deps{
		Articles: handlers.NewArticles(store.NewArticleStore(db), slugs),
		Authors:  handlers.NewAuthors(store.NewAuthorStore(db), avatars),
		Docs:     handlers.NewDocs(),
		Docgen:   docgen,
		Limiter:  limiter,
		Origins:  cfg.AllowedOrigins(),
		DB:       db,
	})
	if err := docgen.Validate(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests time to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
