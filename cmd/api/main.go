package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/woodcraft-atelier/api/internal/di"
	"github.com/woodcraft-atelier/api/internal/platform/config"
	"github.com/woodcraft-atelier/api/internal/platform/observability"
	"github.com/woodcraft-atelier/api/internal/platform/secrets"
	"github.com/woodcraft-atelier/api/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "atelier api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLoggerWithLevel(os.Getenv("API_LOG_LEVEL"))
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	environment, secretsCfg, err := config.Bootstrap()
	if err != nil {
		return fmt.Errorf("read bootstrap settings: %w", err)
	}

	fetcherOpts := []secrets.Option{
		secrets.WithLogger(logger),
		secrets.WithDefaultProject(secretsCfg.ProjectID),
		secrets.WithFallbackFile(secretsCfg.FallbackFile),
	}
	if file := strings.TrimSpace(os.Getenv("API_FIREBASE_CREDENTIALS_FILE")); file != "" {
		fetcherOpts = append(fetcherOpts, secrets.WithClientOptions(option.WithCredentialsFile(file)))
	}
	fetcher, err := secrets.NewFetcher(ctx, fetcherOpts...)
	if err != nil {
		return fmt.Errorf("initialise secret fetcher: %w", err)
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)))
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Error("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		return fmt.Errorf("load configuration: %w", err)
	}

	build := services.BuildInfo{
		Version:     buildVersion(),
		Environment: environment,
		StartedAt:   startedAt,
	}

	infra, err := di.Dial(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("dial infrastructure: %w", err)
	}
	container, err := di.NewContainer(cfg, logger, build, infra)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("container close error", zap.Error(err))
		}
	}()

	go container.RunIdempotencyCleanup(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      container.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverLogger := logger.Named("http").With(
		zap.String("addr", server.Addr),
		zap.String("backend", cfg.Catalog.Backend),
		zap.Bool("admin", container.Authenticator != nil),
	)
	serveErr := make(chan error, 1)
	go func() {
		serverLogger.Info("atelier api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

func buildVersion() string {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		return "dev"
	}
	if commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA")); commit != "" {
		return version + "+" + commit
	}
	return version
}
