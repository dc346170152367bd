package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/woodcraft-atelier/api/internal/gallery"
	"github.com/woodcraft-atelier/api/internal/platform/auth"
	"github.com/woodcraft-atelier/api/internal/platform/config"
	"github.com/woodcraft-atelier/api/internal/platform/idempotency"
	"github.com/woodcraft-atelier/api/internal/platform/storage"
	"github.com/woodcraft-atelier/api/internal/repositories"
	"github.com/woodcraft-atelier/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog   services.CatalogService
	Inquiries services.InquiryService
	Profiles  services.ProfileService
	Analytics services.AnalyticsService
	// Media is nil when no object store is configured.
	Media     services.MediaService
	System    services.SystemService
}

// Container wires repositories, services and per-process state for runtime use.
type Container struct {
	Config        config.Config
	Logger        *zap.Logger
	Build         services.BuildInfo
	Repositories  repositories.Registry
	Services      Services
	Idempotency   idempotency.Store
	Sessions      *gallery.Sessions
	Authenticator *auth.Authenticator

	closers []func(context.Context) error
}

// Infrastructure carries the clients NewContainer would otherwise dial.
// Tests and the memory backend fill it directly; production uses Dial.
type Infrastructure struct {
	Registry    repositories.Registry
	Objects     storage.ObjectStore
	Notifier    services.InquiryNotifier
	Idempotency idempotency.Store
	Verifier    auth.TokenVerifier
	// MediaBucket names the bucket when the config leaves it empty.
	MediaBucket string

	closers []func(context.Context) error
}

// AddCloser registers fn to run when the container closes, in reverse order.
func (i *Infrastructure) AddCloser(fn func(context.Context) error) {
	if fn != nil {
		i.closers = append(i.closers, fn)
	}
}

// NewContainer constructs the runtime dependencies around infra.
func NewContainer(cfg config.Config, logger *zap.Logger, build services.BuildInfo, infra Infrastructure) (*Container, error) {
	if infra.Registry == nil {
		return nil, errors.New("repositories registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	svc, err := buildServices(cfg, logger, build, infra)
	if err != nil {
		return nil, err
	}

	store := infra.Idempotency
	if store == nil {
		store = idempotency.NewMemoryStore()
	}

	var authenticator *auth.Authenticator
	if infra.Verifier != nil {
		authenticator = auth.NewAuthenticator(infra.Verifier)
	}

	sessions := gallery.NewSessions(svc.Catalog, gallery.SessionOptions{
		TTL:      cfg.Gallery.SessionTTL,
		PageSize: cfg.Gallery.PageSize,
		Logger:   logger,
	})

	c := &Container{
		Config:        cfg,
		Logger:        logger,
		Build:         build,
		Repositories:  infra.Registry,
		Services:      svc,
		Idempotency:   store,
		Sessions:      sessions,
		Authenticator: authenticator,
	}
	c.closers = append(c.closers, infra.Registry.Close)
	c.closers = append(c.closers, infra.closers...)
	c.closers = append(c.closers, func(context.Context) error {
		sessions.Close()
		return nil
	})
	return c, nil
}

// Close releases sessions, clients and repositories, newest first.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// RunIdempotencyCleanup removes expired idempotency records every interval
// until ctx is cancelled.
func (c *Container) RunIdempotencyCleanup(ctx context.Context) {
	interval := c.Config.Idempotency.CleanupInterval
	if interval <= 0 || c.Idempotency == nil {
		return
	}
	logger := c.Logger.Named("idempotency")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, time.Minute)
			removed, err := c.Idempotency.CleanupExpired(runCtx, now.UTC(), c.Config.Idempotency.CleanupBatchSize)
			cancel()
			if err != nil {
				logger.Error("idempotency cleanup error", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("idempotency cleanup removed records", zap.Int("count", removed))
			}
		}
	}
}

func buildServices(cfg config.Config, logger *zap.Logger, build services.BuildInfo, infra Infrastructure) (Services, error) {
	reg := infra.Registry
	var svc Services

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Projects:    reg.Projects(),
		Logger:      logger,
		MaxPageSize: cfg.Gallery.MaxPageSize,
		RetryWindow: cfg.Catalog.CounterRetryWindow,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	inquirySvc, err := services.NewInquiryService(services.InquiryServiceDeps{
		Inquiries:   reg.Inquiries(),
		Projects:    reg.Projects(),
		Notifier:    infra.Notifier,
		Logger:      logger,
		RetryWindow: cfg.Catalog.CounterRetryWindow,
		MaxPageSize: cfg.Gallery.MaxPageSize,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build inquiry service: %w", err)
	}
	svc.Inquiries = inquirySvc

	profileSvc, err := services.NewProfileService(services.ProfileServiceDeps{
		Profile: reg.Profile(),
		Logger:  logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build profile service: %w", err)
	}
	svc.Profiles = profileSvc

	analyticsSvc, err := services.NewAnalyticsService(services.AnalyticsServiceDeps{
		Projects:  reg.Projects(),
		Inquiries: reg.Inquiries(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build analytics service: %w", err)
	}
	svc.Analytics = analyticsSvc

	if infra.Objects != nil {
		bucket := cfg.Storage.Bucket
		if bucket == "" {
			bucket = infra.MediaBucket
		}
		mediaSvc, err := services.NewMediaService(services.MediaServiceDeps{
			Store:         infra.Objects,
			Bucket:        bucket,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			MaxBytes:      cfg.Storage.MaxUploadBytes,
			Logger:        logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build media service: %w", err)
		}
		svc.Media = mediaSvc
	}

	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
		Health: reg.Health(),
		Build:  build,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}
	svc.System = systemSvc

	return svc, nil
}
