package di

import (
	"net/http"
	"strings"

	"github.com/woodcraft-atelier/api/internal/handlers"
	"github.com/woodcraft-atelier/api/internal/i18n"
	"github.com/woodcraft-atelier/api/internal/platform/observability"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
)

// Handler assembles the HTTP surface: probes, the public catalog and, when
// admin auth is configured, the back office.
func (c *Container) Handler() http.Handler {
	cfg := c.Config
	projectID := traceProjectID(c)
	paging := pagination.Options{
		DefaultPageSize: cfg.Gallery.PageSize,
		MaxPageSize:     cfg.Gallery.MaxPageSize,
	}

	projectHandlers := handlers.NewProjectHandlers(c.Services.Catalog,
		handlers.WithProjectPaging(paging.DefaultPageSize, paging.MaxPageSize),
	)
	galleryHandlers := handlers.NewGalleryHandlers(c.Sessions,
		handlers.WithGalleryCookie(cfg.Gallery.SessionCookie, cfg.Environment != "local"),
	)
	inquiryHandlers := handlers.NewInquiryHandlers(c.Services.Inquiries,
		handlers.WithInquiryRateLimit(cfg.Inquiries.RatePerMinute, cfg.Inquiries.Burst),
		handlers.WithInquiryIdempotency(c.Idempotency, cfg.Idempotency.TTL),
		handlers.WithInquiryLogger(c.Logger.Named("inquiries")),
	)
	contentHandlers := handlers.NewContentHandlers(c.Services.Profiles)

	opts := []handlers.Option{
		handlers.WithRequestTimeout(cfg.Server.RequestTimeout),
		handlers.WithMiddlewares(
			observability.TraceMiddleware(projectID),
			observability.InjectLoggerMiddleware(c.Logger),
			i18n.Middleware,
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(c.Logger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(
			handlers.WithHealthSystemService(c.Services.System),
			handlers.WithHealthBuildInfo(c.Build),
		)),
		handlers.WithPublicRoutes(
			projectHandlers.Routes,
			galleryHandlers.Routes,
			inquiryHandlers.Routes,
			contentHandlers.Routes,
		),
	}

	if c.Authenticator != nil {
		adminHandlers := handlers.NewAdminHandlers(handlers.AdminDeps{
			Authenticator:  c.Authenticator,
			Catalog:        c.Services.Catalog,
			Inquiries:      c.Services.Inquiries,
			Profiles:       c.Services.Profiles,
			Analytics:      c.Services.Analytics,
			Media:          c.Services.Media,
			MaxUploadBytes: cfg.Storage.MaxUploadBytes,
			Paging:         paging,
		})
		opts = append(opts, handlers.WithAdminRoutes(adminHandlers.Routes))
	} else {
		c.Logger.Info("admin routes disabled: no admin auth configured")
	}

	return handlers.NewRouter(opts...)
}

func traceProjectID(c *Container) string {
	if id := strings.TrimSpace(c.Config.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(c.Config.Firestore.ProjectID)
}
