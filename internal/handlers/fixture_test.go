package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/gallery"
	"github.com/woodcraft-atelier/api/internal/i18n"
	"github.com/woodcraft-atelier/api/internal/platform/auth"
	"github.com/woodcraft-atelier/api/internal/platform/idempotency"
	"github.com/woodcraft-atelier/api/internal/platform/storage"
	"github.com/woodcraft-atelier/api/internal/repositories/memory"
	"github.com/woodcraft-atelier/api/internal/services"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

var testEpoch = time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t        *testing.T
	registry *memory.Registry
	objects  *storage.MemoryStore
	idem     *idempotency.MemoryStore
	sessions *gallery.Sessions
	verifier *auth.HS256Verifier
	router   chi.Router
}

type fixtureConfig struct {
	ratePerMinute int
	burst         int
}

type fixtureOption func(*fixtureConfig)

func withInquiryLimit(perMinute, burst int) fixtureOption {
	return func(c *fixtureConfig) {
		c.ratePerMinute = perMinute
		c.burst = burst
	}
}

// newFixture wires every handler against the memory backends and real services.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := memory.NewRegistry()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	catalog, err := services.NewCatalogService(services.CatalogServiceDeps{
		Projects: registry.Projects(),
		Async:    func(fn func()) { fn() },
	})
	must(err)
	inquiries, err := services.NewInquiryService(services.InquiryServiceDeps{
		Inquiries: registry.Inquiries(),
		Projects:  registry.Projects(),
	})
	must(err)
	profiles, err := services.NewProfileService(services.ProfileServiceDeps{Profile: registry.Profile()})
	must(err)
	analytics, err := services.NewAnalyticsService(services.AnalyticsServiceDeps{
		Projects:  registry.Projects(),
		Inquiries: registry.Inquiries(),
	})
	must(err)
	objects := storage.NewMemoryStore()
	media, err := services.NewMediaService(services.MediaServiceDeps{
		Store:    objects,
		Bucket:   "atelier-media",
		MaxBytes: 1 << 20,
		Clock:    func() time.Time { return testEpoch },
	})
	must(err)
	system, err := services.NewSystemService(services.SystemServiceDeps{
		Health: registry.Health(),
		Clock:  func() time.Time { return testEpoch },
	})
	must(err)
	verifier, err := auth.NewHS256Verifier(testSigningKey, "")
	must(err)

	sessions := gallery.NewSessions(catalog, gallery.SessionOptions{
		TTL:             time.Minute,
		CleanupInterval: -1,
		PageSize:        4,
	})
	t.Cleanup(sessions.Close)

	idem := idempotency.NewMemoryStore()

	projectHandlers := NewProjectHandlers(catalog)
	galleryHandlers := NewGalleryHandlers(sessions)
	inquiryHandlers := NewInquiryHandlers(inquiries,
		WithInquiryRateLimit(cfg.ratePerMinute, cfg.burst),
		WithInquiryIdempotency(idem, time.Hour),
	)
	contentHandlers := NewContentHandlers(profiles)
	adminHandlers := NewAdminHandlers(AdminDeps{
		Authenticator:  auth.NewAuthenticator(verifier),
		Catalog:        catalog,
		Inquiries:      inquiries,
		Profiles:       profiles,
		Analytics:      analytics,
		Media:          media,
		MaxUploadBytes: 1 << 20,
	})

	router := NewRouter(
		WithMiddlewares(i18n.Middleware),
		WithHealthHandlers(NewHealthHandlers(WithHealthSystemService(system))),
		WithPublicRoutes(
			projectHandlers.Routes,
			galleryHandlers.Routes,
			inquiryHandlers.Routes,
			contentHandlers.Routes,
		),
		WithAdminRoutes(adminHandlers.Routes),
	)

	return &fixture{
		t:        t,
		registry: registry,
		objects:  objects,
		idem:     idem,
		sessions: sessions,
		verifier: verifier,
		router:   router,
	}
}

// seedProjects stores n projects: ids w00.., alternating living and dining,
// each an hour newer and one unit dearer than the previous.
func (f *fixture) seedProjects(n int) {
	for i := 0; i < n; i++ {
		category := domain.CategoryLiving
		if i%2 == 1 {
			category = domain.CategoryDining
		}
		f.registry.ProjectStore().Seed(sampleProject(fmt.Sprintf("w%02d", i), category, float64(200+i), testEpoch.Add(time.Duration(i)*time.Hour)))
	}
}

func sampleProject(id string, category domain.Category, price float64, created time.Time) domain.Project {
	return domain.Project{
		ID: id,
		Title: domain.LocalizedContent{
			EN: "Oak table " + id,
			AR: "طاولة " + id,
			FR: "Table en chêne " + id,
			DZ: "Tabla " + id,
		},
		Description: domain.LocalizedContent{
			EN: "Solid oak dining table",
			AR: "طاولة من خشب البلوط",
			FR: "Table en chêne massif",
			DZ: "Tabla ta3 chêne",
		},
		Category:   category,
		Style:      domain.StyleRustic,
		WoodType:   domain.WoodOak,
		Images:     []string{"https://cdn.example.com/" + id + ".jpg"},
		Dimensions: domain.Dimensions{Width: 180, Height: 75, Depth: 90, Unit: domain.UnitCentimetre},
		Price:      price,
		Available:  true,
		Tags:       []string{"oak"},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func (f *fixture) adminToken() string {
	f.t.Helper()
	token, err := f.verifier.Issue("maker", []string{auth.RoleAdmin}, time.Hour)
	if err != nil {
		f.t.Fatalf("issue token: %v", err)
	}
	return token
}

func (f *fixture) do(method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			f.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) admin(method, target string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(method, target, body, map[string]string{"Authorization": "Bearer " + f.adminToken()})
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[map[string]any](t, rec)
	code, _ := body["error"].(string)
	return code
}
