package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/query"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

const (
	maxFeaturedLimit  = 24
	viewUpdateTimeout = 5 * time.Second
)

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Projects    repositories.ProjectRepository
	Logger      *zap.Logger
	MaxPageSize int
	// RetryWindow bounds retries of best-effort counter updates.
	RetryWindow time.Duration
	// Async runs background work; defaults to a goroutine. Tests pass a
	// synchronous runner.
	Async func(func())
}

type catalogService struct {
	projects    repositories.ProjectRepository
	logger      *zap.Logger
	maxPageSize int
	retryWindow time.Duration
	async       func(func())
}

var _ CatalogService = (*catalogService)(nil)

func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Projects == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	async := deps.Async
	if async == nil {
		async = func(fn func()) { go fn() }
	}
	return &catalogService{
		projects:    deps.Projects,
		logger:      logger.Named("catalog"),
		maxPageSize: deps.MaxPageSize,
		retryWindow: deps.RetryWindow,
		async:       async,
	}, nil
}

func (s *catalogService) GetProject(ctx context.Context, id string) (Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Project{}, notFound("project", id)
	}
	project, found, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if !found {
		return Project{}, notFound("project", id)
	}
	s.recordView(ctx, id)
	return project, nil
}

// recordView bumps the view counter without holding up the response. The
// update outlives request cancellation but not the timeout.
func (s *catalogService) recordView(ctx context.Context, id string) {
	detached := context.WithoutCancel(ctx)
	s.async(func() {
		ctx, cancel := context.WithTimeout(detached, viewUpdateTimeout)
		defer cancel()
		_, err := retryUnavailable(ctx, s.retryWindow, func(ctx context.Context) error {
			return s.projects.IncrementCounter(ctx, id, domain.CounterViews)
		})
		if err != nil && !repositories.IsNotFound(err) {
			s.logger.Warn("view counter update failed", zap.String("project_id", id), zap.Error(err))
		}
	})
}

func (s *catalogService) ListProjects(ctx context.Context, req CatalogListRequest) (ProjectPage, error) {
	desc, err := query.Compose(req.Filter, req.Sort, req.Search)
	if err != nil {
		return ProjectPage{}, err
	}
	page := req.Pagination
	page.PageSize = pagination.NormalizeSize(page.PageSize, s.maxPageSize)
	page.PageToken = strings.TrimSpace(page.PageToken)
	return s.projects.Query(ctx, desc, page)
}

func (s *catalogService) FeaturedProjects(ctx context.Context, limit int) ([]Project, error) {
	switch {
	case limit <= 0:
		limit = repositories.DefaultFeaturedLimit
	case limit > maxFeaturedLimit:
		limit = maxFeaturedLimit
	}
	return s.projects.ListFeatured(ctx, limit)
}

func (s *catalogService) CreateProject(ctx context.Context, project Project) (Project, error) {
	project = normalizeProject(project)
	if err := validateProject(project); err != nil {
		return Project{}, err
	}
	id, err := s.projects.Insert(ctx, project)
	if err != nil {
		return Project{}, err
	}
	created, found, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if !found {
		return Project{}, fmt.Errorf("catalog service: project %s vanished after insert", id)
	}
	s.logger.Info("project created", zap.String("project_id", id))
	return created, nil
}

func (s *catalogService) UpdateProject(ctx context.Context, project Project) (Project, error) {
	project = normalizeProject(project)
	if project.ID == "" {
		return Project{}, &ValidationError{Fields: map[string]string{"id": "is required"}}
	}
	if err := validateProject(project); err != nil {
		return Project{}, err
	}
	updated, err := s.projects.Update(ctx, project)
	if repositories.IsNotFound(err) {
		return Project{}, notFound("project", project.ID)
	}
	return updated, err
}

func (s *catalogService) DeleteProject(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	err := s.projects.Delete(ctx, id)
	if repositories.IsNotFound(err) {
		return notFound("project", id)
	}
	if err == nil {
		s.logger.Info("project deleted", zap.String("project_id", id))
	}
	return err
}

func normalizeProject(p Project) Project {
	p.ID = strings.TrimSpace(p.ID)
	p.Title = p.Title.Trimmed()
	p.Description = p.Description.Trimmed()
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	p.Images = images
	seen := make(map[string]struct{}, len(p.Tags))
	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tag = domain.NormalizeTag(tag)
		if _, dup := seen[tag]; tag == "" || dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	p.Tags = tags
	if p.Dimensions.Unit == "" {
		p.Dimensions.Unit = domain.UnitCentimetre
	}
	return p
}

// validateProject requires every locale of title and description, at least
// one http(s) image, a positive price and positive dimensions.
func validateProject(p Project) error {
	verr := &ValidationError{}
	for _, locale := range p.Title.Missing() {
		verr.Add("title."+string(locale), "is required")
	}
	for _, locale := range p.Description.Missing() {
		verr.Add("description."+string(locale), "is required")
	}
	if !p.Category.Valid() {
		verr.Add("category", "must be one of: "+joinValues(domain.Categories))
	}
	if !p.Style.Valid() {
		verr.Add("style", "must be one of: "+joinValues(domain.Styles))
	}
	if !p.WoodType.Valid() {
		verr.Add("woodType", "must be one of: "+joinValues(domain.WoodTypes))
	}
	if len(p.Images) == 0 {
		verr.Add("images", "must contain at least one image")
	}
	for i, img := range p.Images {
		if err := structValidator().Var(img, "http_url"); err != nil {
			verr.Add(fmt.Sprintf("images[%d]", i), "must be an http(s) URL")
		}
	}
	if !(p.Price > 0) {
		verr.Add("price", "must be greater than 0")
	}
	if !(p.Dimensions.Width > 0) {
		verr.Add("dimensions.width", "must be greater than 0")
	}
	if !(p.Dimensions.Height > 0) {
		verr.Add("dimensions.height", "must be greater than 0")
	}
	if !(p.Dimensions.Depth > 0) {
		verr.Add("dimensions.depth", "must be greater than 0")
	}
	if !p.Dimensions.Unit.Valid() {
		verr.Add("dimensions.unit", "must be one of: cm inch")
	}
	if len(p.Tags) > 30 {
		verr.Add("tags", "must contain at most 30 items")
	}
	return verr.Err()
}

func joinValues[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return strings.Join(out, " ")
}

// IsNotFound reports whether err means the requested entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || repositories.IsNotFound(err)
}
