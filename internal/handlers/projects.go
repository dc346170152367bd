package handlers

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/httpx"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
	"github.com/woodcraft-atelier/api/internal/services"
)

const (
	projectCacheControl = "public, max-age=60"
	maxFeaturedParam    = 24
)

// ProjectHandlers serves the public catalog.
type ProjectHandlers struct {
	catalog services.CatalogService
	paging  pagination.Options
}

type ProjectOption func(*ProjectHandlers)

// WithProjectPaging overrides the default and maximum page sizes.
func WithProjectPaging(defaultSize, maxSize int) ProjectOption {
	return func(h *ProjectHandlers) {
		h.paging = pagination.Options{DefaultPageSize: defaultSize, MaxPageSize: maxSize}
	}
}

func NewProjectHandlers(catalog services.CatalogService, opts ...ProjectOption) *ProjectHandlers {
	h := &ProjectHandlers{catalog: catalog}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Routes registers the public project endpoints.
func (h *ProjectHandlers) Routes(r chi.Router) {
	r.Get("/projects", h.listProjects)
	r.Get("/projects/featured", h.featuredProjects)
	r.Get("/projects/{projectID}", h.getProject)
}

func (h *ProjectHandlers) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	intent, err := parseCatalogQuery(values)
	if err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}
	params, err := pagination.Parse(values, h.paging)
	if err != nil {
		writeServiceError(ctx, w, err, "projects")
		return
	}

	page, err := h.catalog.ListProjects(ctx, services.CatalogListRequest{
		Filter: intent.filter,
		Sort:   intent.sort,
		Search: intent.search,
		Pagination: domain.Pagination{
			PageSize:  params.PageSize,
			PageToken: params.PageToken,
		},
	})
	if err != nil {
		writeServiceError(ctx, w, err, "projects")
		return
	}
	w.Header().Set("Cache-Control", projectCacheControl)
	httpx.WriteJSON(w, http.StatusOK, newProjectPagePayload(page, requestctx.Locale(ctx)))
}

func (h *ProjectHandlers) featuredProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := trimmedParam(r, "limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 || value > maxFeaturedParam {
			writeBadRequest(ctx, w, fmt.Sprintf("limit must be between 1 and %d", maxFeaturedParam))
			return
		}
		limit = value
	}
	projects, err := h.catalog.FeaturedProjects(ctx, limit)
	if err != nil {
		writeServiceError(ctx, w, err, "projects")
		return
	}
	w.Header().Set("Cache-Control", projectCacheControl)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"items": newProjectPayloads(projects, requestctx.Locale(ctx)),
	})
}

func (h *ProjectHandlers) getProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project, err := h.catalog.GetProject(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		writeServiceError(ctx, w, err, "project")
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, newProjectPayload(project, requestctx.Locale(ctx)))
}

type catalogQuery struct {
	filter domain.FilterSpec
	sort   domain.SortKey
	search string
}

// parseCatalogQuery reads the filter, sort and search parameters. Enum
// values are passed through as given; unknown ones are rejected when the
// query is composed.
func parseCatalogQuery(values url.Values) (catalogQuery, error) {
	var q catalogQuery
	if raw := strings.ToLower(strings.TrimSpace(values.Get("category"))); raw != "" {
		category := domain.Category(raw)
		q.filter.Category = &category
	}
	if raw := strings.ToLower(strings.TrimSpace(values.Get("style"))); raw != "" {
		style := domain.Style(raw)
		q.filter.Style = &style
	}
	if raw := strings.ToLower(strings.TrimSpace(values.Get("woodType"))); raw != "" {
		wood := domain.WoodType(raw)
		q.filter.WoodType = &wood
	}

	minPrice, hasMin, err := parseFloatParam(values, "minPrice")
	if err != nil {
		return catalogQuery{}, err
	}
	maxPrice, hasMax, err := parseFloatParam(values, "maxPrice")
	if err != nil {
		return catalogQuery{}, err
	}
	if hasMin || hasMax {
		rng := domain.PriceRange{Min: minPrice, Max: maxPrice}
		if !hasMax {
			rng.Max = math.MaxFloat64
		}
		q.filter.PriceRange = &rng
	}

	if q.filter.FeaturedOnly, err = parseBoolParam(values, "featured"); err != nil {
		return catalogQuery{}, err
	}
	if q.filter.AvailableOnly, err = parseBoolParam(values, "available"); err != nil {
		return catalogQuery{}, err
	}
	q.filter.Tags = parseTags(values)

	if q.sort, err = domain.ParseSortKey(values.Get("sort")); err != nil {
		return catalogQuery{}, err
	}
	q.search = strings.TrimSpace(values.Get("q"))
	return q, nil
}

func parseFloatParam(values url.Values, name string) (float64, bool, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a number", name)
	}
	return value, true, nil
}

func parseBoolParam(values url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", name)
	}
	return value, nil
}

// parseTags accepts both repeated tags parameters and comma separated lists.
func parseTags(values url.Values) []string {
	var tags []string
	for _, raw := range values["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
