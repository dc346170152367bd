package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/auth"
	"github.com/woodcraft-atelier/api/internal/platform/httpx"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/platform/requestctx"
	"github.com/woodcraft-atelier/api/internal/repositories"
	"github.com/woodcraft-atelier/api/internal/services"
)

const (
	maxUploadFiles        = 10
	multipartMemoryBudget = 8 << 20
	defaultUploadLimit    = 5 << 20
)

// AdminHandlers serves the authenticated back office under /admin.
type AdminHandlers struct {
	authn     *auth.Authenticator
	catalog   services.CatalogService
	inquiries services.InquiryService
	profiles  services.ProfileService
	analytics services.AnalyticsService
	media     services.MediaService

	uploadLimit int64
	paging      pagination.Options
}

// AdminDeps lists the services behind the admin routes. Media may be nil when
// no bucket is configured; the upload routes are then not mounted.
type AdminDeps struct {
	Authenticator *auth.Authenticator
	Catalog       services.CatalogService
	Inquiries     services.InquiryService
	Profiles      services.ProfileService
	Analytics     services.AnalyticsService
	Media         services.MediaService

	MaxUploadBytes int64
	Paging         pagination.Options
}

func NewAdminHandlers(deps AdminDeps) *AdminHandlers {
	limit := deps.MaxUploadBytes
	if limit <= 0 {
		limit = defaultUploadLimit
	}
	return &AdminHandlers{
		authn:       deps.Authenticator,
		catalog:     deps.Catalog,
		inquiries:   deps.Inquiries,
		profiles:    deps.Profiles,
		analytics:   deps.Analytics,
		media:       deps.Media,
		uploadLimit: limit,
		paging:      deps.Paging,
	}
}

// Routes mounts the admin endpoints behind the admin role check.
func (h *AdminHandlers) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.authn != nil {
			r.Use(h.authn.RequireRole(auth.RoleAdmin))
		}

		r.Post("/projects", h.createProject)
		r.Put("/projects/{projectID}", h.updateProject)
		r.Delete("/projects/{projectID}", h.deleteProject)

		r.Put("/profile", h.saveProfile)

		r.Get("/inquiries", h.listInquiries)
		r.Get("/inquiries/{inquiryID}", h.getInquiry)

		r.Get("/stats", h.stats)

		if h.media != nil {
			r.Post("/media", h.uploadMedia)
			r.Delete("/media", h.deleteMedia)
		}
	})
}

func (h *AdminHandlers) createProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}
	project, err := h.catalog.CreateProject(ctx, req.toDomain(""))
	if err != nil {
		writeServiceError(ctx, w, err, "project")
		return
	}
	w.Header().Set("Location", "/api/v1/projects/"+project.ID)
	httpx.WriteJSON(w, http.StatusCreated, newProjectPayload(project, requestctx.Locale(ctx)))
}

func (h *AdminHandlers) updateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(chi.URLParam(r, "projectID"))
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}
	project, err := h.catalog.UpdateProject(ctx, req.toDomain(id))
	if err != nil {
		writeServiceError(ctx, w, err, "project")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newProjectPayload(project, requestctx.Locale(ctx)))
}

func (h *AdminHandlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.catalog.DeleteProject(ctx, chi.URLParam(r, "projectID")); err != nil {
		writeServiceError(ctx, w, err, "project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) saveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req profilePayload
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(ctx, w, err.Error())
		return
	}
	profile, err := req.toDomain()
	if err != nil {
		httpx.WriteError(ctx, w, httpx.ValidationError("", map[string]string{"testimonials": err.Error()}))
		return
	}
	saved, err := h.profiles.SaveProfile(ctx, profile)
	if err != nil {
		writeServiceError(ctx, w, err, "profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newProfilePayload(saved))
}

type inquiryListPayload struct {
	Items         []inquiryPayload `json:"items"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

func (h *AdminHandlers) listInquiries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	values := r.URL.Query()

	params, err := pagination.Parse(values, h.paging)
	if err != nil {
		writeServiceError(ctx, w, err, "inquiries")
		return
	}
	filter := repositories.InquiryListFilter{
		Email:     strings.TrimSpace(values.Get("email")),
		ProjectID: strings.TrimSpace(values.Get("projectId")),
		Pagination: domain.Pagination{
			PageSize:  params.PageSize,
			PageToken: params.PageToken,
		},
	}
	if raw := strings.ToLower(strings.TrimSpace(values.Get("status"))); raw != "" {
		status := domain.InquiryStatus(raw)
		if !status.Valid() {
			writeBadRequest(ctx, w, fmt.Sprintf("unknown inquiry status %q", raw))
			return
		}
		filter.Status = &status
	}

	page, err := h.inquiries.List(ctx, filter)
	if err != nil {
		writeServiceError(ctx, w, err, "inquiries")
		return
	}
	payload := inquiryListPayload{
		Items:         make([]inquiryPayload, 0, len(page.Items)),
		NextPageToken: page.NextPageToken,
	}
	for _, inq := range page.Items {
		payload.Items = append(payload.Items, newInquiryPayload(inq))
	}
	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *AdminHandlers) getInquiry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inquiry, err := h.inquiries.Get(ctx, chi.URLParam(r, "inquiryID"))
	if err != nil {
		writeServiceError(ctx, w, err, "inquiry")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newInquiryPayload(inquiry))
}

type projectStatsPayload struct {
	TotalProjects  int                     `json:"totalProjects"`
	Featured       int                     `json:"featured"`
	Available      int                     `json:"available"`
	TotalViews     int64                   `json:"totalViews"`
	TotalInquiries int64                   `json:"totalInquiries"`
	ByCategory     map[domain.Category]int `json:"byCategory"`
	ByStyle        map[domain.Style]int    `json:"byStyle"`
	ByWoodType     map[domain.WoodType]int `json:"byWoodType"`
}

type inquiryStatsPayload struct {
	Total    int                          `json:"total"`
	ByStatus map[domain.InquiryStatus]int `json:"byStatus"`
}

type statsPayload struct {
	Projects  projectStatsPayload `json:"projects"`
	Inquiries inquiryStatsPayload `json:"inquiries"`
}

func (h *AdminHandlers) stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := h.analytics.ProjectStats(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "stats")
		return
	}
	inquiries, err := h.analytics.InquiryStats(ctx)
	if err != nil {
		writeServiceError(ctx, w, err, "stats")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statsPayload{
		Projects: projectStatsPayload{
			TotalProjects:  projects.TotalProjects,
			Featured:       projects.Featured,
			Available:      projects.Available,
			TotalViews:     projects.TotalViews,
			TotalInquiries: projects.TotalInquiries,
			ByCategory:     projects.ByCategory,
			ByStyle:        projects.ByStyle,
			ByWoodType:     projects.ByWoodType,
		},
		Inquiries: inquiryStatsPayload{
			Total:    inquiries.Total,
			ByStatus: inquiries.ByStatus,
		},
	})
}

type mediaListPayload struct {
	Items []services.MediaObject `json:"items"`
}

// uploadMedia accepts one or more "file" parts. "folder" names the project
// folder and "index" numbers the first image; later files take the following indexes.
func (h *AdminHandlers) uploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit*maxUploadFiles+(1<<20))
	if err := r.ParseMultipartForm(multipartMemoryBudget); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(ctx, w, services.ErrMediaTooLarge, "media")
			return
		}
		writeBadRequest(ctx, w, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		httpx.WriteError(ctx, w, httpx.ValidationError("", map[string]string{"file": "at least one file is required"}))
		return
	}
	if len(files) > maxUploadFiles {
		httpx.WriteError(ctx, w, httpx.ValidationError("", map[string]string{"file": fmt.Sprintf("at most %d files per request", maxUploadFiles)}))
		return
	}

	folder := strings.TrimSpace(r.FormValue("folder"))
	index := 0
	if raw := strings.TrimSpace(r.FormValue("index")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(ctx, w, httpx.ValidationError("", map[string]string{"index": "must be a non-negative integer"}))
			return
		}
		index = parsed
	}

	out := mediaListPayload{Items: make([]services.MediaObject, 0, len(files))}
	for i, header := range files {
		file, err := header.Open()
		if err != nil {
			writeBadRequest(ctx, w, "unreadable upload: "+header.Filename)
			return
		}
		obj, err := h.media.Upload(ctx, services.MediaUpload{
			Folder:   folder,
			Index:    index + i,
			Filename: header.Filename,
			Size:     header.Size,
			Body:     file,
		})
		_ = file.Close()
		if err != nil {
			writeServiceError(ctx, w, err, "media")
			return
		}
		out.Items = append(out.Items, obj)
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *AdminHandlers) deleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := trimmedParam(r, "path")
	if path == "" {
		httpx.WriteError(ctx, w, httpx.ValidationError("", map[string]string{"path": "is required"}))
		return
	}
	if err := h.media.Delete(ctx, path); err != nil {
		writeServiceError(ctx, w, err, "media")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
