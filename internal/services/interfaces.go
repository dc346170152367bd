package services

import (
	"context"
	"io"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

// Type aliases expose domain models to callers of the services package.
type (
	Project            = domain.Project
	Inquiry            = domain.Inquiry
	WoodmakerProfile   = domain.WoodmakerProfile
	FilterSpec         = domain.FilterSpec
	SortKey            = domain.SortKey
	Pagination         = domain.Pagination
	ProjectPage        = repositories.ProjectPage
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogListRequest is one gallery query: filters, sort, search text and page.
type CatalogListRequest struct {
	Filter     FilterSpec
	Sort       SortKey
	Search     string
	Pagination Pagination
}

// CatalogService answers catalog reads and administers projects.
type CatalogService interface {
	// GetProject returns ErrNotFound for an unknown id. A found project has
	// its view counter incremented in the background.
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context, req CatalogListRequest) (ProjectPage, error)
	FeaturedProjects(ctx context.Context, limit int) ([]Project, error)
	CreateProject(ctx context.Context, project Project) (Project, error)
	UpdateProject(ctx context.Context, project Project) (Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// InquirySubmission is the contact form payload before validation.
type InquirySubmission struct {
	ClientName      string   `json:"clientName" validate:"required,min=2,max=120"`
	Email           string   `json:"email" validate:"required,email,max=254"`
	Phone           string   `json:"phone" validate:"omitempty,max=32"`
	Subject         string   `json:"subject" validate:"required,min=5,max=200"`
	Message         string   `json:"message" validate:"required,min=10,max=5000"`
	ProjectID       string   `json:"projectId" validate:"omitempty,max=128"`
	ReferenceImages []string `json:"referenceImages" validate:"max=5,dive,required,http_url"`
}

// InquiryService records inquiries and serves them to administrators.
type InquiryService interface {
	Submit(ctx context.Context, submission InquirySubmission) (Inquiry, error)
	Get(ctx context.Context, id string) (Inquiry, error)
	List(ctx context.Context, filter repositories.InquiryListFilter) (domain.CursorPage[Inquiry], error)
}

// InquiryCreatedEvent is published after an inquiry is stored.
type InquiryCreatedEvent struct {
	InquiryID  string    `json:"inquiryId"`
	ProjectID  string    `json:"projectId,omitempty"`
	ClientName string    `json:"clientName"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	CreatedAt  time.Time `json:"createdAt"`
}

// InquiryNotifier delivers inquiry notifications, e.g. to Pub/Sub.
type InquiryNotifier interface {
	PublishInquiryCreated(ctx context.Context, event InquiryCreatedEvent) (string, error)
}

// ProfileService reads and saves the woodmaker profile.
type ProfileService interface {
	// GetProfile returns ErrNotFound until a profile has been saved.
	GetProfile(ctx context.Context) (WoodmakerProfile, error)
	SaveProfile(ctx context.Context, profile WoodmakerProfile) (WoodmakerProfile, error)
}

// AnalyticsService aggregates the dashboard figures.
type AnalyticsService interface {
	ProjectStats(ctx context.Context) (domain.ProjectStats, error)
	InquiryStats(ctx context.Context) (domain.InquiryStats, error)
}

// MediaUpload is one image file received from the admin UI.
type MediaUpload struct {
	Folder   string
	Index    int
	Filename string
	Size     int64
	Body     io.Reader
}

// MediaObject describes a stored image.
type MediaObject struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// MediaService uploads and deletes catalog images.
type MediaService interface {
	Upload(ctx context.Context, upload MediaUpload) (MediaObject, error)
	Delete(ctx context.Context, pathOrURL string) error
}

// SystemService reports service health for readiness probes.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}
