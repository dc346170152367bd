package repositories

import (
	"context"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/query"
)

// Registry exposes the repositories of one storage backend.
type Registry interface {
	Close(ctx context.Context) error

	Projects() ProjectRepository
	Inquiries() InquiryRepository
	Profile() ProfileRepository
	Health() HealthRepository
}

// RepositoryError classifies persistence failures for the service layer.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// DefaultFeaturedLimit is the number of featured projects on the home page.
const DefaultFeaturedLimit = 6

// ProjectPage is one page of a catalog query.
type ProjectPage struct {
	Items         []domain.Project
	HasMore       bool
	NextPageToken string
	Total         domain.Total
}

// ProjectRepository is the catalog store.
type ProjectRepository interface {
	// Insert stores a new project and returns its id. Timestamps come from the
	// store and both counters start at zero regardless of the input.
	Insert(ctx context.Context, project domain.Project) (string, error)
	// FindByID returns found=false without an error when the id does not exist.
	FindByID(ctx context.Context, id string) (domain.Project, bool, error)
	// Query returns the page of projects matching desc that follows
	// page.PageToken. Tokens issued for another descriptor are rejected with
	// pagination.ErrInvalidPageToken.
	Query(ctx context.Context, desc query.Descriptor, page domain.Pagination) (ProjectPage, error)
	// IncrementCounter atomically adds one to the named counter.
	IncrementCounter(ctx context.Context, id string, counter domain.CounterName) error
	// Update replaces the editable fields of an existing project. Counters and
	// createdAt are preserved.
	Update(ctx context.Context, project domain.Project) (domain.Project, error)
	Delete(ctx context.Context, id string) error
	// ListFeatured returns up to limit featured projects, newest first.
	ListFeatured(ctx context.Context, limit int) ([]domain.Project, error)
	Stats(ctx context.Context) (domain.ProjectStats, error)
}

// InquiryListFilter narrows the administrator inquiry listing.
type InquiryListFilter struct {
	Status     *domain.InquiryStatus
	Email      string
	ProjectID  string
	Pagination domain.Pagination
}

// InquiryRepository persists contact and quote requests.
type InquiryRepository interface {
	Insert(ctx context.Context, inquiry domain.Inquiry) (string, error)
	FindByID(ctx context.Context, id string) (domain.Inquiry, bool, error)
	// List returns inquiries newest first.
	List(ctx context.Context, filter InquiryListFilter) (domain.CursorPage[domain.Inquiry], error)
	Stats(ctx context.Context) (domain.InquiryStats, error)
}

// ProfileRepository stores the singleton woodmaker profile.
type ProfileRepository interface {
	Get(ctx context.Context) (domain.WoodmakerProfile, bool, error)
	// Save upserts the profile, keeping the createdAt of an existing document.
	Save(ctx context.Context, profile domain.WoodmakerProfile) (domain.WoodmakerProfile, error)
}

// HealthRepository reports dependency status for readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
