package firestore

import (
	"context"
	"errors"
	"time"

	pfirestore "github.com/woodcraft-atelier/api/internal/platform/firestore"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

// Registry wires the Firestore repositories around one provider.
type Registry struct {
	provider  *pfirestore.Provider
	projects  *ProjectRepository
	inquiries *InquiryRepository
	profile   *ProfileRepository
	health    repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry builds the repositories. extra readiness checks (storage,
// pubsub) are probed alongside Firestore.
func NewRegistry(provider *pfirestore.Provider, extra ...repositories.DependencyCheck) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("firestore registry requires provider")
	}
	projects, err := NewProjectRepository(provider)
	if err != nil {
		return nil, err
	}
	inquiries, err := NewInquiryRepository(provider)
	if err != nil {
		return nil, err
	}
	profile, err := NewProfileRepository(provider)
	if err != nil {
		return nil, err
	}
	checks := append([]repositories.DependencyCheck{{
		Name:    "firestore",
		Timeout: 2 * time.Second,
		Check: func(ctx context.Context) error {
			return provider.Ping(ctx, projectsCollection)
		},
	}}, extra...)
	health, err := repositories.NewDependencyHealth(checks)
	if err != nil {
		return nil, err
	}
	return &Registry{
		provider:  provider,
		projects:  projects,
		inquiries: inquiries,
		profile:   profile,
		health:    health,
	}, nil
}

func (r *Registry) Projects() repositories.ProjectRepository  { return r.projects }
func (r *Registry) Inquiries() repositories.InquiryRepository { return r.inquiries }
func (r *Registry) Profile() repositories.ProfileRepository   { return r.profile }
func (r *Registry) Health() repositories.HealthRepository     { return r.health }

func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}
