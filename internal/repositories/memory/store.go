// Package memory holds in-process repository backends used for local
// development (API_CATALOG_BACKEND=memory) and service tests.
package memory

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/woodcraft-atelier/api/internal/repositories"
)

// Option configures a memory backend.
type Option func(*options)

type options struct {
	now   func() time.Time
	fault func(op string) error
	newID func() string
}

// WithClock replaces time.Now for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFault makes every operation consult fn first; a non-nil result is
// returned to the caller as an unavailable store error.
func WithFault(fn func(op string) error) Option {
	return func(o *options) { o.fault = fn }
}

// WithIDGenerator replaces ULID generation for inserted documents.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) check(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.fault != nil {
		if err := o.fault(op); err != nil {
			return repositories.NewUnavailable(op, err)
		}
	}
	return nil
}

// Registry bundles the memory repositories.
type Registry struct {
	projects  *ProjectStore
	inquiries *InquiryStore
	profile   *ProfileStore
	health    repositories.HealthRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry creates empty stores sharing opts.
func NewRegistry(opts ...Option) *Registry {
	health, _ := repositories.NewDependencyHealth([]repositories.DependencyCheck{{
		Name:  "memory",
		Check: func(context.Context) error { return nil },
	}})
	return &Registry{
		projects:  NewProjectStore(opts...),
		inquiries: NewInquiryStore(opts...),
		profile:   NewProfileStore(opts...),
		health:    health,
	}
}

func (r *Registry) Projects() repositories.ProjectRepository  { return r.projects }
func (r *Registry) Inquiries() repositories.InquiryRepository { return r.inquiries }
func (r *Registry) Profile() repositories.ProfileRepository   { return r.profile }
func (r *Registry) Health() repositories.HealthRepository     { return r.health }

// ProjectStore exposes the concrete store for seeding.
func (r *Registry) ProjectStore() *ProjectStore { return r.projects }

func (r *Registry) Close(context.Context) error { return nil }
