package memory

import (
	"context"
	"sync"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

type ProfileStore struct {
	opts options

	mu      sync.Mutex
	profile *domain.WoodmakerProfile
}

var _ repositories.ProfileRepository = (*ProfileStore)(nil)

func NewProfileStore(opts ...Option) *ProfileStore {
	return &ProfileStore{opts: buildOptions(opts)}
}

func (s *ProfileStore) Get(ctx context.Context) (domain.WoodmakerProfile, bool, error) {
	if err := s.opts.check(ctx, "profile.get"); err != nil {
		return domain.WoodmakerProfile{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return domain.WoodmakerProfile{}, false, nil
	}
	return *s.profile, true, nil
}

func (s *ProfileStore) Save(ctx context.Context, profile domain.WoodmakerProfile) (domain.WoodmakerProfile, error) {
	if err := s.opts.check(ctx, "profile.save"); err != nil {
		return domain.WoodmakerProfile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.now().UTC()
	profile.CreatedAt = now
	if s.profile != nil {
		profile.CreatedAt = s.profile.CreatedAt
	}
	profile.UpdatedAt = now
	s.profile = &profile
	return profile, nil
}
