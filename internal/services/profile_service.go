package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

type ProfileServiceDeps struct {
	Profile repositories.ProfileRepository
	Logger  *zap.Logger
}

type profileService struct {
	repo   repositories.ProfileRepository
	logger *zap.Logger
}

var _ ProfileService = (*profileService)(nil)

func NewProfileService(deps ProfileServiceDeps) (ProfileService, error) {
	if deps.Profile == nil {
		return nil, ErrProfileRepositoryMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &profileService{repo: deps.Profile, logger: logger.Named("profile")}, nil
}

func (s *profileService) GetProfile(ctx context.Context) (WoodmakerProfile, error) {
	profile, found, err := s.repo.Get(ctx)
	if err != nil {
		return WoodmakerProfile{}, err
	}
	if !found {
		return WoodmakerProfile{}, notFound("profile", "primary")
	}
	return profile, nil
}

func (s *profileService) SaveProfile(ctx context.Context, profile WoodmakerProfile) (WoodmakerProfile, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Bio = profile.Bio.Trimmed()
	profile.Philosophy = profile.Philosophy.Trimmed()
	profile.Contact.Email = strings.ToLower(strings.TrimSpace(profile.Contact.Email))
	for i := range profile.Testimonials {
		t := &profile.Testimonials[i]
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			t.ID = ulid.Make().String()
		}
		t.ClientName = strings.TrimSpace(t.ClientName)
		t.Content = t.Content.Trimmed()
	}

	verr := &ValidationError{}
	if profile.Name == "" {
		verr.Add("name", "is required")
	}
	for _, locale := range profile.Bio.Missing() {
		verr.Add("bio."+string(locale), "is required")
	}
	for _, locale := range profile.Philosophy.Missing() {
		verr.Add("philosophy."+string(locale), "is required")
	}
	if profile.ExperienceYears < 0 {
		verr.Add("experienceYears", "must be at least 0")
	}
	if profile.Contact.Email != "" {
		if err := structValidator().Var(profile.Contact.Email, "email"); err != nil {
			verr.Add("contactInfo.email", "must be a valid email address")
		}
	}
	for i, t := range profile.Testimonials {
		if t.ClientName == "" {
			verr.Add(fmt.Sprintf("testimonials[%d].clientName", i), "is required")
		}
		if t.Rating < 1 || t.Rating > 5 {
			verr.Add(fmt.Sprintf("testimonials[%d].rating", i), "must be between 1 and 5")
		}
		if t.Content.Get(domain.DefaultLocale) == "" {
			verr.Add(fmt.Sprintf("testimonials[%d].content.en", i), "is required")
		}
	}
	if err := verr.Err(); err != nil {
		return WoodmakerProfile{}, err
	}

	saved, err := s.repo.Save(ctx, profile)
	if err != nil {
		return WoodmakerProfile{}, err
	}
	s.logger.Info("profile saved", zap.Int("testimonials", len(saved.Testimonials)))
	return saved, nil
}
