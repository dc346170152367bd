package services

import (
	"context"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

type AnalyticsServiceDeps struct {
	Projects  repositories.ProjectRepository
	Inquiries repositories.InquiryRepository
}

type analyticsService struct {
	projects  repositories.ProjectRepository
	inquiries repositories.InquiryRepository
}

func NewAnalyticsService(deps AnalyticsServiceDeps) (AnalyticsService, error) {
	if deps.Projects == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	if deps.Inquiries == nil {
		return nil, ErrInquiryRepositoryMissing
	}
	return &analyticsService{projects: deps.Projects, inquiries: deps.Inquiries}, nil
}

func (s *analyticsService) ProjectStats(ctx context.Context) (domain.ProjectStats, error) {
	return s.projects.Stats(ctx)
}

func (s *analyticsService) InquiryStats(ctx context.Context) (domain.InquiryStats, error) {
	return s.inquiries.Stats(ctx)
}
