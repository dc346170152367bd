package services

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/observability"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

const notifyTimeout = 5 * time.Second

// InquiryServiceDeps bundles constructor inputs for the inquiry service.
type InquiryServiceDeps struct {
	Inquiries repositories.InquiryRepository
	// Projects resolves linked projects and receives inquiryCount increments.
	Projects repositories.ProjectRepository
	// Notifier is optional; without it no notification is sent.
	Notifier    InquiryNotifier
	Logger      *zap.Logger
	RetryWindow time.Duration
	MaxPageSize int
}

type inquiryService struct {
	inquiries   repositories.InquiryRepository
	projects    repositories.ProjectRepository
	notifier    InquiryNotifier
	logger      *zap.Logger
	retryWindow time.Duration
	maxPageSize int
	policy      *bluemonday.Policy

	submitted       metric.Int64Counter
	counterFailures metric.Int64Counter
}

var _ InquiryService = (*inquiryService)(nil)

func NewInquiryService(deps InquiryServiceDeps) (InquiryService, error) {
	if deps.Inquiries == nil {
		return nil, ErrInquiryRepositoryMissing
	}
	if deps.Projects == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inquiryService{
		inquiries:   deps.Inquiries,
		projects:    deps.Projects,
		notifier:    deps.Notifier,
		logger:      logger.Named("inquiries"),
		retryWindow: deps.RetryWindow,
		maxPageSize: deps.MaxPageSize,
		policy:      bluemonday.StrictPolicy(),
		submitted: observability.Int64Counter("inquiries.submitted",
			"Inquiries accepted through the contact form"),
		counterFailures: observability.Int64Counter("inquiries.counter_update_failures",
			"Inquiries whose project inquiryCount could not be incremented"),
	}, nil
}

// Submit validates and stores an inquiry. Once stored, the linked project's
// inquiry counter and the notification are best effort: their failures are
// logged and never undo or fail the submission.
func (s *inquiryService) Submit(ctx context.Context, submission InquirySubmission) (Inquiry, error) {
	submission = s.clean(submission)
	if err := validateStruct(submission); err != nil {
		return Inquiry{}, err
	}
	if submission.ProjectID != "" {
		_, found, err := s.projects.FindByID(ctx, submission.ProjectID)
		if err != nil {
			return Inquiry{}, err
		}
		if !found {
			return Inquiry{}, &ValidationError{Fields: map[string]string{"projectId": "does not match a project"}}
		}
	}

	inquiry := domain.Inquiry{
		ClientName:      submission.ClientName,
		Email:           submission.Email,
		Phone:           submission.Phone,
		Subject:         submission.Subject,
		Message:         submission.Message,
		ProjectID:       submission.ProjectID,
		ReferenceImages: submission.ReferenceImages,
		Status:          domain.InquiryStatusPending,
		Priority:        domain.PriorityMedium,
	}
	id, err := s.inquiries.Insert(ctx, inquiry)
	if err != nil {
		return Inquiry{}, err
	}
	inquiry.ID = id
	if stored, found, err := s.inquiries.FindByID(ctx, id); err == nil && found {
		inquiry = stored
	}
	s.submitted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("linked", inquiry.ProjectID != "")))

	detached := context.WithoutCancel(ctx)
	if inquiry.ProjectID != "" {
		s.countInquiry(detached, inquiry)
	}
	s.notify(detached, inquiry)
	return inquiry, nil
}

func (s *inquiryService) countInquiry(ctx context.Context, inquiry Inquiry) {
	attempts, err := retryUnavailable(ctx, s.retryWindow, func(ctx context.Context) error {
		return s.projects.IncrementCounter(ctx, inquiry.ProjectID, domain.CounterInquiries)
	})
	if err == nil {
		return
	}
	s.counterFailures.Add(ctx, 1)
	s.logger.Warn("inquiry counter update failed",
		zap.String("inquiry_id", inquiry.ID),
		zap.String("project_id", inquiry.ProjectID),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
}

func (s *inquiryService) notify(ctx context.Context, inquiry Inquiry) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	_, err := s.notifier.PublishInquiryCreated(ctx, InquiryCreatedEvent{
		InquiryID:  inquiry.ID,
		ProjectID:  inquiry.ProjectID,
		ClientName: inquiry.ClientName,
		Email:      inquiry.Email,
		Subject:    inquiry.Subject,
		CreatedAt:  inquiry.CreatedAt,
	})
	if err != nil {
		s.logger.Warn("inquiry notification failed", zap.String("inquiry_id", inquiry.ID), zap.Error(err))
	}
}

// clean trims every field and strips markup from free text.
func (s *inquiryService) clean(in InquirySubmission) InquirySubmission {
	in.ClientName = s.plain(in.ClientName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Subject = s.plain(in.Subject)
	in.Message = s.plain(in.Message)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	images := make([]string, 0, len(in.ReferenceImages))
	for _, img := range in.ReferenceImages {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	in.ReferenceImages = images
	return in
}

// plain removes HTML; the policy escapes what it keeps, which is undone so
// stored text reads as typed.
func (s *inquiryService) plain(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func (s *inquiryService) Get(ctx context.Context, id string) (Inquiry, error) {
	id = strings.TrimSpace(id)
	inquiry, found, err := s.inquiries.FindByID(ctx, id)
	if err != nil {
		return Inquiry{}, err
	}
	if !found {
		return Inquiry{}, notFound("inquiry", id)
	}
	return inquiry, nil
}

func (s *inquiryService) List(ctx context.Context, filter repositories.InquiryListFilter) (domain.CursorPage[Inquiry], error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return domain.CursorPage[Inquiry]{}, &ValidationError{Fields: map[string]string{"status": "is invalid"}}
	}
	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))
	filter.ProjectID = strings.TrimSpace(filter.ProjectID)
	filter.Pagination.PageSize = pagination.NormalizeSize(filter.Pagination.PageSize, s.maxPageSize)
	return s.inquiries.List(ctx, filter)
}
