package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

type InquiryStore struct {
	opts options

	mu        sync.RWMutex
	inquiries map[string]domain.Inquiry
}

var _ repositories.InquiryRepository = (*InquiryStore)(nil)

func NewInquiryStore(opts ...Option) *InquiryStore {
	return &InquiryStore{
		opts:      buildOptions(opts),
		inquiries: make(map[string]domain.Inquiry),
	}
}

func (s *InquiryStore) Insert(ctx context.Context, inq domain.Inquiry) (string, error) {
	if err := s.opts.check(ctx, "inquiries.insert"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if inq.ID == "" {
		inq.ID = s.opts.newID()
	}
	if _, exists := s.inquiries[inq.ID]; exists {
		return "", repositories.NewConflict("inquiries.insert", inq.ID)
	}
	now := s.opts.now().UTC()
	inq.CreatedAt, inq.UpdatedAt = now, now
	inq.ReferenceImages = append([]string(nil), inq.ReferenceImages...)
	s.inquiries[inq.ID] = inq
	return inq.ID, nil
}

func (s *InquiryStore) FindByID(ctx context.Context, id string) (domain.Inquiry, bool, error) {
	if err := s.opts.check(ctx, "inquiries.find"); err != nil {
		return domain.Inquiry{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	inq, ok := s.inquiries[id]
	return inq, ok, nil
}

func (s *InquiryStore) List(ctx context.Context, filter repositories.InquiryListFilter) (domain.CursorPage[domain.Inquiry], error) {
	if err := s.opts.check(ctx, "inquiries.list"); err != nil {
		return domain.CursorPage[domain.Inquiry]{}, err
	}
	cursor, hasCursor, err := repositories.DecodeInquiryCursor(filter.Pagination.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Inquiry]{}, err
	}
	size := pagination.NormalizeSize(filter.Pagination.PageSize, 0)

	s.mu.RLock()
	items := make([]domain.Inquiry, 0, len(s.inquiries))
	for _, inq := range s.inquiries {
		if filter.Matches(inq) && (!hasCursor || cursor.Before(inq)) {
			items = append(items, inq)
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})

	var page domain.CursorPage[domain.Inquiry]
	if len(items) > size {
		page.Items = items[:size]
		token, err := repositories.EncodeInquiryCursor(page.Items[size-1])
		if err != nil {
			return domain.CursorPage[domain.Inquiry]{}, err
		}
		page.NextPageToken = token
	} else {
		page.Items = items
	}
	return page, nil
}

func (s *InquiryStore) Stats(ctx context.Context) (domain.InquiryStats, error) {
	if err := s.opts.check(ctx, "inquiries.stats"); err != nil {
		return domain.InquiryStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.NewInquiryStats()
	for _, inq := range s.inquiries {
		stats.Add(inq)
	}
	return stats, nil
}

func (s *InquiryStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inquiries)
}
