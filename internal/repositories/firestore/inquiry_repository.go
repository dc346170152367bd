package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	pfirestore "github.com/woodcraft-atelier/api/internal/platform/firestore"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

const inquiriesCollection = "inquiries"

type InquiryRepository struct {
	base *pfirestore.BaseRepository[inquiryDocument]
}

var _ repositories.InquiryRepository = (*InquiryRepository)(nil)

func NewInquiryRepository(provider *pfirestore.Provider) (*InquiryRepository, error) {
	if provider == nil {
		return nil, errors.New("inquiry repository requires firestore provider")
	}
	return &InquiryRepository{
		base: pfirestore.NewBaseRepository[inquiryDocument](provider, inquiriesCollection, nil),
	}, nil
}

func (r *InquiryRepository) Insert(ctx context.Context, inq domain.Inquiry) (string, error) {
	id := strings.TrimSpace(inq.ID)
	if id == "" {
		id = ulid.Make().String()
	}
	if _, err := r.base.Create(ctx, id, encodeInquiry(inq)); err != nil {
		return "", err
	}
	return id, nil
}

func (r *InquiryRepository) FindByID(ctx context.Context, id string) (domain.Inquiry, bool, error) {
	doc, found, err := r.base.Find(ctx, id)
	if err != nil || !found {
		return domain.Inquiry{}, false, err
	}
	return doc.Data.toDomain(doc.ID), true, nil
}

func (r *InquiryRepository) List(ctx context.Context, filter repositories.InquiryListFilter) (domain.CursorPage[domain.Inquiry], error) {
	cursor, hasCursor, err := repositories.DecodeInquiryCursor(filter.Pagination.PageToken)
	if err != nil {
		return domain.CursorPage[domain.Inquiry]{}, err
	}
	size := pagination.NormalizeSize(filter.Pagination.PageSize, 0)

	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if filter.Status != nil {
			q = q.Where("status", "==", string(*filter.Status))
		}
		if filter.Email != "" {
			q = q.Where("email", "==", strings.ToLower(strings.TrimSpace(filter.Email)))
		}
		if filter.ProjectID != "" {
			q = q.Where("projectId", "==", filter.ProjectID)
		}
		q = q.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)
		if hasCursor {
			q = q.StartAfter(cursor.CreatedAt, cursor.ID)
		}
		return q.Limit(size + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Inquiry]{}, err
	}

	var page domain.CursorPage[domain.Inquiry]
	for i, doc := range docs {
		if i == size {
			page.NextPageToken, err = repositories.EncodeInquiryCursor(page.Items[size-1])
			if err != nil {
				return domain.CursorPage[domain.Inquiry]{}, err
			}
			break
		}
		page.Items = append(page.Items, doc.Data.toDomain(doc.ID))
	}
	return page, nil
}

// Stats counts inquiries per status with aggregation queries.
func (r *InquiryRepository) Stats(ctx context.Context) (domain.InquiryStats, error) {
	stats := domain.NewInquiryStats()
	for _, status := range domain.InquiryStatuses {
		status := status
		n, err := r.base.Count(ctx, func(q firestore.Query) firestore.Query {
			return q.Where("status", "==", string(status))
		})
		if err != nil {
			return domain.InquiryStats{}, err
		}
		stats.ByStatus[status] = int(n)
		stats.Total += int(n)
	}
	return stats, nil
}

