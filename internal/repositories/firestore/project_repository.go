package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	pfirestore "github.com/woodcraft-atelier/api/internal/platform/firestore"
	"github.com/woodcraft-atelier/api/internal/platform/observability"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/query"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

const (
	projectsCollection = "projects"

	// Residual filtering reads this many documents per matching item wanted.
	residualBatchFactor = 3
	minResidualBatch    = 30
	// maxResidualScan bounds the documents read for one residual page. A page
	// cut short by the bound still carries a token that resumes the scan.
	maxResidualScan = 600

	updateTxTimeout = 10 * time.Second
)

// ProjectRepository is the Firestore catalog store.
type ProjectRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[projectDocument]
}

var _ repositories.ProjectRepository = (*ProjectRepository)(nil)

func NewProjectRepository(provider *pfirestore.Provider) (*ProjectRepository, error) {
	if provider == nil {
		return nil, errors.New("project repository requires firestore provider")
	}
	return &ProjectRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[projectDocument](provider, projectsCollection, nil),
	}, nil
}

func (r *ProjectRepository) Insert(ctx context.Context, project domain.Project) (string, error) {
	id := strings.TrimSpace(project.ID)
	if id == "" {
		id = ulid.Make().String()
	}
	doc := encodeProject(project)
	doc.ViewCount, doc.InquiryCount = 0, 0
	doc.CreatedAt, doc.UpdatedAt = time.Time{}, time.Time{}
	if _, err := r.base.Create(ctx, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (domain.Project, bool, error) {
	doc, found, err := r.base.Find(ctx, id)
	if err != nil || !found {
		return domain.Project{}, false, err
	}
	return doc.Data.toDomain(doc.ID), true, nil
}

// queryPlan splits a descriptor into the part Firestore evaluates and the
// residual evaluated here. A price range is only pushed down when price is
// the primary order, since the inequality field must lead the ordering.
type queryPlan struct {
	pushed   []query.Predicate
	orders   []query.Order
	residual bool
}

func planFor(desc query.Descriptor) queryPlan {
	plan := queryPlan{orders: desc.Orders, residual: desc.HasSearch()}
	primary := desc.PrimaryOrder()
	for _, pred := range desc.Predicates {
		if pred.Field == query.FieldPrice && primary.Field != query.FieldPrice {
			plan.residual = true
			continue
		}
		plan.pushed = append(plan.pushed, pred)
	}
	return plan
}

func (p queryPlan) filter(q firestore.Query) firestore.Query {
	for _, pred := range p.pushed {
		q = q.Where(pred.Field, string(pred.Op), pred.Value)
	}
	return q
}

func (p queryPlan) ordered(q firestore.Query) firestore.Query {
	q = p.filter(q)
	for _, o := range p.orders {
		path := o.Field
		if path == query.FieldID {
			path = firestore.DocumentID
		}
		dir := firestore.Asc
		if o.Direction == query.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(path, dir)
	}
	return q
}

func (r *ProjectRepository) Query(ctx context.Context, desc query.Descriptor, page domain.Pagination) (repositories.ProjectPage, error) {
	cursor, hasCursor, err := desc.DecodeCursor(page.PageToken)
	if err != nil {
		return repositories.ProjectPage{}, err
	}
	size := pagination.NormalizeSize(page.PageSize, 0)
	plan := planFor(desc)

	ctx, span := observability.StartSpan(ctx, "catalog.query",
		attribute.String("catalog.sort", string(desc.Sort)),
		attribute.Bool("catalog.residual", plan.residual),
		attribute.Int("catalog.page_size", size),
	)
	defer span.End()

	var after []any
	if hasCursor {
		after = desc.StartAfter(cursor)
	}
	want := size + 1
	batch := want
	if plan.residual {
		batch = max(want*residualBatchFactor, minResidualBatch)
	}

	var (
		matched     []domain.Project
		lastScanned domain.Project
		scanned     int
		exhausted   bool
	)
	for len(matched) < want && scanned < maxResidualScan {
		docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
			q = plan.ordered(q)
			if after != nil {
				q = q.StartAfter(after...)
			}
			return q.Limit(batch)
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
			return repositories.ProjectPage{}, err
		}
		for _, doc := range docs {
			p := doc.Data.toDomain(doc.ID)
			scanned++
			lastScanned = p
			if plan.residual && !desc.Matches(p) {
				continue
			}
			matched = append(matched, p)
			if len(matched) == want {
				break
			}
		}
		if len(docs) < batch {
			exhausted = true
			break
		}
		after = desc.StartAfter(desc.CursorFor(lastScanned))
	}
	span.SetAttributes(attribute.Int("catalog.scanned", scanned))

	var result repositories.ProjectPage
	switch {
	case len(matched) > size:
		result.Items = matched[:size]
		result.HasMore = true
		result.NextPageToken, err = desc.EncodeCursor(result.Items[size-1])
	case !exhausted && scanned > 0:
		// Scan bound reached: resume after the last document read.
		result.Items = matched
		result.HasMore = true
		result.NextPageToken, err = pagination.EncodeToken(desc.CursorFor(lastScanned))
	default:
		result.Items = matched
	}
	if err != nil {
		return repositories.ProjectPage{}, err
	}

	if plan.residual {
		count := len(result.Items)
		if result.HasMore {
			count++
		}
		result.Total = domain.Total{Count: count, Exact: !hasCursor && !result.HasMore}
		return result, nil
	}
	total, err := r.base.Count(ctx, plan.filter)
	if err != nil {
		return repositories.ProjectPage{}, err
	}
	result.Total = domain.Total{Count: int(total), Exact: true}
	return result, nil
}

// IncrementCounter applies a server side increment transform, so concurrent
// calls never lose updates.
func (r *ProjectRepository) IncrementCounter(ctx context.Context, id string, counter domain.CounterName) error {
	if !counter.Valid() {
		return pfirestore.WrapError("projects.increment", errors.New("unknown counter "+string(counter)))
	}
	_, err := r.base.Update(ctx, id, []firestore.Update{
		{Path: string(counter), Value: firestore.Increment(1)},
	})
	return err
}

// Update rewrites the editable fields inside a transaction, keeping the
// counters and createdAt. updatedAt is left zero so Firestore stamps the
// commit time.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	ref, err := r.base.DocumentRef(ctx, project.ID)
	if err != nil {
		return domain.Project{}, err
	}
	next := encodeProject(project)
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		current, err := r.base.Decode(snap)
		if err != nil {
			return err
		}
		doc := current.Data
		doc.Title, doc.Description = next.Title, next.Description
		doc.Category, doc.Style, doc.WoodType = next.Category, next.Style, next.WoodType
		doc.Images, doc.Dimensions, doc.Price = next.Images, next.Dimensions, next.Price
		doc.Featured, doc.Available, doc.Tags = next.Featured, next.Available, next.Tags
		doc.UpdatedAt = time.Time{}
		return tx.Set(ref, doc)
	}, pfirestore.WithTxAttempts(3), pfirestore.WithTxTimeout(updateTxTimeout))
	if err != nil {
		return domain.Project{}, pfirestore.WrapError("projects.update", err)
	}
	updated, found, err := r.FindByID(ctx, project.ID)
	if err != nil {
		return domain.Project{}, err
	}
	if !found {
		return domain.Project{}, pfirestore.NotFoundError("projects.update", project.ID)
	}
	return updated, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ref, err := r.base.DocumentRef(ctx, id)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		return pfirestore.WrapError("projects.delete", err)
	}
	return nil
}

func (r *ProjectRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = repositories.DefaultFeaturedLimit
	}
	desc, err := query.Compose(domain.FilterSpec{FeaturedOnly: true}, domain.SortNewest, "")
	if err != nil {
		return nil, err
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return planFor(desc).ordered(q).Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Project, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.toDomain(doc.ID))
	}
	return out, nil
}

func (r *ProjectRepository) Stats(ctx context.Context) (domain.ProjectStats, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return domain.ProjectStats{}, err
	}
	stats := domain.NewProjectStats()
	for _, doc := range docs {
		stats.Add(doc.Data.toDomain(doc.ID))
	}
	return stats, nil
}
