package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/platform/pagination"
	"github.com/woodcraft-atelier/api/internal/query"
	"github.com/woodcraft-atelier/api/internal/repositories"
)

// ProjectStore is a mutex guarded catalog store.
type ProjectStore struct {
	opts options

	mu       sync.RWMutex
	projects map[string]domain.Project
}

var _ repositories.ProjectRepository = (*ProjectStore)(nil)

func NewProjectStore(opts ...Option) *ProjectStore {
	return &ProjectStore{
		opts:     buildOptions(opts),
		projects: make(map[string]domain.Project),
	}
}

// Seed stores projects as given, keeping their ids, timestamps and counters.
func (s *ProjectStore) Seed(projects ...domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range projects {
		s.projects[p.ID] = cloneProject(p)
	}
}

func (s *ProjectStore) Insert(ctx context.Context, project domain.Project) (string, error) {
	if err := s.opts.check(ctx, "projects.insert"); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if project.ID == "" {
		project.ID = s.opts.newID()
	}
	if _, exists := s.projects[project.ID]; exists {
		return "", repositories.NewConflict("projects.insert", project.ID)
	}
	now := s.opts.now().UTC()
	project.CreatedAt, project.UpdatedAt = now, now
	project.ViewCount, project.InquiryCount = 0, 0
	s.projects[project.ID] = cloneProject(project)
	return project.ID, nil
}

func (s *ProjectStore) FindByID(ctx context.Context, id string) (domain.Project, bool, error) {
	if err := s.opts.check(ctx, "projects.find"); err != nil {
		return domain.Project{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, false, nil
	}
	return cloneProject(p), true, nil
}

// Query evaluates the whole descriptor in process against a sorted snapshot.
// The total is always exact.
func (s *ProjectStore) Query(ctx context.Context, desc query.Descriptor, page domain.Pagination) (repositories.ProjectPage, error) {
	if err := s.opts.check(ctx, "projects.query"); err != nil {
		return repositories.ProjectPage{}, err
	}
	cursor, hasCursor, err := desc.DecodeCursor(page.PageToken)
	if err != nil {
		return repositories.ProjectPage{}, err
	}
	size := pagination.NormalizeSize(page.PageSize, 0)

	s.mu.RLock()
	matched := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if desc.Matches(p) {
			matched = append(matched, cloneProject(p))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return desc.Compare(matched[i], matched[j]) < 0 })

	start := 0
	if hasCursor {
		start = sort.Search(len(matched), func(i int) bool { return desc.After(matched[i], cursor) })
	}
	rest := matched[start:]

	result := repositories.ProjectPage{
		Total: domain.Total{Count: len(matched), Exact: true},
	}
	if len(rest) > size {
		result.Items = rest[:size]
		result.HasMore = true
		token, err := desc.EncodeCursor(result.Items[size-1])
		if err != nil {
			return repositories.ProjectPage{}, err
		}
		result.NextPageToken = token
	} else {
		result.Items = rest
	}
	return result, nil
}

func (s *ProjectStore) IncrementCounter(ctx context.Context, id string, counter domain.CounterName) error {
	if err := s.opts.check(ctx, "projects.increment"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return repositories.NewNotFound("projects.increment", id)
	}
	switch counter {
	case domain.CounterViews:
		p.ViewCount++
	case domain.CounterInquiries:
		p.InquiryCount++
	default:
		return &repositories.Error{Op: "projects.increment", Err: errUnknownCounter(counter)}
	}
	s.projects[id] = p
	return nil
}

func (s *ProjectStore) Update(ctx context.Context, project domain.Project) (domain.Project, error) {
	if err := s.opts.check(ctx, "projects.update"); err != nil {
		return domain.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[project.ID]
	if !ok {
		return domain.Project{}, repositories.NewNotFound("projects.update", project.ID)
	}
	project.CreatedAt = existing.CreatedAt
	project.ViewCount = existing.ViewCount
	project.InquiryCount = existing.InquiryCount
	project.UpdatedAt = s.opts.now().UTC()
	s.projects[project.ID] = cloneProject(project)
	return cloneProject(project), nil
}

func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	if err := s.opts.check(ctx, "projects.delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return repositories.NewNotFound("projects.delete", id)
	}
	delete(s.projects, id)
	return nil
}

func (s *ProjectStore) ListFeatured(ctx context.Context, limit int) ([]domain.Project, error) {
	if limit <= 0 {
		limit = repositories.DefaultFeaturedLimit
	}
	desc, err := query.Compose(domain.FilterSpec{FeaturedOnly: true}, domain.SortNewest, "")
	if err != nil {
		return nil, err
	}
	page, err := s.Query(ctx, desc, domain.Pagination{PageSize: limit})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (s *ProjectStore) Stats(ctx context.Context) (domain.ProjectStats, error) {
	if err := s.opts.check(ctx, "projects.stats"); err != nil {
		return domain.ProjectStats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.NewProjectStats()
	for _, p := range s.projects {
		stats.Add(p)
	}
	return stats, nil
}

func cloneProject(p domain.Project) domain.Project {
	p.Images = append([]string(nil), p.Images...)
	p.Tags = append([]string(nil), p.Tags...)
	return p
}

func errUnknownCounter(counter domain.CounterName) error {
	return fmt.Errorf("unknown counter %q", counter)
}

func (s *ProjectStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}
