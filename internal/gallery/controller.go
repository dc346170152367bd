// Package gallery keeps the per-visitor state of the paginated project
// listing: the active filters, the accumulated pages and the "load more"
// continuation.
package gallery

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	domain "github.com/woodcraft-atelier/api/internal/domain"
	"github.com/woodcraft-atelier/api/internal/services"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

var (
	// ErrStale is returned to a caller whose query was superseded by a newer
	// one before it completed. Its results were discarded.
	ErrStale = errors.New("gallery: query superseded by a newer request")
	// ErrClosed is returned once the session has been closed.
	ErrClosed = errors.New("gallery: session closed")
)

// Status is the loading state of a session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
)

// Lister runs one catalog page query. services.CatalogService satisfies it.
type Lister interface {
	ListProjects(ctx context.Context, req services.CatalogListRequest) (services.ProjectPage, error)
}

// Intent is what the visitor is looking for.
type Intent struct {
	Filter domain.FilterSpec
	Sort   domain.SortKey
	Search string
}

// State is a snapshot of one session. Items only ever holds pages fetched
// for the current Filter, Sort and Search.
type State struct {
	Filter  domain.FilterSpec `json:"filter"`
	Sort    domain.SortKey    `json:"sort"`
	Search  string            `json:"search,omitempty"`
	Page    int               `json:"page"`
	Items   []domain.Project  `json:"items"`
	HasMore bool              `json:"hasMore"`
	Total   domain.Total      `json:"total"`
	Status  Status            `json:"status"`
	Seq     uint64            `json:"seq"`
	Err     string            `json:"error,omitempty"`
}

func (s State) clone() State {
	out := s
	out.Filter = s.Filter.Clone()
	out.Items = append([]domain.Project(nil), s.Items...)
	return out
}

type Option func(*Controller)

func WithPageSize(size int) Option {
	return func(c *Controller) {
		switch {
		case size <= 0:
		case size > MaxPageSize:
			c.pageSize = MaxPageSize
		default:
			c.pageSize = size
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns one gallery session and is safe for concurrent use. Store
// calls run outside the lock.
type Controller struct {
	lister   Lister
	pageSize int
	logger   *zap.Logger

	mu        sync.Mutex
	state     State
	nextToken string
	latest    uint64
	cancel    context.CancelFunc
	closed    bool
}

func NewController(lister Lister, opts ...Option) *Controller {
	c := &Controller{
		lister:   lister,
		pageSize: DefaultPageSize,
		logger:   zap.NewNop(),
		state:    State{Sort: domain.DefaultSortKey, Status: StatusIdle},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = c.logger.Named("gallery")
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Apply switches the session to a new intent. Accumulated items are
// dropped, any in-flight query is cancelled and page 1 is fetched.
func (c *Controller) Apply(ctx context.Context, intent Intent) (State, error) {
	if intent.Sort == "" {
		intent.Sort = domain.DefaultSortKey
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	seq, qctx := c.beginLocked(ctx)
	c.state = State{
		Filter: intent.Filter.Clone(),
		Sort:   intent.Sort,
		Search: intent.Search,
		Status: StatusLoading,
		Seq:    seq,
	}
	c.nextToken = ""
	req := c.requestLocked("")
	c.mu.Unlock()

	page, err := c.lister.ListProjects(qctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(seq) {
		c.logger.Debug("discarding stale gallery page", zap.Uint64("seq", seq), zap.Uint64("latest", c.latest))
		return c.state.clone(), ErrStale
	}
	c.finishLocked()
	if err != nil {
		c.state.Err = err.Error()
		return c.state.clone(), err
	}
	c.state.Page = 1
	c.state.Items = append([]domain.Project(nil), page.Items...)
	c.state.HasMore = page.HasMore
	c.state.Total = page.Total
	c.nextToken = page.NextPageToken
	return c.state.clone(), nil
}

// SetFilter replaces the filter and keeps sort and search.
func (c *Controller) SetFilter(ctx context.Context, filter domain.FilterSpec) (State, error) {
	intent := c.intent()
	intent.Filter = filter
	return c.Apply(ctx, intent)
}

func (c *Controller) SetSort(ctx context.Context, sort domain.SortKey) (State, error) {
	intent := c.intent()
	intent.Sort = sort
	return c.Apply(ctx, intent)
}

func (c *Controller) SetSearch(ctx context.Context, search string) (State, error) {
	intent := c.intent()
	intent.Search = search
	return c.Apply(ctx, intent)
}

// LoadMore appends the next page. It reports false without querying when
// a query is already running or there is nothing more to load.
func (c *Controller) LoadMore(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	if c.state.Status == StatusLoading || !c.state.HasMore || c.nextToken == "" {
		c.mu.Unlock()
		return false, nil
	}
	seq, qctx := c.beginLocked(ctx)
	c.state.Status = StatusLoading
	c.state.Seq = seq
	c.state.Err = ""
	req := c.requestLocked(c.nextToken)
	c.mu.Unlock()

	page, err := c.lister.ListProjects(qctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.currentLocked(seq) {
		c.logger.Debug("discarding stale gallery page", zap.Uint64("seq", seq), zap.Uint64("latest", c.latest))
		return false, ErrStale
	}
	c.finishLocked()
	if err != nil {
		c.state.Err = err.Error()
		return false, err
	}
	c.state.Page++
	c.state.Items = append(c.state.Items, page.Items...)
	c.state.HasMore = page.HasMore
	if page.Total.Count > c.state.Total.Count || page.Total.Exact {
		c.state.Total = page.Total
	}
	c.nextToken = page.NextPageToken
	return true, nil
}

// Close cancels in-flight work. Results arriving afterwards are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.latest++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Status = StatusIdle
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Controller) intent() Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Intent{Filter: c.state.Filter.Clone(), Sort: c.state.Sort, Search: c.state.Search}
}

// beginLocked supersedes the running query and returns the new sequence
// number with a context cancelled by the next supersession.
func (c *Controller) beginLocked(ctx context.Context) (uint64, context.Context) {
	if c.cancel != nil {
		c.cancel()
	}
	c.latest++
	qctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	return c.latest, qctx
}

func (c *Controller) currentLocked(seq uint64) bool {
	return !c.closed && seq == c.latest
}

func (c *Controller) finishLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Status = StatusIdle
}

func (c *Controller) requestLocked(token string) services.CatalogListRequest {
	return services.CatalogListRequest{
		Filter: c.state.Filter.Clone(),
		Sort:   c.state.Sort,
		Search: c.state.Search,
		Pagination: domain.Pagination{
			PageSize:  c.pageSize,
			PageToken: token,
		},
	}
}
