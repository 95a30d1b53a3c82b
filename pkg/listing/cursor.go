// Package listing implements the paginated browse view over component
// patterns: the page/search/sort cursor and the listing it last loaded.
package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/m-kr/cms-nano/pkg/model"
)

// Defaults applied by New.
const (
	DefaultItemsPerPage = 10
	DefaultSort         = "-updatedAt"

	// RemoveConfirmation is the prompt shown before a pattern is deleted.
	RemoveConfirmation = "Please, confirm removing component"
)

var (
	// ErrNoConfirmer is returned by Remove when no Confirmer was supplied.
	ErrNoConfirmer = errors.New("listing: confirmer is required")
	// ErrSuperseded is returned by Load when a newer load already committed.
	ErrSuperseded = errors.New("listing: response superseded by a newer load")
)

// API is the remote surface the cursor reads from and deletes through.
type API interface {
	ListComponentPatterns(ctx context.Context, query model.ListQuery) (model.ListPage[model.ComponentPattern], error)
	DeleteComponentPattern(ctx context.Context, id string) (string, error)
}

// Confirmer approves destructive actions. Implementations may block on user
// input; the cursor holds no lock while waiting.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// State is a point-in-time copy of the cursor and its listing.
type State struct {
	CurrentPage  int
	TotalPages   int
	ItemsPerPage int
	Search       string
	Sort         string
	Items        []model.ComponentPattern
}

// Option customises a Cursor.
type Option func(*Cursor)

// WithItemsPerPage overrides the page size requested from the server.
func WithItemsPerPage(n int) Option {
	return func(c *Cursor) {
		if n > 0 {
			c.state.ItemsPerPage = n
		}
	}
}

// WithSort overrides the initial sort key.
func WithSort(sort string) Option {
	return func(c *Cursor) {
		if sort != "" {
			c.state.Sort = sort
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cursor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cursor tracks the listing view. It is safe for concurrent use; the mutex
// is released for the duration of every network call, so loads may overlap.
// Each load takes a ticket and its response is dropped when a load issued
// later has already committed.
type Cursor struct {
	api    API
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	issued    uint64
	committed uint64
}

// New returns a cursor on page 1 of 1 with the default page size and sort.
func New(api API, opts ...Option) *Cursor {
	c := &Cursor{
		api:    api,
		logger: zap.NewNop(),
		state: State{
			CurrentPage:  1,
			TotalPages:   1,
			ItemsPerPage: DefaultItemsPerPage,
			Sort:         DefaultSort,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Snapshot returns a copy of the cursor state.
func (c *Cursor) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.state
	out.Items = append([]model.ComponentPattern(nil), c.state.Items...)
	return out
}

// Load fetches page, or the current page when page is zero. The cursor and
// listing are replaced together on success and left untouched on failure.
func (c *Cursor) Load(ctx context.Context, page int) error {
	c.mu.Lock()
	if page <= 0 {
		page = c.state.CurrentPage
	}
	query := model.ListQuery{
		Page:   page,
		Limit:  c.state.ItemsPerPage,
		Search: c.state.Search,
		Sort:   c.state.Sort,
	}
	c.issued++
	ticket := c.issued
	c.mu.Unlock()

	c.logger.Debug("loading component patterns",
		zap.Int("page", query.Page),
		zap.Int("limit", query.Limit),
		zap.String("search", query.Search),
		zap.String("sort", query.Sort),
		zap.Uint64("ticket", ticket))

	result, err := c.api.ListComponentPatterns(ctx, query)
	if err != nil {
		return fmt.Errorf("listing: load page %d: %w", page, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ticket < c.committed {
		c.logger.Debug("dropping stale listing response",
			zap.Uint64("ticket", ticket),
			zap.Uint64("committed", c.committed))
		return ErrSuperseded
	}
	c.committed = ticket
	c.apply(result)
	return nil
}

// ChangePage loads target unless it is the current page or lies outside
// [1, TotalPages], in which case nothing is requested.
func (c *Cursor) ChangePage(ctx context.Context, target int) error {
	c.mu.Lock()
	skip := target == c.state.CurrentPage || target < 1 || target > c.state.TotalPages
	c.mu.Unlock()
	if skip {
		return nil
	}
	return c.Load(ctx, target)
}

// Search records term and reloads from page 1.
func (c *Cursor) Search(ctx context.Context, term string) error {
	c.mu.Lock()
	c.state.Search = term
	c.mu.Unlock()
	return c.Load(ctx, 1)
}

// SortBy records key and reloads the current page. Unlike Search it keeps
// the page position.
func (c *Cursor) SortBy(ctx context.Context, key string) error {
	c.mu.Lock()
	c.state.Sort = key
	c.mu.Unlock()
	return c.Load(ctx, 0)
}

// Remove asks confirm before deleting the pattern id. The entry leaves the
// in-memory listing only after the server confirms the deletion. It reports
// whether the pattern was removed; a declined confirmation is not an error.
func (c *Cursor) Remove(ctx context.Context, id string, confirm Confirmer) (bool, error) {
	if confirm == nil {
		return false, ErrNoConfirmer
	}
	ok, err := confirm.Confirm(ctx, RemoveConfirmation)
	if err != nil {
		return false, fmt.Errorf("listing: confirm removal: %w", err)
	}
	if !ok {
		c.logger.Debug("removal declined", zap.String("id", id))
		return false, nil
	}

	if _, err := c.api.DeleteComponentPattern(ctx, id); err != nil {
		return false, fmt.Errorf("listing: remove %s: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := make([]model.ComponentPattern, 0, len(c.state.Items))
	for _, item := range c.state.Items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.state.Items = kept
	return true, nil
}

// apply expects c.mu to be held.
func (c *Cursor) apply(page model.ListPage[model.ComponentPattern]) {
	c.state.Items = append([]model.ComponentPattern(nil), page.Data...)
	if page.CurrentPage > 0 {
		c.state.CurrentPage = page.CurrentPage
	}
	c.state.TotalPages = page.TotalPages
	if c.state.TotalPages < 1 {
		c.state.TotalPages = 1
	}
	if page.ItemsPerPage > 0 {
		c.state.ItemsPerPage = page.ItemsPerPage
	}
}
