package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"hirepath/internal/domain"
	"hirepath/internal/infrastructure/api"
)

var ErrNoMorePages = errors.New("store: no further pages")

type PageFetcher[T any] func(ctx context.Context, q api.PageQuery) (domain.Page[T], error)

type CollectionSnapshot[T any] struct {
	Items       []T
	Count       int
	Next        string
	Filters     Filters
	Loaded      bool
	Loading     bool
	LoadingMore bool
	Err         error
}

// Shown is the number of loaded items; Count is the server total across all pages.
func (s CollectionSnapshot[T]) Shown() int {
	return len(s.Items)
}

func (s CollectionSnapshot[T]) HasMore() bool {
	return s.Next != ""
}

// Collection is a paginated, filterable server list. A fetch replaces the loaded items; LoadMore
// follows the server cursor and appends items whose id is not already present.
type Collection[T any] struct {
	name   string
	fetch  PageFetcher[T]
	idOf   func(T) int64
	guard  Guard
	logger *log.Logger

	mu          sync.RWMutex
	items       []T
	count       int
	next        string
	filters     Filters
	loaded      bool
	loading     bool
	loadingMore bool
	err         error

	// gen changes whenever a request supersedes everything issued before it; a response is applied
	// only while gen is unchanged since it was issued.
	gen           uint64
	issuedKey     string
	issuedFilters Filters

	group   singleflight.Group
	settled func(items []T)
}

func NewCollection[T any](name string, fetch PageFetcher[T], idOf func(T) int64, guard Guard, logger *log.Logger) *Collection[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Collection[T]{
		name:    name,
		fetch:   fetch,
		idOf:    idOf,
		guard:   guard,
		logger:  logger,
		filters: Filters{},
	}
}

// OnSettle registers fn to receive the items each accepted response added to the list. Stale and
// failed responses are not reported.
func (c *Collection[T]) OnSettle(fn func(items []T)) {
	c.mu.Lock()
	c.settled = fn
	c.mu.Unlock()
}

func (c *Collection[T]) announce(items []T) {
	c.mu.RLock()
	fn := c.settled
	c.mu.RUnlock()
	if fn != nil && len(items) > 0 {
		fn(items)
	}
}

func (c *Collection[T]) checkGuard() error {
	if c.guard == nil {
		return nil
	}
	if err := c.guard(); err != nil {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}
	return nil
}

// Fetch loads page one for filters and replaces the loaded items. Identical filters issued while a
// fetch is in flight join it; a fetch for different filters supersedes it.
func (c *Collection[T]) Fetch(ctx context.Context, filters Filters) (CollectionSnapshot[T], error) {
	return c.fetchFirst(ctx, filters, false)
}

func (c *Collection[T]) fetchFirst(ctx context.Context, filters Filters, fresh bool) (CollectionSnapshot[T], error) {
	if err := c.checkGuard(); err != nil {
		return CollectionSnapshot[T]{}, err
	}

	norm := filters.Normalized()
	key := norm.Key()

	c.mu.Lock()
	if fresh || key != c.issuedKey {
		c.gen++
		c.issuedKey = key
		c.issuedFilters = norm
	}
	gen := c.gen
	c.mu.Unlock()

	ch := c.group.DoChan(fmt.Sprintf("fetch#%d", gen), func() (any, error) {
		c.mu.Lock()
		if gen == c.gen {
			c.loading = true
			c.err = nil
		}
		c.mu.Unlock()

		page, err := c.fetch(context.WithoutCancel(ctx), api.PageQuery{Filters: norm.Clone()})
		added, err := c.settleFetch(gen, norm, page, err)
		c.announce(added)
		return nil, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return c.Snapshot(), res.Err
		}
		return c.Snapshot(), nil
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}
}

func (c *Collection[T]) settleFetch(gen uint64, filters Filters, page domain.Page[T], err error) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Printf("store=%s op=fetch status=stale gen=%d latest=%d", c.name, gen, c.gen)
		return nil, ErrStaleResponse
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.logger.Printf("store=%s op=fetch status=error err=%v", c.name, err)
		return nil, err
	}

	c.items = c.dedupe(nil, page.Results)
	c.count = page.Count
	c.next = page.Next
	c.filters = filters
	c.loaded = true
	c.loadingMore = false
	return slices.Clone(c.items), nil
}

// Refresh re-issues page one for the most recently requested filters. It never joins a request
// issued before it, so a refresh after a mutation observes that mutation.
func (c *Collection[T]) Refresh(ctx context.Context) (CollectionSnapshot[T], error) {
	c.mu.RLock()
	filters := c.issuedFilters
	c.mu.RUnlock()
	return c.fetchFirst(ctx, filters.Clone(), true)
}

// LoadMore appends the page addressed by the current cursor. It fails with ErrNoMorePages when
// nothing has been loaded or the server reported no next page.
func (c *Collection[T]) LoadMore(ctx context.Context) (CollectionSnapshot[T], error) {
	if err := c.checkGuard(); err != nil {
		return CollectionSnapshot[T]{}, err
	}

	c.mu.Lock()
	if !c.loaded || c.next == "" {
		c.mu.Unlock()
		return c.Snapshot(), ErrNoMorePages
	}
	cursor := c.next
	gen := c.gen
	c.mu.Unlock()

	ch := c.group.DoChan(fmt.Sprintf("more#%d#%s", gen, cursor), func() (any, error) {
		c.mu.Lock()
		if gen == c.gen {
			c.loadingMore = true
			c.err = nil
		}
		c.mu.Unlock()

		page, err := c.fetch(context.WithoutCancel(ctx), api.PageQuery{Cursor: cursor})
		added, err := c.settleMore(gen, cursor, page, err)
		c.announce(added)
		return nil, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return c.Snapshot(), res.Err
		}
		return c.Snapshot(), nil
	case <-ctx.Done():
		return c.Snapshot(), ctx.Err()
	}
}

func (c *Collection[T]) settleMore(gen uint64, cursor string, page domain.Page[T], err error) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || cursor != c.next {
		if gen == c.gen {
			c.loadingMore = false
		}
		c.logger.Printf("store=%s op=load_more status=stale", c.name)
		return nil, ErrStaleResponse
	}
	c.loadingMore = false
	if err != nil {
		c.err = err
		c.logger.Printf("store=%s op=load_more status=error err=%v", c.name, err)
		return nil, err
	}

	prev := len(c.items)
	c.items = c.dedupe(c.items, page.Results)
	c.count = page.Count
	c.next = page.Next
	return slices.Clone(c.items[prev:]), nil
}

func (c *Collection[T]) dedupe(dst []T, src []T) []T {
	seen := make(map[int64]struct{}, len(dst)+len(src))
	out := make([]T, 0, len(dst)+len(src))
	for _, it := range dst {
		seen[c.idOf(it)] = struct{}{}
		out = append(out, it)
	}
	for _, it := range src {
		id := c.idOf(it)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, it)
	}
	return out
}

// ReplaceItem swaps in a re-fetched item by id. It reports whether the item was loaded.
func (c *Collection[T]) ReplaceItem(item T) bool {
	id := c.idOf(item)
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

func (c *Collection[T]) Find(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if c.idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.items = nil
	c.count = 0
	c.next = ""
	c.filters = Filters{}
	c.issuedKey = ""
	c.issuedFilters = nil
	c.loaded = false
	c.loading = false
	c.loadingMore = false
	c.err = nil
}

func (c *Collection[T]) Snapshot() CollectionSnapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return CollectionSnapshot[T]{
		Items:       items,
		Count:       c.count,
		Next:        c.next,
		Filters:     c.filters.Clone(),
		Loaded:      c.loaded,
		Loading:     c.loading,
		LoadingMore: c.loadingMore,
		Err:         c.err,
	}
}
