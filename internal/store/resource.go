package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrStaleResponse = errors.New("store: response superseded by a newer request")

type Fetcher[T any] func(ctx context.Context) (T, error)

// Guard reports whether a fetch may run at all, typically by checking the session.
type Guard func() error

type Snapshot[T any] struct {
	Data      T
	Loaded    bool
	Loading   bool
	Err       error
	UpdatedAt time.Time
}

// Resource is a single named server resource with fetch-or-serve-cached semantics. Concurrent
// refetches share one call; a response is applied only when it belongs to the latest issued
// request, and a failed fetch keeps the last good data.
type Resource[T any] struct {
	name   string
	fetch  Fetcher[T]
	guard  Guard
	logger *log.Logger

	mu        sync.RWMutex
	data      T
	loaded    bool
	inflight  int
	err       error
	updatedAt time.Time

	// gen tags requests: a response is applied only while gen is unchanged since it was issued.
	gen uint64

	group singleflight.Group
	now   func() time.Time
}

func NewResource[T any](name string, fetch Fetcher[T], guard Guard, logger *log.Logger) *Resource[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Resource[T]{
		name:   name,
		fetch:  fetch,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Resource[T]) Name() string {
	return r.name
}

// Fetch serves cached data when the resource has loaded at least once, otherwise it refetches.
func (r *Resource[T]) Fetch(ctx context.Context) (T, error) {
	r.mu.RLock()
	data, loaded := r.data, r.loaded
	r.mu.RUnlock()
	if loaded {
		return data, nil
	}
	return r.Refetch(ctx)
}

// Refetch loads the resource from the server. Calls made while a refetch is in flight join it
// instead of issuing another request.
func (r *Resource[T]) Refetch(ctx context.Context) (T, error) {
	var zero T
	if r.guard != nil {
		if err := r.guard(); err != nil {
			r.mu.Lock()
			r.err = err
			r.mu.Unlock()
			return zero, err
		}
	}

	r.mu.RLock()
	gen := r.gen
	r.mu.RUnlock()

	ch := r.group.DoChan(fmt.Sprintf("%s#%d", r.name, gen), func() (any, error) {
		r.mu.Lock()
		if gen == r.gen {
			r.inflight++
			r.err = nil
		}
		r.mu.Unlock()

		v, err := r.fetch(context.WithoutCancel(ctx))
		return r.settle(gen, v, err)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Reload is Refetch without joining a request issued earlier. Invalidation after a mutation uses
// it so the result reflects the mutation.
func (r *Resource[T]) Reload(ctx context.Context) (T, error) {
	r.mu.Lock()
	r.gen++
	r.mu.Unlock()
	return r.Refetch(ctx)
}

func (r *Resource[T]) settle(gen uint64, v T, err error) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.gen {
		r.logger.Printf("store=%s op=fetch status=stale gen=%d latest=%d", r.name, gen, r.gen)
		var zero T
		return zero, ErrStaleResponse
	}
	r.inflight = 0
	if err != nil {
		r.err = err
		r.logger.Printf("store=%s op=fetch status=error err=%v", r.name, err)
		var zero T
		return zero, err
	}
	r.data = v
	r.loaded = true
	r.updatedAt = r.now().UTC()
	return v, nil
}

// Commit stores v as the current data, typically the entity returned by a mutation. Any fetch
// still in flight is superseded.
func (r *Resource[T]) Commit(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.inflight = 0
	r.data = v
	r.loaded = true
	r.err = nil
	r.updatedAt = r.now().UTC()
}

// Fail records err without touching data. Used when a dependent step of a mutation fails.
func (r *Resource[T]) Fail(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Reset drops data and error and discards every request issued before it.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.gen++
	r.inflight = 0
	r.data = zero
	r.loaded = false
	r.err = nil
	r.updatedAt = time.Time{}
}

func (r *Resource[T]) Snapshot() Snapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot[T]{
		Data:      r.data,
		Loaded:    r.loaded,
		Loading:   r.inflight > 0,
		Err:       r.err,
		UpdatedAt: r.updatedAt,
	}
}

func (r *Resource[T]) Data() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data, r.loaded
}

func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

func (r *Resource[T]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inflight > 0
}
