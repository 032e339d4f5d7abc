package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/domain"
	"hirepath/internal/domain/application"
	"hirepath/internal/infrastructure/api"
)

func records(from, to int) []application.Record {
	out := make([]application.Record, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, application.Record{ID: int64(i), Status: application.StatusPending, MatchScore: float64(100 - i)})
	}
	return out
}

// pagedBackend serves 50 candidates, 20 per page, addressed by "cursor:<offset>".
type pagedBackend struct {
	mu      sync.Mutex
	calls   []api.PageQuery
	fail    bool
	overlap bool
}

func (b *pagedBackend) fetch(_ context.Context, q api.PageQuery) (domain.Page[application.Record], error) {
	b.mu.Lock()
	b.calls = append(b.calls, q)
	fail, overlap := b.fail, b.overlap
	b.mu.Unlock()

	if fail {
		return domain.Page[application.Record]{}, errors.New("backend unavailable")
	}
	offset := 0
	if q.Cursor != "" {
		if _, err := fmt.Sscanf(q.Cursor, "cursor:%d", &offset); err != nil {
			return domain.Page[application.Record]{}, err
		}
	}
	start := offset + 1
	if overlap && offset > 0 {
		start = offset - 1
	}
	end := offset + 20
	if end > 50 {
		end = 50
	}
	page := domain.Page[application.Record]{Results: records(start, end), Count: 50}
	if end < 50 {
		page.Next = fmt.Sprintf("cursor:%d", end)
	}
	return page, nil
}

func (b *pagedBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func newCandidates(b *pagedBackend) *Collection[application.Record] {
	return NewCollection[application.Record]("candidates", b.fetch, application.Record.RecordID, nil, quietLogger())
}

func ids(items []application.Record) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestCollection_LoadMoreAppends(t *testing.T) {
	c := newCandidates(&pagedBackend{})
	ctx := context.Background()

	snap, err := c.Fetch(ctx, Filters{"status": "PENDING"})
	require.NoError(t, err)
	require.Len(t, snap.Items, 20)
	assert.Equal(t, 50, snap.Count)
	require.True(t, snap.HasMore())

	snap, err = c.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 40)
	assert.Equal(t, 50, snap.Count)
	assert.Equal(t, int64(1), snap.Items[0].ID)
	assert.Equal(t, int64(40), snap.Items[39].ID)
}

func TestCollection_FetchIsReplaceNotAppend(t *testing.T) {
	c := newCandidates(&pagedBackend{})
	ctx := context.Background()

	first, err := c.Fetch(ctx, Filters{"status": "PENDING"})
	require.NoError(t, err)
	_, err = c.LoadMore(ctx)
	require.NoError(t, err)

	again, err := c.Fetch(ctx, Filters{"status": " PENDING "})
	require.NoError(t, err)
	assert.Equal(t, ids(first.Items), ids(again.Items))
	assert.Equal(t, "cursor:20", again.Next)
}

func TestCollection_LoadMoreSkipsDuplicates(t *testing.T) {
	b := &pagedBackend{overlap: true}
	c := newCandidates(b)
	ctx := context.Background()

	_, err := c.Fetch(ctx, nil)
	require.NoError(t, err)
	snap, err := c.LoadMore(ctx)
	require.NoError(t, err)

	seen := map[int64]bool{}
	for _, id := range ids(snap.Items) {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, snap.Items, 40)
}

func TestCollection_LoadMoreWithoutCursor(t *testing.T) {
	c := newCandidates(&pagedBackend{})
	_, err := c.LoadMore(context.Background())
	assert.ErrorIs(t, err, ErrNoMorePages)

	ctx := context.Background()
	_, err = c.Fetch(ctx, nil)
	require.NoError(t, err)
	_, err = c.LoadMore(ctx)
	require.NoError(t, err)
	snap, err := c.LoadMore(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 50)
	assert.False(t, snap.HasMore())

	_, err = c.LoadMore(ctx)
	assert.ErrorIs(t, err, ErrNoMorePages)
}

func TestCollection_FilterChangeDiscardsOlderResponse(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := NewCollection[application.Record]("candidates", func(_ context.Context, q api.PageQuery) (domain.Page[application.Record], error) {
		calls.Add(1)
		if q.Filters["status"] == "PENDING" {
			<-release
			return domain.Page[application.Record]{Results: records(1, 3), Count: 3}, nil
		}
		return domain.Page[application.Record]{Results: records(10, 11), Count: 2}, nil
	}, application.Record.RecordID, nil, quietLogger())

	oldErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(context.Background(), Filters{"status": "PENDING"})
		oldErr <- err
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	snap, err := c.Fetch(context.Background(), Filters{"status": "HIRED"})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, ids(snap.Items))

	close(release)
	assert.ErrorIs(t, <-oldErr, ErrStaleResponse)

	final := c.Snapshot()
	assert.Equal(t, []int64{10, 11}, ids(final.Items))
	assert.Equal(t, "HIRED", final.Filters["status"])
	assert.False(t, final.Loading)
}

func TestCollection_IdenticalFiltersShareOneCall(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	c := NewCollection[application.Record]("candidates", func(context.Context, api.PageQuery) (domain.Page[application.Record], error) {
		calls.Add(1)
		<-release
		return domain.Page[application.Record]{Results: records(1, 2), Count: 2}, nil
	}, application.Record.RecordID, nil, quietLogger())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Fetch(context.Background(), Filters{"job": "12"})
		}()
	}
	require.Eventually(t, func() bool { return c.Snapshot().Loading }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, c.Snapshot().Items, 2)
}

func TestCollection_FailurePreservesItems(t *testing.T) {
	b := &pagedBackend{}
	c := newCandidates(b)
	ctx := context.Background()

	before, err := c.Fetch(ctx, nil)
	require.NoError(t, err)

	b.mu.Lock()
	b.fail = true
	b.mu.Unlock()

	_, err = c.Refresh(ctx)
	require.Error(t, err)

	after := c.Snapshot()
	assert.Equal(t, ids(before.Items), ids(after.Items))
	assert.Equal(t, before.Count, after.Count)
	assert.Error(t, after.Err)

	_, err = c.LoadMore(ctx)
	require.Error(t, err)
	assert.Len(t, c.Snapshot().Items, 20)
}

func TestCollection_RefreshUsesLastFilters(t *testing.T) {
	b := &pagedBackend{}
	c := newCandidates(b)
	ctx := context.Background()

	_, err := c.Fetch(ctx, Filters{"status": "REVIEWED", "empty": " "})
	require.NoError(t, err)
	_, err = c.Refresh(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, b.callCount())
	assert.Equal(t, map[string]string{"status": "REVIEWED"}, b.calls[1].Filters)
}

func TestCollection_ReplaceItemAndReset(t *testing.T) {
	c := newCandidates(&pagedBackend{})
	_, err := c.Fetch(context.Background(), nil)
	require.NoError(t, err)

	ok := c.ReplaceItem(application.Record{ID: 2, Status: application.StatusShortlisted})
	require.True(t, ok)
	got, found := c.Find(2)
	require.True(t, found)
	assert.Equal(t, application.StatusShortlisted, got.Status)
	assert.False(t, c.ReplaceItem(application.Record{ID: 999}))

	c.Reset()
	snap := c.Snapshot()
	assert.Empty(t, snap.Items)
	assert.False(t, snap.Loaded)
	assert.Zero(t, snap.Count)
}

func TestFiltersKey(t *testing.T) {
	a := Filters{"Status": " PENDING ", "search": "go  developer", "empty": ""}
	b := Filters{"search": "go developer", "status": "PENDING"}
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys for equivalent filters")
	}
	if a.Key() == (Filters{"status": "REVIEWED"}).Key() {
		t.Fatalf("expected different keys for different filters")
	}
	if Filters(nil).Key() != (Filters{}).Key() {
		t.Fatalf("nil and empty filters must share a key")
	}
}
