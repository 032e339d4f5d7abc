package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/domain"
	"hirepath/internal/domain/application"
	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/pkg/apperror"
)

type applicationBackend struct {
	mu          sync.Mutex
	records     []application.Record
	recordCalls int
	statsCalls  int
	withdrawn   []int64
}

func (b *applicationBackend) list() domain.Page[application.Record] {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]application.Record(nil), b.records...)
	return domain.Page[application.Record]{Results: out, Count: len(out) + 10, Next: "more"}
}

func (b *applicationBackend) Candidates(context.Context, api.PageQuery) (domain.Page[application.Record], error) {
	return b.list(), nil
}

func (b *applicationBackend) MyApplications(context.Context, api.PageQuery) (domain.Page[application.Record], error) {
	return b.list(), nil
}

func (b *applicationBackend) Application(_ context.Context, id int64) (application.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recordCalls++
	for _, r := range b.records {
		if r.ID == id {
			return r, nil
		}
	}
	return application.Record{}, apperror.FromResponse(404, nil)
}

func (b *applicationBackend) Apply(_ context.Context, in application.ApplyInput) (application.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := application.Record{ID: int64(len(b.records) + 100), JobID: in.JobID, Status: application.StatusPending}
	b.records = append(b.records, r)
	return r, nil
}

func (b *applicationBackend) Withdraw(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.withdrawn = append(b.withdrawn, id)
	return nil
}

func (b *applicationBackend) UpdateStatus(_ context.Context, id int64, upd application.StatusUpdate) (application.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.records {
		if b.records[i].ID == id {
			b.records[i].Status = upd.Status
			return b.records[i], nil
		}
	}
	return application.Record{}, apperror.FromResponse(404, nil)
}

func (b *applicationBackend) GraduateStats(context.Context) (application.GraduateStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statsCalls++
	return application.GraduateStats{TotalApplications: len(b.records)}, nil
}

func (b *applicationBackend) RecruiterStats(context.Context) (application.RecruiterStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statsCalls++
	return application.RecruiterStats{ActiveApplications: len(b.records)}, nil
}

func seededCandidates() *applicationBackend {
	return &applicationBackend{records: []application.Record{
		{ID: 1, Status: application.StatusPending, MatchScore: 91, FirstName: "Ana", JobTitle: "Backend"},
		{ID: 2, Status: application.StatusShortlisted, MatchScore: 64, FirstName: "Budi", JobTitle: "Frontend"},
		{ID: 3, Status: application.StatusPending, MatchScore: 30, FirstName: "Citra", JobTitle: "Backend"},
	}}
}

func TestApplications_FilteredCandidatesSummary(t *testing.T) {
	as := NewApplicationStore(seededCandidates(), sessionAs(session.RoleRecruiter), &fakeNotifier{}, quietLogger())
	_, err := as.FetchCandidates(context.Background(), Filters{"job": "4"})
	require.NoError(t, err)

	items, sum := as.FilteredCandidates(CandidateFilter{JobTitle: "backend"})
	assert.Equal(t, []int64{1, 3}, ids(items))
	assert.Equal(t, CandidateSummary{Total: 13, Loaded: 3, Shown: 2, Pending: 2, Shortlisted: 1, Excellent: 1, Good: 1}, sum)
}

func TestApplications_RefreshRecordPropagatesToLists(t *testing.T) {
	b := seededCandidates()
	as := NewApplicationStore(b, sessionAs(session.RoleRecruiter), &fakeNotifier{}, quietLogger())
	_, err := as.FetchCandidates(context.Background(), nil)
	require.NoError(t, err)

	rec, err := as.Record(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, rec.Status)
	assert.Zero(t, b.recordCalls)

	_, err = as.UpdateStatus(context.Background(), 1, application.StatusUpdate{Status: application.StatusReviewed})
	require.NoError(t, err)
	rec, err = as.RefreshRecord(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, application.StatusReviewed, rec.Status)
	assert.Equal(t, 1, b.recordCalls)

	listed, ok := as.candidates.Find(1)
	require.True(t, ok)
	assert.Equal(t, application.StatusReviewed, listed.Status)

	rec, err = as.Record(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, application.StatusReviewed, rec.Status)
}

func TestApplications_RecordFetchesWhenNotListed(t *testing.T) {
	b := seededCandidates()
	as := NewApplicationStore(b, sessionAs(session.RoleRecruiter), &fakeNotifier{}, quietLogger())

	rec, err := as.Record(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Budi", rec.FirstName)
	_, err = as.Record(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, b.recordCalls)
}

func TestApplications_ListResponseSupersedesCachedRecord(t *testing.T) {
	b := seededCandidates()
	as := NewApplicationStore(b, sessionAs(session.RoleRecruiter), &fakeNotifier{}, quietLogger())
	ctx := context.Background()

	rec, err := as.Record(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, rec.Status)

	b.mu.Lock()
	b.records[1].Status = application.StatusHired
	b.mu.Unlock()

	_, err = as.FetchCandidates(ctx, nil)
	require.NoError(t, err)
	rec, err = as.Record(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, application.StatusHired, rec.Status)
	assert.Equal(t, 1, b.recordCalls)
}

func TestApplications_RoleGuards(t *testing.T) {
	b := seededCandidates()
	grad := NewApplicationStore(b, sessionAs(session.RoleGraduate), &fakeNotifier{}, quietLogger())
	_, err := grad.FetchCandidates(context.Background(), nil)
	assert.True(t, apperror.IsForbidden(err))
	_, err = grad.UpdateStatus(context.Background(), 1, application.StatusUpdate{Status: application.StatusHired})
	assert.True(t, apperror.IsForbidden(err))

	rec := NewApplicationStore(b, sessionAs(session.RoleRecruiter), &fakeNotifier{}, quietLogger())
	_, err = rec.Apply(context.Background(), 4, "")
	assert.True(t, apperror.IsForbidden(err))
	assert.True(t, apperror.IsForbidden(rec.Withdraw(context.Background(), 1)))
	assert.Len(t, b.records, 3)
}

func TestApplications_ApplyRefreshesOwnList(t *testing.T) {
	b := &applicationBackend{}
	n := &fakeNotifier{}
	as := NewApplicationStore(b, sessionAs(session.RoleGraduate), n, quietLogger())

	stats, err := as.GraduateStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalApplications)

	_, err = as.Apply(context.Background(), 0, "")
	assert.True(t, apperror.IsValidation(err))

	_, err = as.Apply(context.Background(), 4, "  Hello  ")
	require.NoError(t, err)
	assert.Len(t, as.Mine().Items, 1)
	assert.Equal(t, 1, as.GraduateStatsSnapshot().Data.TotalApplications)

	require.NoError(t, as.Withdraw(context.Background(), 100))
	assert.Equal(t, []int64{100}, b.withdrawn)
	assert.Len(t, n.all(), 2)
}

func TestApplications_RefreshStatsByRole(t *testing.T) {
	b := seededCandidates()
	as := NewApplicationStore(b, sessionAs(session.RoleRecruiter), &fakeNotifier{}, quietLogger())

	require.NoError(t, as.RefreshStats(context.Background()))
	assert.Equal(t, 3, as.RecruiterStatsSnapshot().Data.ActiveApplications)
	assert.False(t, as.GraduateStatsSnapshot().Loaded)

	anon := &fakeSession{}
	as = NewApplicationStore(b, anon, &fakeNotifier{}, quietLogger())
	require.NoError(t, as.RefreshStats(context.Background()))
	assert.Equal(t, 1, b.statsCalls)
}
