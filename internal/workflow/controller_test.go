package workflow

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/domain/application"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

type fakeStore struct {
	mu         sync.Mutex
	records    map[int64]application.Record
	updates    []application.StatusUpdate
	updateErr  error
	refreshErr error
	block      chan struct{}
}

func newFakeStore(recs ...application.Record) *fakeStore {
	m := make(map[int64]application.Record, len(recs))
	for _, r := range recs {
		m[r.ID] = r
	}
	return &fakeStore{records: m}
}

func (f *fakeStore) Record(_ context.Context, id int64) (application.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return application.Record{}, apperror.FromResponse(404, nil)
	}
	return r, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, upd application.StatusUpdate) (application.Record, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, upd)
	if f.updateErr != nil {
		return application.Record{}, f.updateErr
	}
	r := f.records[id]
	r.Status = upd.Status
	r.Notes = upd.Notes
	r.InterviewDate = upd.InterviewDate
	f.records[id] = r
	return r, nil
}

func (f *fakeStore) RefreshRecord(ctx context.Context, id int64) (application.Record, error) {
	if f.refreshErr != nil {
		return application.Record{}, f.refreshErr
	}
	return f.Record(ctx, id)
}

func (f *fakeStore) sent() []application.StatusUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]application.StatusUpdate(nil), f.updates...)
}

type note struct {
	Level   notify.Level
	Title   string
	Message string
}

type notes struct {
	mu  sync.Mutex
	all []note
}

func (n *notes) Notify(level notify.Level, title, message string) notify.Notification {
	n.mu.Lock()
	n.all = append(n.all, note{Level: level, Title: title, Message: message})
	n.mu.Unlock()
	return notify.Notification{Level: level, Title: title, Message: message}
}

func (n *notes) list() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.all...)
}

func newTestController(st *fakeStore) (*Controller, *notes) {
	n := &notes{}
	return NewController(st, n, log.New(io.Discard, "", 0)), n
}

func statusesOf(actions []Action) []application.Status {
	out := make([]application.Status, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Status)
	}
	return out
}

func TestQuickAction_ShortlistPending(t *testing.T) {
	st := newFakeStore(application.Record{ID: 11, Status: application.StatusPending})
	c, n := newTestController(st)

	rec, err := c.QuickAction(context.Background(), 11, application.StatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, rec.Status)

	got := n.list()
	require.Len(t, got, 1)
	assert.Equal(t, notify.LevelSuccess, got[0].Level)
	assert.Equal(t, "Candidate shortlisted successfully!", got[0].Message)

	assert.Equal(t, []application.Status{application.StatusRejected, application.StatusHired}, statusesOf(c.Actions(rec)))
	assert.False(t, c.InFlight(11))
}

func TestQuickAction_FailureAnnouncesThenReverts(t *testing.T) {
	st := newFakeStore(application.Record{ID: 11, Status: application.StatusPending})
	st.updateErr = apperror.Transient(apperror.MessageNetwork, errors.New("connection reset"))
	c, n := newTestController(st)

	_, err := c.QuickAction(context.Background(), 11, application.StatusHired)
	require.Error(t, err)

	got := n.list()
	require.Len(t, got, 2)
	assert.Equal(t, "Candidate hired! Congratulations!", got[0].Message)
	assert.Equal(t, notify.LevelError, got[1].Level)
	assert.Equal(t, "Network error. Please check your connection. Status reverted to PENDING.", got[1].Message)

	rec, err := st.Record(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, rec.Status)
	assert.False(t, c.InFlight(11))
}

func TestQuickAction_RejectedUsesWarningTone(t *testing.T) {
	st := newFakeStore(application.Record{ID: 2, Status: application.StatusReviewed})
	c, n := newTestController(st)

	_, err := c.QuickAction(context.Background(), 2, application.StatusRejected)
	require.NoError(t, err)
	got := n.list()
	require.Len(t, got, 1)
	assert.Equal(t, notify.LevelWarning, got[0].Level)
	assert.Equal(t, "Candidate rejected", got[0].Message)
}

func TestQuickAction_RejectsWithoutNotifying(t *testing.T) {
	st := newFakeStore(application.Record{ID: 1, Status: application.StatusShortlisted})
	c, n := newTestController(st)

	_, err := c.QuickAction(context.Background(), 1, application.StatusShortlisted)
	assert.ErrorIs(t, err, ErrNoOpTransition)

	_, err = c.QuickAction(context.Background(), 1, application.Status("ARCHIVED"))
	assert.ErrorIs(t, err, ErrUnknownStatus)

	assert.Empty(t, n.list())
	assert.Empty(t, st.sent())
}

func TestDetailedUpdate_MoveOutsideOfferedActionsReachesServer(t *testing.T) {
	st := newFakeStore(application.Record{ID: 3, Status: application.StatusRejected})
	c, n := newTestController(st)

	assert.Empty(t, c.Actions(application.Record{Status: application.StatusRejected}))

	rec, err := c.DetailedUpdate(context.Background(), 3, application.StatusShortlisted, Details{Notes: "second look"})
	require.NoError(t, err)
	assert.Equal(t, application.StatusShortlisted, rec.Status)

	sent := st.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, application.StatusShortlisted, sent[0].Status)

	got := n.list()
	require.Len(t, got, 1)
	assert.Equal(t, "Candidate shortlisted successfully!", got[0].Message)
}

func TestQuickAction_ServerRefusalIsReported(t *testing.T) {
	st := newFakeStore(application.Record{ID: 4, Status: application.StatusHired})
	st.updateErr = apperror.FromResponse(400, []byte(`{"detail":"Hired applications cannot move back."}`))
	c, n := newTestController(st)

	_, err := c.QuickAction(context.Background(), 4, application.StatusPending)
	require.Error(t, err)

	got := n.list()
	require.Len(t, got, 2)
	assert.Equal(t, notify.LevelError, got[1].Level)
	assert.Equal(t, "Hired applications cannot move back. Status reverted to HIRED.", got[1].Message)
}

func TestQuickAction_LookupFailureIsNotSilent(t *testing.T) {
	st := newFakeStore()
	c, n := newTestController(st)

	_, err := c.QuickAction(context.Background(), 404, application.StatusHired)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, st.sent())

	got := n.list()
	require.Len(t, got, 1)
	assert.Equal(t, notify.LevelError, got[0].Level)
	assert.Equal(t, apperror.MessageNotFound, got[0].Message)
}

func TestQuickAction_OneTransitionPerApplication(t *testing.T) {
	st := newFakeStore(application.Record{ID: 5, Status: application.StatusPending})
	st.block = make(chan struct{})
	c, _ := newTestController(st)

	done := make(chan error, 1)
	go func() {
		_, err := c.QuickAction(context.Background(), 5, application.StatusReviewed)
		done <- err
	}()
	require.Eventually(t, func() bool { return c.InFlight(5) }, time.Second, time.Millisecond)

	_, err := c.QuickAction(context.Background(), 5, application.StatusRejected)
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	close(st.block)
	require.NoError(t, <-done)
	assert.Len(t, st.sent(), 1)
}

func TestQuickAction_RefreshFailureFallsBackToResponse(t *testing.T) {
	st := newFakeStore(application.Record{ID: 3, Status: application.StatusPending})
	st.refreshErr = errors.New("timeout")
	c, _ := newTestController(st)

	rec, err := c.QuickAction(context.Background(), 3, application.StatusReviewed)
	require.NoError(t, err)
	assert.Equal(t, application.StatusReviewed, rec.Status)
}

func TestDetailedUpdate(t *testing.T) {
	st := newFakeStore(
		application.Record{ID: 1, Status: application.StatusReviewed},
		application.Record{ID: 2, Status: application.StatusPending},
	)
	c, _ := newTestController(st)

	rec, err := c.DetailedUpdate(context.Background(), 1, application.StatusShortlisted, Details{
		Notes:         "  Strong Go background ",
		InterviewDate: "2025-03-14T10:30",
	})
	require.NoError(t, err)
	require.NotNil(t, rec.Notes)
	assert.Equal(t, "Strong Go background", *rec.Notes)
	require.NotNil(t, rec.InterviewDate)
	assert.Equal(t, "2025-03-14T10:30", *rec.InterviewDate)

	_, err = c.DetailedUpdate(context.Background(), 2, application.StatusRejected, Details{InterviewDate: "2025-03-14"})
	assert.True(t, apperror.IsValidation(err))

	_, err = c.DetailedUpdate(context.Background(), 2, application.StatusHired, Details{InterviewDate: "next tuesday"})
	assert.True(t, apperror.IsValidation(err))

	rec, err = c.DetailedUpdate(context.Background(), 2, application.StatusReviewed, Details{Notes: "   "})
	require.NoError(t, err)
	assert.Nil(t, rec.Notes)
	assert.Len(t, st.sent(), 2)
}
