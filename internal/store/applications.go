package store

import (
	"context"
	"log"
	"strings"
	"sync"

	"hirepath/internal/domain"
	"hirepath/internal/domain/application"
	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

type ApplicationAPI interface {
	Candidates(ctx context.Context, q api.PageQuery) (domain.Page[application.Record], error)
	MyApplications(ctx context.Context, q api.PageQuery) (domain.Page[application.Record], error)
	Application(ctx context.Context, id int64) (application.Record, error)
	Apply(ctx context.Context, in application.ApplyInput) (application.Record, error)
	Withdraw(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, upd application.StatusUpdate) (application.Record, error)
	GraduateStats(ctx context.Context) (application.GraduateStats, error)
	RecruiterStats(ctx context.Context) (application.RecruiterStats, error)
}

// ApplicationStore holds the recruiter's candidate list, the graduate's own applications, single
// application records and the dashboard statistics.
type ApplicationStore struct {
	api      ApplicationAPI
	session  SessionReader
	notifier notify.Notifier
	logger   *log.Logger

	candidates     *Collection[application.Record]
	mine           *Collection[application.Record]
	graduateStats  *Resource[application.GraduateStats]
	recruiterStats *Resource[application.RecruiterStats]

	mu      sync.Mutex
	records map[int64]*Resource[application.Record]
}

func NewApplicationStore(appAPI ApplicationAPI, sess SessionReader, notifier notify.Notifier, logger *log.Logger) *ApplicationStore {
	if logger == nil {
		logger = log.Default()
	}
	recruiter := func() error { return sess.RequireRole(session.RoleRecruiter) }
	graduate := func() error { return sess.RequireRole(session.RoleGraduate) }

	s := &ApplicationStore{
		api:            appAPI,
		session:        sess,
		notifier:       notifier,
		logger:         logger,
		candidates:     NewCollection[application.Record]("candidates", appAPI.Candidates, application.Record.RecordID, recruiter, logger),
		mine:           NewCollection[application.Record]("applications_mine", appAPI.MyApplications, application.Record.RecordID, graduate, logger),
		graduateStats:  NewResource[application.GraduateStats]("graduate_stats", appAPI.GraduateStats, graduate, logger),
		recruiterStats: NewResource[application.RecruiterStats]("recruiter_stats", appAPI.RecruiterStats, recruiter, logger),
		records:        make(map[int64]*Resource[application.Record]),
	}
	s.candidates.OnSettle(s.forgetRecords)
	s.mine.OnSettle(s.forgetRecords)
	return s
}

// forgetRecords drops single-record copies superseded by list items the server just returned.
func (s *ApplicationStore) forgetRecords(items []application.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		delete(s.records, it.ID)
	}
}

func (s *ApplicationStore) notify(level notify.Level, title, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, title, message)
	}
}

func (s *ApplicationStore) OnSessionChange(context.Context, session.Change) {
	s.candidates.Reset()
	s.mine.Reset()
	s.graduateStats.Reset()
	s.recruiterStats.Reset()
	s.mu.Lock()
	s.records = make(map[int64]*Resource[application.Record])
	s.mu.Unlock()
}

func (s *ApplicationStore) FetchCandidates(ctx context.Context, filters Filters) (CollectionSnapshot[application.Record], error) {
	return s.candidates.Fetch(ctx, filters)
}

func (s *ApplicationStore) LoadMoreCandidates(ctx context.Context) (CollectionSnapshot[application.Record], error) {
	return s.candidates.LoadMore(ctx)
}

func (s *ApplicationStore) Candidates() CollectionSnapshot[application.Record] {
	return s.candidates.Snapshot()
}

// FilteredCandidates applies f over the loaded candidates only; the summary keeps the server
// total separate from what is loaded and shown.
func (s *ApplicationStore) FilteredCandidates(f CandidateFilter) ([]application.Record, CandidateSummary) {
	snap := s.candidates.Snapshot()
	return f.Apply(snap.Items), SummarizeCandidates(snap, f)
}

func (s *ApplicationStore) FetchMine(ctx context.Context, filters Filters) (CollectionSnapshot[application.Record], error) {
	return s.mine.Fetch(ctx, filters)
}

func (s *ApplicationStore) LoadMoreMine(ctx context.Context) (CollectionSnapshot[application.Record], error) {
	return s.mine.LoadMore(ctx)
}

func (s *ApplicationStore) Mine() CollectionSnapshot[application.Record] {
	return s.mine.Snapshot()
}

func (s *ApplicationStore) record(id int64) *Resource[application.Record] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		r = NewResource[application.Record]("application", func(ctx context.Context) (application.Record, error) {
			return s.api.Application(ctx, id)
		}, s.session.RequireAuth, s.logger)
		s.records[id] = r
	}
	return r
}

// Record serves a single application, preferring a cached copy or a loaded list item. A list
// response drops the cached copies of the records it carries, so the newer of the two wins.
func (s *ApplicationStore) Record(ctx context.Context, id int64) (application.Record, error) {
	res := s.record(id)
	if rec, ok := res.Data(); ok {
		return rec, nil
	}
	if rec, ok := s.candidates.Find(id); ok {
		return rec, nil
	}
	if rec, ok := s.mine.Find(id); ok {
		return rec, nil
	}
	return res.Fetch(ctx)
}

// RefreshRecord re-fetches one application and replaces it in every list that holds it.
func (s *ApplicationStore) RefreshRecord(ctx context.Context, id int64) (application.Record, error) {
	rec, err := s.record(id).Reload(ctx)
	if err != nil {
		return application.Record{}, err
	}
	s.candidates.ReplaceItem(rec)
	s.mine.ReplaceItem(rec)
	return rec, nil
}

// UpdateStatus sends a status transition. Notifications and the follow-up re-fetch belong to the
// workflow controller.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, id int64, upd application.StatusUpdate) (application.Record, error) {
	if err := s.session.RequireRole(session.RoleRecruiter); err != nil {
		return application.Record{}, err
	}
	rec, err := s.api.UpdateStatus(ctx, id, upd)
	if err != nil {
		s.logger.Printf("store=applications op=update_status application_id=%d status=error err=%v", id, err)
		return application.Record{}, err
	}
	return rec, nil
}

func (s *ApplicationStore) Apply(ctx context.Context, jobID int64, coverLetter string) (application.Record, error) {
	if err := s.session.RequireRole(session.RoleGraduate); err != nil {
		return application.Record{}, err
	}
	if jobID <= 0 {
		return application.Record{}, apperror.Validation("job: Select a valid job.", nil)
	}

	rec, err := s.api.Apply(ctx, application.ApplyInput{JobID: jobID, CoverLetter: strings.TrimSpace(coverLetter)})
	if err != nil {
		s.logger.Printf("store=applications op=apply job_id=%d status=error err=%v", jobID, err)
		s.notify(notify.LevelError, "Application not sent", apperror.Message(err, "Failed to submit application."))
		return application.Record{}, err
	}
	s.notify(notify.LevelSuccess, "Application sent", "Your application has been submitted.")
	s.refreshMine(ctx, "apply")
	return rec, nil
}

func (s *ApplicationStore) Withdraw(ctx context.Context, id int64) error {
	if err := s.session.RequireRole(session.RoleGraduate); err != nil {
		return err
	}
	if err := s.api.Withdraw(ctx, id); err != nil {
		s.logger.Printf("store=applications op=withdraw application_id=%d status=error err=%v", id, err)
		s.notify(notify.LevelError, "Application not withdrawn", apperror.Message(err, "Failed to withdraw application."))
		return err
	}
	s.notify(notify.LevelInfo, "Application withdrawn", "Your application has been withdrawn.")
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	s.refreshMine(ctx, "withdraw")
	return nil
}

func (s *ApplicationStore) refreshMine(ctx context.Context, op string) {
	if _, err := s.mine.Refresh(ctx); err != nil {
		s.logger.Printf("store=applications op=%s step=refresh_mine status=error err=%v", op, err)
	}
	if s.graduateStats.Snapshot().Loaded {
		if _, err := s.graduateStats.Reload(ctx); err != nil {
			s.logger.Printf("store=applications op=%s step=refresh_stats status=error err=%v", op, err)
		}
	}
}

func (s *ApplicationStore) GraduateStats(ctx context.Context) (application.GraduateStats, error) {
	return s.graduateStats.Fetch(ctx)
}

func (s *ApplicationStore) RecruiterStats(ctx context.Context) (application.RecruiterStats, error) {
	return s.recruiterStats.Fetch(ctx)
}

// RefreshStats re-fetches the statistics resource of the current role. Anonymous sessions are
// skipped.
func (s *ApplicationStore) RefreshStats(ctx context.Context) error {
	cur, ok := s.session.Current()
	if !ok {
		return nil
	}
	var err error
	if cur.IsRecruiter() {
		_, err = s.recruiterStats.Reload(ctx)
	} else {
		_, err = s.graduateStats.Reload(ctx)
	}
	return err
}

func (s *ApplicationStore) GraduateStatsSnapshot() Snapshot[application.GraduateStats] {
	return s.graduateStats.Snapshot()
}

func (s *ApplicationStore) RecruiterStatsSnapshot() Snapshot[application.RecruiterStats] {
	return s.recruiterStats.Snapshot()
}
