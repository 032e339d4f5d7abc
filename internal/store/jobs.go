package store

import (
	"context"
	"log"
	"strings"
	"sync"

	"hirepath/internal/domain"
	"hirepath/internal/domain/job"
	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

type JobAPI interface {
	Jobs(ctx context.Context, q api.PageQuery) (domain.Page[job.Job], error)
	MyJobs(ctx context.Context, q api.PageQuery) (domain.Page[job.Job], error)
	Job(ctx context.Context, id int64) (job.Job, error)
	CreateJob(ctx context.Context, in job.Input) (job.Job, error)
	UpdateJob(ctx context.Context, id int64, in job.Input) (job.Job, error)
	DeleteJob(ctx context.Context, id int64) error
}

// JobStore holds the job board, the recruiter's own postings and single-job details. Mutations
// never insert locally; they re-fetch the recruiter's postings instead.
type JobStore struct {
	api      JobAPI
	session  SessionReader
	notifier notify.Notifier
	logger   *log.Logger

	board *Collection[job.Job]
	mine  *Collection[job.Job]

	mu      sync.Mutex
	details map[int64]*Resource[job.Job]
}

func NewJobStore(jobAPI JobAPI, sess SessionReader, notifier notify.Notifier, logger *log.Logger) *JobStore {
	if logger == nil {
		logger = log.Default()
	}
	return &JobStore{
		api:      jobAPI,
		session:  sess,
		notifier: notifier,
		logger:   logger,
		board:    NewCollection[job.Job]("jobs_board", jobAPI.Jobs, job.Job.JobID, sess.RequireAuth, logger),
		mine: NewCollection[job.Job]("jobs_mine", jobAPI.MyJobs, job.Job.JobID, func() error {
			return sess.RequireRole(session.RoleRecruiter)
		}, logger),
		details: make(map[int64]*Resource[job.Job]),
	}
}

func (s *JobStore) notify(level notify.Level, title, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, title, message)
	}
}

func (s *JobStore) OnSessionChange(context.Context, session.Change) {
	s.board.Reset()
	s.mine.Reset()
	s.mu.Lock()
	s.details = make(map[int64]*Resource[job.Job])
	s.mu.Unlock()
}

func (s *JobStore) FetchBoard(ctx context.Context, filters Filters) (CollectionSnapshot[job.Job], error) {
	return s.board.Fetch(ctx, filters)
}

func (s *JobStore) LoadMoreBoard(ctx context.Context) (CollectionSnapshot[job.Job], error) {
	return s.board.LoadMore(ctx)
}

func (s *JobStore) Board() CollectionSnapshot[job.Job] {
	return s.board.Snapshot()
}

// FilterBoard applies f to the loaded board without a network call.
func (s *JobStore) FilterBoard(f JobFilter) []job.Job {
	return f.Apply(s.board.Snapshot().Items)
}

func (s *JobStore) FetchMine(ctx context.Context, filters Filters) (CollectionSnapshot[job.Job], error) {
	return s.mine.Fetch(ctx, filters)
}

func (s *JobStore) LoadMoreMine(ctx context.Context) (CollectionSnapshot[job.Job], error) {
	return s.mine.LoadMore(ctx)
}

func (s *JobStore) Mine() CollectionSnapshot[job.Job] {
	return s.mine.Snapshot()
}

func (s *JobStore) detail(id int64) *Resource[job.Job] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.details[id]
	if !ok {
		r = NewResource[job.Job]("job_detail", func(ctx context.Context) (job.Job, error) {
			return s.api.Job(ctx, id)
		}, s.session.RequireAuth, s.logger)
		s.details[id] = r
	}
	return r
}

// Job serves a cached job detail or fetches it once.
func (s *JobStore) Job(ctx context.Context, id int64) (job.Job, error) {
	return s.detail(id).Fetch(ctx)
}

func validateJobInput(in job.Input) error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.Validation("title: This field may not be blank.", nil)
	}
	if strings.TrimSpace(in.Description) == "" {
		return apperror.Validation("description: This field may not be blank.", nil)
	}
	return nil
}

func (s *JobStore) Create(ctx context.Context, in job.Input) (job.Job, error) {
	if err := s.session.RequireRole(session.RoleRecruiter); err != nil {
		return job.Job{}, err
	}
	if err := validateJobInput(in); err != nil {
		return job.Job{}, err
	}

	created, err := s.api.CreateJob(ctx, in)
	if err != nil {
		s.logger.Printf("store=jobs op=create status=error err=%v", err)
		s.notify(notify.LevelError, "Job not posted", apperror.Message(err, "Failed to create job."))
		return job.Job{}, err
	}
	s.notify(notify.LevelSuccess, "Job posted", created.Title+" is now live.")
	s.refreshAfterMutation(ctx, "create")
	return created, nil
}

func (s *JobStore) Update(ctx context.Context, id int64, in job.Input) (job.Job, error) {
	if err := s.session.RequireRole(session.RoleRecruiter); err != nil {
		return job.Job{}, err
	}
	if err := validateJobInput(in); err != nil {
		return job.Job{}, err
	}

	updated, err := s.api.UpdateJob(ctx, id, in)
	if err != nil {
		s.logger.Printf("store=jobs op=update job_id=%d status=error err=%v", id, err)
		s.notify(notify.LevelError, "Job not updated", apperror.Message(err, "Failed to update job."))
		return job.Job{}, err
	}
	s.detail(id).Commit(updated)
	s.notify(notify.LevelSuccess, "Job updated", updated.Title+" has been updated.")
	s.refreshAfterMutation(ctx, "update")
	return updated, nil
}

func (s *JobStore) Delete(ctx context.Context, id int64) error {
	if err := s.session.RequireRole(session.RoleRecruiter); err != nil {
		return err
	}

	if err := s.api.DeleteJob(ctx, id); err != nil {
		s.logger.Printf("store=jobs op=delete job_id=%d status=error err=%v", id, err)
		s.notify(notify.LevelError, "Job not deleted", apperror.Message(err, "Failed to delete job."))
		return err
	}
	s.mu.Lock()
	delete(s.details, id)
	s.mu.Unlock()
	s.notify(notify.LevelSuccess, "Job deleted", "The job posting has been removed.")
	s.refreshAfterMutation(ctx, "delete")
	return nil
}

// refreshAfterMutation re-fetches the recruiter's postings, and the board when it was loaded.
// Refresh failures are recorded on the collections and logged; the mutation itself succeeded.
func (s *JobStore) refreshAfterMutation(ctx context.Context, op string) {
	if _, err := s.mine.Refresh(ctx); err != nil {
		s.logger.Printf("store=jobs op=%s step=refresh_mine status=error err=%v", op, err)
	}
	if s.board.Snapshot().Loaded {
		if _, err := s.board.Refresh(ctx); err != nil {
			s.logger.Printf("store=jobs op=%s step=refresh_board status=error err=%v", op, err)
		}
	}
}
