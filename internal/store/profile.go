package store

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"

	"hirepath/internal/domain/profile"
	"hirepath/internal/domain/session"
	"hirepath/internal/domain/skill"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

// SessionReader is how dependent stores see the session.
type SessionReader interface {
	Current() (session.Session, bool)
	RequireAuth() error
	RequireRole(role session.Role) error
}

type ProfileAPI interface {
	Profile(ctx context.Context) (profile.Profile, error)
	UpdateProfile(ctx context.Context, patch profile.Patch) (profile.Profile, error)
	Company(ctx context.Context) (profile.Company, error)
	CreateCompany(ctx context.Context, in profile.CompanyInput) (profile.Company, error)
	SetJobRoles(ctx context.Context, ids []int64) error
	UploadResume(ctx context.Context, name string, r io.Reader) (profile.ResumeFeedback, error)
}

// ProfileStore holds the user profile and, for recruiters, the company profile. A recruiter
// without a company has Company()==nil and no error.
type ProfileStore struct {
	api      ProfileAPI
	session  SessionReader
	notifier notify.Notifier
	logger   *log.Logger

	profile *Resource[profile.Profile]
	company *Resource[*profile.Company]
}

func NewProfileStore(profileAPI ProfileAPI, sess SessionReader, notifier notify.Notifier, logger *log.Logger) *ProfileStore {
	if logger == nil {
		logger = log.Default()
	}
	s := &ProfileStore{
		api:      profileAPI,
		session:  sess,
		notifier: notifier,
		logger:   logger,
	}
	s.profile = NewResource[profile.Profile]("profile", profileAPI.Profile, sess.RequireAuth, logger)
	s.company = NewResource[*profile.Company]("company", s.fetchCompany, func() error {
		return sess.RequireRole(session.RoleRecruiter)
	}, logger)
	return s
}

func (s *ProfileStore) fetchCompany(ctx context.Context) (*profile.Company, error) {
	c, err := s.api.Company(ctx)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ProfileStore) notify(level notify.Level, title, message string) {
	if s.notifier != nil {
		s.notifier.Notify(level, title, message)
	}
}

// OnSessionChange drops everything cached for the previous user and, when a user is logged in,
// fetches the profile and the recruiter company independently of each other.
func (s *ProfileStore) OnSessionChange(ctx context.Context, change session.Change) {
	s.profile.Reset()
	s.company.Reset()
	if change.Current == nil {
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.profile.Refetch(ctx)
	}()
	if change.Current.IsRecruiter() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.company.Refetch(ctx)
		}()
	}
	wg.Wait()
}

func (s *ProfileStore) FetchProfile(ctx context.Context) (profile.Profile, error) {
	return s.profile.Refetch(ctx)
}

// Invalidate re-fetches the profile after a mutation that changed server-derived fields.
func (s *ProfileStore) Invalidate(ctx context.Context, reason string) error {
	s.logger.Printf("store=profile op=invalidate reason=%s", reason)
	_, err := s.profile.Reload(ctx)
	return err
}

// FetchCompany returns nil without error for a recruiter who has not created a company yet.
func (s *ProfileStore) FetchCompany(ctx context.Context) (*profile.Company, error) {
	return s.company.Refetch(ctx)
}

func (s *ProfileStore) UpdateProfile(ctx context.Context, patch profile.Patch) (profile.Profile, error) {
	if err := s.session.RequireAuth(); err != nil {
		return profile.Profile{}, err
	}
	if patch.Empty() {
		return profile.Profile{}, apperror.Validation("Nothing to update.", nil)
	}

	p, err := s.api.UpdateProfile(ctx, patch)
	if err != nil {
		s.profile.Fail(err)
		s.logger.Printf("store=profile op=update status=error err=%v", err)
		s.notify(notify.LevelError, "Profile not updated", apperror.Message(err, "Failed to update profile."))
		return profile.Profile{}, err
	}
	s.profile.Commit(p)
	s.notify(notify.LevelSuccess, "Profile updated", "Your profile has been saved.")
	return p, nil
}

func (s *ProfileStore) CreateCompany(ctx context.Context, in profile.CompanyInput) (*profile.Company, error) {
	if err := s.session.RequireRole(session.RoleRecruiter); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperror.Validation("name: Company name is required.", nil)
	}

	c, err := s.api.CreateCompany(ctx, in)
	if err != nil {
		s.company.Fail(err)
		s.logger.Printf("store=company op=create status=error err=%v", err)
		s.notify(notify.LevelError, "Company not created", apperror.Message(err, "Failed to create company profile."))
		return nil, err
	}
	s.company.Commit(&c)
	s.notify(notify.LevelSuccess, "Company created", c.Name+" is ready.")
	return &c, nil
}

// SetJobRoles replaces the target job roles and re-fetches the profile.
func (s *ProfileStore) SetJobRoles(ctx context.Context, ids []int64) error {
	if err := s.session.RequireAuth(); err != nil {
		return err
	}
	if err := s.api.SetJobRoles(ctx, ids); err != nil {
		s.profile.Fail(err)
		s.logger.Printf("store=profile op=set_job_roles status=error err=%v", err)
		s.notify(notify.LevelError, "Job roles not updated", apperror.Message(err, "Failed to update job roles."))
		return err
	}
	s.notify(notify.LevelSuccess, "Job roles updated", "Your target job roles have been saved.")
	return s.Invalidate(ctx, "job_roles")
}

func (s *ProfileStore) AddJobRole(ctx context.Context, id int64) error {
	current, err := s.jobRoleIDs(ctx)
	if err != nil {
		return err
	}
	for _, v := range current {
		if v == id {
			return nil
		}
	}
	return s.SetJobRoles(ctx, append(current, id))
}

func (s *ProfileStore) RemoveJobRole(ctx context.Context, id int64) error {
	current, err := s.jobRoleIDs(ctx)
	if err != nil {
		return err
	}
	next := make([]int64, 0, len(current))
	for _, v := range current {
		if v != id {
			next = append(next, v)
		}
	}
	if len(next) == len(current) {
		return nil
	}
	return s.SetJobRoles(ctx, next)
}

func (s *ProfileStore) jobRoleIDs(ctx context.Context) ([]int64, error) {
	p, err := s.profile.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(p.TargetJobRoles))
	for _, r := range p.TargetJobRoles {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// UploadResume submits a resume for analysis and re-fetches the profile for the new score.
func (s *ProfileStore) UploadResume(ctx context.Context, name string, r io.Reader) (profile.ResumeFeedback, error) {
	if err := s.session.RequireRole(session.RoleGraduate); err != nil {
		return profile.ResumeFeedback{}, err
	}
	if strings.TrimSpace(name) == "" {
		return profile.ResumeFeedback{}, apperror.Validation("file: A file name is required.", nil)
	}

	fb, err := s.api.UploadResume(ctx, name, r)
	if err != nil {
		s.logger.Printf("store=profile op=upload_resume status=error err=%v", err)
		s.notify(notify.LevelError, "Resume not analyzed", apperror.Message(err, "Failed to upload resume."))
		return profile.ResumeFeedback{}, err
	}
	s.notify(notify.LevelSuccess, "Resume analyzed", "Your resume has been analyzed.")
	if err := s.Invalidate(ctx, "resume"); err != nil {
		s.logger.Printf("store=profile op=upload_resume step=refetch status=error err=%v", err)
	}
	return fb, nil
}

func (s *ProfileStore) Profile() Snapshot[profile.Profile] {
	return s.profile.Snapshot()
}

func (s *ProfileStore) Company() Snapshot[*profile.Company] {
	return s.company.Snapshot()
}

// Skills is the denormalized skill snapshot of the loaded profile, in server order.
func (s *ProfileStore) Skills() []skill.Skill {
	p, ok := s.profile.Data()
	if !ok {
		return nil
	}
	out := make([]skill.Skill, len(p.Skills))
	copy(out, p.Skills)
	return out
}
