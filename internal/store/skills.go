package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"hirepath/internal/domain/session"
	"hirepath/internal/domain/skill"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

type SkillAPI interface {
	SkillCatalog(ctx context.Context, search string) ([]skill.Skill, error)
	PopularSkills(ctx context.Context) ([]skill.Skill, error)
	AddSkill(ctx context.Context, id int64) error
	RemoveSkill(ctx context.Context, id int64) error
	SetSkills(ctx context.Context, ids []int64) error
}

// ProfileInvalidator is the slice of ProfileStore the skill inventory depends on.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, reason string) error
	Skills() []skill.Skill
}

// SkillStore mutates the user's skill selection. It never edits the local list: after every
// mutation the owning profile is re-fetched, because skill membership feeds match scores that
// only the server computes.
type SkillStore struct {
	api      SkillAPI
	profiles ProfileInvalidator
	session  SessionReader
	notifier notify.Notifier
	logger   *log.Logger

	catalog  *Resource[[]skill.Skill]
	popular  *Resource[[]skill.Skill]
	updating atomic.Int32
}

func NewSkillStore(skillAPI SkillAPI, profiles ProfileInvalidator, sess SessionReader, notifier notify.Notifier, logger *log.Logger) *SkillStore {
	if logger == nil {
		logger = log.Default()
	}
	s := &SkillStore{
		api:      skillAPI,
		profiles: profiles,
		session:  sess,
		notifier: notifier,
		logger:   logger,
	}
	s.catalog = NewResource[[]skill.Skill]("skill_catalog", func(ctx context.Context) ([]skill.Skill, error) {
		return skillAPI.SkillCatalog(ctx, "")
	}, nil, logger)
	s.popular = NewResource[[]skill.Skill]("skill_popular", skillAPI.PopularSkills, nil, logger)
	return s
}

func (s *SkillStore) AddSkill(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.Validation("skill: Select a valid skill.", nil)
	}
	return s.mutate(ctx, "add", func(ctx context.Context) error {
		return s.api.AddSkill(ctx, id)
	}, "Skill added", "The skill has been added to your profile.")
}

func (s *SkillStore) RemoveSkill(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.Validation("skill: Select a valid skill.", nil)
	}
	return s.mutate(ctx, "remove", func(ctx context.Context) error {
		return s.api.RemoveSkill(ctx, id)
	}, "Skill removed", "The skill has been removed from your profile.")
}

// SetSkills replaces the whole selection. Duplicate ids are sent once, in first-seen order.
func (s *SkillStore) SetSkills(ctx context.Context, ids []int64) error {
	seen := make(map[int64]struct{}, len(ids))
	uniq := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return apperror.Validation(fmt.Sprintf("skills: %d is not a valid skill.", id), nil)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	return s.mutate(ctx, "set", func(ctx context.Context) error {
		return s.api.SetSkills(ctx, uniq)
	}, "Skills updated", fmt.Sprintf("%d skills saved to your profile.", len(uniq)))
}

// mutate runs call and then re-fetches the profile whatever the outcome, so the cached skill list
// always mirrors the server after the call settles.
func (s *SkillStore) mutate(ctx context.Context, op string, call func(context.Context) error, title, message string) error {
	if err := s.session.RequireRole(session.RoleGraduate); err != nil {
		return err
	}

	s.updating.Add(1)
	defer s.updating.Add(-1)

	err := call(ctx)
	if err != nil {
		s.logger.Printf("store=skills op=%s status=error err=%v", op, err)
		if s.notifier != nil {
			s.notifier.Notify(notify.LevelError, "Skills not updated", apperror.Message(err, "Failed to update skills."))
		}
	} else if s.notifier != nil {
		s.notifier.Notify(notify.LevelSuccess, title, message)
	}

	if rerr := s.profiles.Invalidate(ctx, "skills_"+op); rerr != nil {
		s.logger.Printf("store=skills op=%s step=refetch status=error err=%v", op, rerr)
		if err == nil {
			return rerr
		}
	}
	return err
}

func (s *SkillStore) Updating() bool {
	return s.updating.Load() > 0
}

// Selected is the user's current selection as last fetched with the profile.
func (s *SkillStore) Selected() []skill.Skill {
	return s.profiles.Skills()
}

// Catalog returns the global skill list, fetched once per process.
func (s *SkillStore) Catalog(ctx context.Context) ([]skill.Skill, error) {
	return s.catalog.Fetch(ctx)
}

func (s *SkillStore) Categories(ctx context.Context) ([]string, error) {
	all, err := s.catalog.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return skill.Categories(all), nil
}

func (s *SkillStore) Search(ctx context.Context, query string) ([]skill.Skill, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Catalog(ctx)
	}
	return s.api.SkillCatalog(ctx, query)
}

func (s *SkillStore) Popular(ctx context.Context) ([]skill.Skill, error) {
	return s.popular.Fetch(ctx)
}

func (s *SkillStore) CatalogSnapshot() Snapshot[[]skill.Skill] {
	return s.catalog.Snapshot()
}
