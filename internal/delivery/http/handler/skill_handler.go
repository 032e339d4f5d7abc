package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/domain/skill"
	"hirepath/internal/pkg/response"
)

type SkillService interface {
	Selected() []skill.Skill
	Updating() bool
	Search(ctx context.Context, query string) ([]skill.Skill, error)
	Categories(ctx context.Context) ([]string, error)
	Popular(ctx context.Context) ([]skill.Skill, error)
	AddSkill(ctx context.Context, id int64) error
	RemoveSkill(ctx context.Context, id int64) error
	SetSkills(ctx context.Context, ids []int64) error
}

type SkillHandler struct {
	svc SkillService
}

type addSkillRequest struct {
	SkillID int64 `json:"skill_id"`
}

type setSkillsRequest struct {
	SkillIDs []int64 `json:"skill_ids"`
}

func NewSkillHandler(svc SkillService) *SkillHandler {
	return &SkillHandler{svc: svc}
}

func (h *SkillHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/skills")
	grp.Get("/", h.Selected)
	grp.Get("/catalog", h.Catalog)
	grp.Get("/popular", h.Popular)
	grp.Post("/", h.Add)
	grp.Put("/", h.Set)
	grp.Delete("/:id", h.Remove)
}

func (h *SkillHandler) selection(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{
		"skills":   h.svc.Selected(),
		"updating": h.svc.Updating(),
	})
}

func (h *SkillHandler) Selected(c fiber.Ctx) error {
	return h.selection(c)
}

func (h *SkillHandler) Catalog(c fiber.Ctx) error {
	skills, err := h.svc.Search(c.Context(), c.Query("search"))
	if err != nil {
		return err
	}
	categories, err := h.svc.Categories(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{
		"skills":     skills,
		"categories": categories,
	})
}

func (h *SkillHandler) Popular(c fiber.Ctx) error {
	skills, err := h.svc.Popular(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, skills)
}

func (h *SkillHandler) Add(c fiber.Ctx) error {
	var req addSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	if err := h.svc.AddSkill(c.Context(), req.SkillID); err != nil {
		return err
	}
	return h.selection(c)
}

func (h *SkillHandler) Set(c fiber.Ctx) error {
	var req setSkillsRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	if err := h.svc.SetSkills(c.Context(), req.SkillIDs); err != nil {
		return err
	}
	return h.selection(c)
}

func (h *SkillHandler) Remove(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveSkill(c.Context(), id); err != nil {
		return err
	}
	return h.selection(c)
}
