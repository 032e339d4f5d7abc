package handler

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/domain/profile"
	"hirepath/internal/pkg/apperror"
	"hirepath/internal/pkg/response"
	"hirepath/internal/store"
)

type ProfileService interface {
	FetchProfile(ctx context.Context) (profile.Profile, error)
	Profile() store.Snapshot[profile.Profile]
	UpdateProfile(ctx context.Context, patch profile.Patch) (profile.Profile, error)
	FetchCompany(ctx context.Context) (*profile.Company, error)
	CreateCompany(ctx context.Context, in profile.CompanyInput) (*profile.Company, error)
	SetJobRoles(ctx context.Context, ids []int64) error
	UploadResume(ctx context.Context, name string, r io.Reader) (profile.ResumeFeedback, error)
}

type ProfileHandler struct {
	svc ProfileService
}

type jobRolesRequest struct {
	JobRoleIDs []int64 `json:"job_role_ids"`
}

func NewProfileHandler(svc ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/profile", h.Get)
	r.Patch("/profile", h.Update)
	r.Put("/profile/job-roles", h.SetJobRoles)
	r.Post("/profile/resume", h.UploadResume)
	r.Get("/company", h.Company)
	r.Post("/company", h.CreateCompany)
}

// Get serves the cached profile unless ?refresh=true or nothing is cached yet.
func (h *ProfileHandler) Get(c fiber.Ctx) error {
	snap := h.svc.Profile()
	if snap.Loaded && c.Query("refresh") != "true" {
		return response.Success(c, fiber.StatusOK, response.MessageOK, snap.Data)
	}
	p, err := h.svc.FetchProfile(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) Update(c fiber.Ctx) error {
	var patch profile.Patch
	if err := c.Bind().Body(&patch); err != nil {
		return badBody(err)
	}
	p, err := h.svc.UpdateProfile(c.Context(), patch)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) SetJobRoles(c fiber.Ctx) error {
	var req jobRolesRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	if err := h.svc.SetJobRoles(c.Context(), req.JobRoleIDs); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.svc.Profile().Data)
}

func (h *ProfileHandler) UploadResume(c fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperror.Validation("file: A resume file is required.", err)
	}
	f, err := fh.Open()
	if err != nil {
		return apperror.Validation("file: The resume could not be read.", err)
	}
	defer f.Close()

	fb, err := h.svc.UploadResume(c.Context(), fh.Filename, f)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fb)
}

func (h *ProfileHandler) Company(c fiber.Ctx) error {
	co, err := h.svc.FetchCompany(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, fiber.Map{"company": co})
}

func (h *ProfileHandler) CreateCompany(c fiber.Ctx) error {
	var in profile.CompanyInput
	if err := c.Bind().Body(&in); err != nil {
		return badBody(err)
	}
	co, err := h.svc.CreateCompany(c.Context(), in)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, fiber.Map{"company": co})
}
