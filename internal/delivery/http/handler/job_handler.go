package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/domain/job"
	"hirepath/internal/pkg/response"
	"hirepath/internal/store"
)

type JobService interface {
	FetchBoard(ctx context.Context, filters store.Filters) (store.CollectionSnapshot[job.Job], error)
	LoadMoreBoard(ctx context.Context) (store.CollectionSnapshot[job.Job], error)
	FetchMine(ctx context.Context, filters store.Filters) (store.CollectionSnapshot[job.Job], error)
	LoadMoreMine(ctx context.Context) (store.CollectionSnapshot[job.Job], error)
	Job(ctx context.Context, id int64) (job.Job, error)
	Create(ctx context.Context, in job.Input) (job.Job, error)
	Update(ctx context.Context, id int64, in job.Input) (job.Job, error)
	Delete(ctx context.Context, id int64) error
}

// Query parameters applied to the loaded board instead of being sent to the server.
var jobLocalParams = []string{"search", "location", "employment_type", "work_type", "experience_level"}

type JobHandler struct {
	svc JobService
}

func NewJobHandler(svc JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

func (h *JobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/jobs")
	grp.Get("/", h.Board)
	grp.Post("/more", h.MoreBoard)
	grp.Get("/mine", h.Mine)
	grp.Post("/mine/more", h.MoreMine)
	grp.Post("/", h.Create)
	grp.Get("/:id", h.Detail)
	grp.Put("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}

func jobFilterFrom(c fiber.Ctx) store.JobFilter {
	f := store.JobFilter{
		Search:   c.Query("search"),
		Location: c.Query("location"),
	}
	for _, v := range splitList(c.Query("employment_type")) {
		f.EmploymentTypes = append(f.EmploymentTypes, job.EmploymentType(v))
	}
	for _, v := range splitList(c.Query("work_type")) {
		f.WorkTypes = append(f.WorkTypes, job.WorkType(v))
	}
	for _, v := range splitList(c.Query("experience_level")) {
		f.ExperienceLevels = append(f.ExperienceLevels, job.ExperienceLevel(v))
	}
	return f
}

func renderJobs(c fiber.Ctx, snap store.CollectionSnapshot[job.Job], f store.JobFilter) error {
	items := f.Apply(snap.Items)
	return response.Collection(c, items, metaOf(snap, len(items)))
}

func (h *JobHandler) Board(c fiber.Ctx) error {
	snap, err := h.svc.FetchBoard(c.Context(), serverFilters(c, jobLocalParams...))
	if err != nil {
		return err
	}
	return renderJobs(c, snap, jobFilterFrom(c))
}

func (h *JobHandler) MoreBoard(c fiber.Ctx) error {
	snap, err := h.svc.LoadMoreBoard(c.Context())
	if err != nil {
		return err
	}
	return renderJobs(c, snap, jobFilterFrom(c))
}

func (h *JobHandler) Mine(c fiber.Ctx) error {
	snap, err := h.svc.FetchMine(c.Context(), serverFilters(c, jobLocalParams...))
	if err != nil {
		return err
	}
	return renderJobs(c, snap, jobFilterFrom(c))
}

func (h *JobHandler) MoreMine(c fiber.Ctx) error {
	snap, err := h.svc.LoadMoreMine(c.Context())
	if err != nil {
		return err
	}
	return renderJobs(c, snap, jobFilterFrom(c))
}

func (h *JobHandler) Detail(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	j, err := h.svc.Job(c.Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, j)
}

func (h *JobHandler) Create(c fiber.Ctx) error {
	var in job.Input
	if err := c.Bind().Body(&in); err != nil {
		return badBody(err)
	}
	created, err := h.svc.Create(c.Context(), in.Normalized())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, created)
}

func (h *JobHandler) Update(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in job.Input
	if err := c.Bind().Body(&in); err != nil {
		return badBody(err)
	}
	updated, err := h.svc.Update(c.Context(), id, in.Normalized())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, updated)
}

func (h *JobHandler) Delete(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
