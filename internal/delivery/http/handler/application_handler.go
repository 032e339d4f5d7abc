package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/delivery/http/dto"
	"hirepath/internal/delivery/http/middleware"
	"hirepath/internal/domain/application"
	"hirepath/internal/domain/session"
	"hirepath/internal/pkg/apperror"
	"hirepath/internal/pkg/response"
	"hirepath/internal/store"
	"hirepath/internal/workflow"
)

type ApplicationService interface {
	FetchCandidates(ctx context.Context, filters store.Filters) (store.CollectionSnapshot[application.Record], error)
	LoadMoreCandidates(ctx context.Context) (store.CollectionSnapshot[application.Record], error)
	FilteredCandidates(f store.CandidateFilter) ([]application.Record, store.CandidateSummary)
	FetchMine(ctx context.Context, filters store.Filters) (store.CollectionSnapshot[application.Record], error)
	LoadMoreMine(ctx context.Context) (store.CollectionSnapshot[application.Record], error)
	Record(ctx context.Context, id int64) (application.Record, error)
	Apply(ctx context.Context, jobID int64, coverLetter string) (application.Record, error)
	Withdraw(ctx context.Context, id int64) error
	GraduateStats(ctx context.Context) (application.GraduateStats, error)
	RecruiterStats(ctx context.Context) (application.RecruiterStats, error)
}

type StatusController interface {
	Actions(rec application.Record) []workflow.Action
	QuickAction(ctx context.Context, id int64, to application.Status) (application.Record, error)
	DetailedUpdate(ctx context.Context, id int64, to application.Status, d workflow.Details) (application.Record, error)
	InFlight(id int64) bool
}

// Query parameters applied to loaded candidates instead of being sent to the server.
var candidateLocalParams = []string{"search", "status", "score", "job_title"}

type ApplicationHandler struct {
	svc      ApplicationService
	workflow StatusController
}

func NewApplicationHandler(svc ApplicationService, wf StatusController) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, workflow: wf}
}

func (h *ApplicationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	cand := r.Group("/candidates")
	cand.Get("/", h.Candidates)
	cand.Post("/more", h.MoreCandidates)

	apps := r.Group("/applications")
	apps.Get("/mine", h.Mine)
	apps.Post("/mine/more", h.MoreMine)
	apps.Post("/", h.Apply)
	apps.Get("/:id", h.Get)
	apps.Post("/:id/withdraw", h.Withdraw)
	apps.Post("/:id/status", h.UpdateStatus)

	r.Get("/stats", h.Stats)
}

func candidateFilterFrom(c fiber.Ctx) (store.CandidateFilter, error) {
	score, ok := store.ParseScoreBucket(c.Query("score"))
	if !ok {
		return store.CandidateFilter{}, apperror.Validation("score: Use EXCELLENT, GOOD, FAIR or POOR.", nil)
	}
	return store.CandidateFilter{
		Search:   c.Query("search"),
		Status:   application.Status(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Score:    score,
		JobTitle: strings.TrimSpace(c.Query("job_title")),
	}, nil
}

func (h *ApplicationHandler) renderCandidates(c fiber.Ctx, snap store.CollectionSnapshot[application.Record]) error {
	f, err := candidateFilterFrom(c)
	if err != nil {
		return err
	}
	items, summary := h.svc.FilteredCandidates(f)
	return response.Collection(c, fiber.Map{
		"items":      items,
		"summary":    summary,
		"job_titles": store.JobTitles(snap.Items),
	}, metaOf(snap, len(items)))
}

func (h *ApplicationHandler) Candidates(c fiber.Ctx) error {
	if _, err := candidateFilterFrom(c); err != nil {
		return err
	}
	snap, err := h.svc.FetchCandidates(c.Context(), serverFilters(c, candidateLocalParams...))
	if err != nil {
		return err
	}
	return h.renderCandidates(c, snap)
}

func (h *ApplicationHandler) MoreCandidates(c fiber.Ctx) error {
	snap, err := h.svc.LoadMoreCandidates(c.Context())
	if err != nil {
		return err
	}
	return h.renderCandidates(c, snap)
}

func (h *ApplicationHandler) Mine(c fiber.Ctx) error {
	snap, err := h.svc.FetchMine(c.Context(), serverFilters(c))
	if err != nil {
		return err
	}
	return response.Collection(c, snap.Items, metaOf(snap, len(snap.Items)))
}

func (h *ApplicationHandler) MoreMine(c fiber.Ctx) error {
	snap, err := h.svc.LoadMoreMine(c.Context())
	if err != nil {
		return err
	}
	return response.Collection(c, snap.Items, metaOf(snap, len(snap.Items)))
}

func (h *ApplicationHandler) Apply(c fiber.Ctx) error {
	var req dto.ApplyRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	rec, err := h.svc.Apply(c.Context(), req.JobID, req.CoverLetter)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, rec)
}

func (h *ApplicationHandler) render(c fiber.Ctx, rec application.Record) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ApplicationResponse{
		Application: rec,
		Actions:     h.workflow.Actions(rec),
		Updating:    h.workflow.InFlight(rec.ID),
	})
}

func (h *ApplicationHandler) Get(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	rec, err := h.svc.Record(c.Context(), id)
	if err != nil {
		return err
	}
	return h.render(c, rec)
}

func (h *ApplicationHandler) Withdraw(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Withdraw(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *ApplicationHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	to := application.Status(strings.ToUpper(strings.TrimSpace(string(req.Status))))

	var rec application.Record
	if req.Quick() {
		rec, err = h.workflow.QuickAction(c.Context(), id, to)
	} else {
		rec, err = h.workflow.DetailedUpdate(c.Context(), id, to, workflow.Details{Notes: req.Notes, InterviewDate: req.InterviewDate})
	}
	if err != nil {
		return err
	}
	return h.render(c, rec)
}

func (h *ApplicationHandler) Stats(c fiber.Ctx) error {
	role, _ := c.Locals(middleware.CtxRoleKey).(session.Role)
	if role == session.RoleRecruiter {
		stats, err := h.svc.RecruiterStats(c.Context())
		if err != nil {
			return err
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
	}
	stats, err := h.svc.GraduateStats(c.Context())
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}
