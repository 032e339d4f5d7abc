package routes

import (
	"github.com/gofiber/fiber/v3"

	"hirepath/internal/delivery/http/handler"
	"hirepath/internal/delivery/http/middleware"
)

type Handlers struct {
	Health      *handler.HealthHandler
	Session     *handler.SessionHandler
	Profile     *handler.ProfileHandler
	Skill       *handler.SkillHandler
	Job         *handler.JobHandler
	Application *handler.ApplicationHandler
}

type Registry struct {
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

func NewRegistry(h Handlers, auth *middleware.AuthMiddleware) *Registry {
	return &Registry{handlers: h, auth: auth}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api", r.auth.Middleware())
	RegisterV1(api.Group("/v1"), r.handlers, r.auth)
}
