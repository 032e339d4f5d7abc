package routes

import (
	"github.com/gofiber/fiber/v3"

	"hirepath/internal/delivery/http/middleware"
)

// RegisterV1 mounts the session routes openly and everything else behind a live session.
func RegisterV1(r fiber.Router, h Handlers, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	if h.Session != nil {
		h.Session.RegisterRoutes(r)
	}

	protected := r.Group("", auth.RequireSession())
	if h.Profile != nil {
		h.Profile.RegisterRoutes(protected)
	}
	if h.Skill != nil {
		h.Skill.RegisterRoutes(protected)
	}
	if h.Job != nil {
		h.Job.RegisterRoutes(protected)
	}
	if h.Application != nil {
		h.Application.RegisterRoutes(protected)
	}
}
