package handler

import (
	"github.com/gofiber/fiber/v3"

	"hirepath/internal/domain/session"
	"hirepath/internal/pkg/response"
)

type HealthHandler struct {
	appName string
	state   func() session.State
	clients func() int
}

func NewHealthHandler(appName string, state func() session.State, clients func() int) *HealthHandler {
	return &HealthHandler{appName: appName, state: state, clients: clients}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	data := fiber.Map{"app": h.appName}
	if h.state != nil {
		data["session"] = h.state().String()
	}
	if h.clients != nil {
		data["ws_clients"] = h.clients()
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}
