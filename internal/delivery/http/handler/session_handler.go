package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/delivery/http/dto"
	"hirepath/internal/domain/session"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/pkg/response"
)

type SessionService interface {
	Login(ctx context.Context, identifier, secret string) (session.Session, error)
	Signup(ctx context.Context, in api.SignupInput) (session.Session, error)
	Logout(ctx context.Context) error
	Current() (session.Session, bool)
	State() session.State
}

type SessionHandler struct {
	svc SessionService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
}

func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	grp := r.Group("/session")
	grp.Get("/", h.Me)
	grp.Post("/login", h.Login)
	grp.Post("/signup", h.Signup)
	grp.Post("/logout", h.Logout)
}

func (h *SessionHandler) current() dto.SessionResponse {
	cur, ok := h.svc.Current()
	return dto.NewSessionResponse(h.svc.State(), cur, ok)
}

func (h *SessionHandler) Me(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.current())
}

func (h *SessionHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	if _, err := h.svc.Login(c.Context(), req.Email, req.Password); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.current())
}

func (h *SessionHandler) Signup(c fiber.Ctx) error {
	var req signupRequest
	if err := c.Bind().Body(&req); err != nil {
		return badBody(err)
	}
	_, err := h.svc.Signup(c.Context(), api.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      session.Role(req.Role),
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, h.current())
}

func (h *SessionHandler) Logout(c fiber.Ctx) error {
	if err := h.svc.Logout(c.Context()); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.current())
}
