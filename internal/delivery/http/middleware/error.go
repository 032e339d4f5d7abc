package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/pkg/apperror"
	"hirepath/internal/pkg/response"
	"hirepath/internal/store"
	"hirepath/internal/workflow"
)

type ErrorMiddleware struct {
	logger *log.Logger
}

func NewErrorMiddleware(logger *log.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Printf("panic recovered: %v", r)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= 500 {
			m.logger.Printf("HTTP error | path=%s status=%d err=%v", c.Path(), status, err)
		}
		return response.Error(c, status, msg, data)
	}
}

// StatusForKind maps the error taxonomy onto bridge statuses. A transient upstream failure is a
// 502 because the bridge itself is healthy.
func StatusForKind(k apperror.Kind) int {
	switch k {
	case apperror.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusBadGateway
	}
}

func normalizeError(err error) (int, string, any) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := StatusForKind(appErr.Kind)
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		var data any
		if appErr.Kind == apperror.KindValidation && appErr.Data != nil {
			data = appErr.Data
		}
		return status, msg, data
	}

	switch {
	case errors.Is(err, workflow.ErrNoOpTransition),
		errors.Is(err, workflow.ErrTransitionInFlight), errors.Is(err, store.ErrStaleResponse):
		return fiber.StatusConflict, err.Error(), nil
	case errors.Is(err, workflow.ErrUnknownStatus):
		return fiber.StatusBadRequest, err.Error(), nil
	case errors.Is(err, store.ErrNoMorePages):
		return fiber.StatusNotFound, err.Error(), nil
	case errors.Is(err, store.ErrNotAuthenticated):
		return fiber.StatusUnauthorized, apperror.MessageSessionExpired, nil
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		if status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}

		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessage(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}
