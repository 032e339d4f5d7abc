package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v3"

	"hirepath/internal/domain/session"
	"hirepath/internal/pkg/apperror"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

type SessionReader interface {
	Current() (session.Session, bool)
}

// AuthMiddleware guards the bridge. When a bridge token is configured every request must carry
// it as a bearer token; routes behind RequireSession additionally need a live session.
type AuthMiddleware struct {
	token   string
	session SessionReader
}

func NewAuthMiddleware(bridgeToken string, sess SessionReader) *AuthMiddleware {
	return &AuthMiddleware{token: strings.TrimSpace(bridgeToken), session: sess}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if m.token == "" {
			return c.Next()
		}
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid bridge token")
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) RequireSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		cur, ok := m.session.Current()
		if !ok {
			return apperror.Unauthenticated(apperror.MessageSessionExpired)
		}
		c.Locals(CtxUserIDKey, cur.UserID)
		c.Locals(CtxRoleKey, cur.Role)
		return c.Next()
	}
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
