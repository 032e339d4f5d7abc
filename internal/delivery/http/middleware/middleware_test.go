package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/domain/session"
	"hirepath/internal/pkg/apperror"
	"hirepath/internal/store"
	"hirepath/internal/workflow"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type staticSession struct {
	cur session.Session
	ok  bool
}

func (s staticSession) Current() (session.Session, bool) { return s.cur, s.ok }

func newTestApp(auth *AuthMiddleware, fail error) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(log.New(io.Discard, "", 0)).Middleware())
	if auth != nil {
		app.Use(auth.Middleware())
	}
	app.Get("/fail", func(c fiber.Ctx) error { return fail })
	app.Get("/panic", func(c fiber.Ctx) error { panic("boom") })
	if auth != nil {
		app.Get("/me", auth.RequireSession(), func(c fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": c.Locals(CtxUserIDKey), "role": c.Locals(CtxRoleKey)})
		})
	}
	return app
}

func do(t *testing.T, app *fiber.App, path, authz string) (int, semanticResponse, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env semanticResponse
	_ = json.Unmarshal(body, &env)
	return resp.StatusCode, env, body
}

func TestErrorMiddleware_MapsErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthenticated", apperror.Unauthenticated(""), http.StatusUnauthorized, apperror.MessageSessionExpired},
		{"forbidden", apperror.Forbidden(nil), http.StatusForbidden, apperror.MessageAccessDenied},
		{"backend not found", apperror.FromResponse(http.StatusNotFound, []byte(`{"detail":"Job not found."}`)), http.StatusNotFound, "Job not found."},
		{"validation", apperror.Validation("title: This field is required.", nil), http.StatusBadRequest, "title: This field is required."},
		{"transient", apperror.Transient(apperror.MessageNetwork, errors.New("dial tcp: refused")), http.StatusBadGateway, apperror.MessageNetwork},
		{"no-op transition", workflow.ErrNoOpTransition, http.StatusConflict, ""},
		{"transition in flight", fmt.Errorf("application 4: %w", workflow.ErrTransitionInFlight), http.StatusConflict, ""},
		{"stale", store.ErrStaleResponse, http.StatusConflict, ""},
		{"unknown status", workflow.ErrUnknownStatus, http.StatusBadRequest, ""},
		{"no more pages", store.ErrNoMorePages, http.StatusNotFound, ""},
		{"fiber error", fiber.NewError(fiber.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env, _ := do(t, newTestApp(nil, tc.err), "/fail", "")
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.status, env.Status)
			if tc.message != "" {
				assert.Equal(t, tc.message, env.Message)
			}
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestErrorMiddleware_ValidationCarriesFieldData(t *testing.T) {
	err := apperror.FromResponse(http.StatusBadRequest, []byte(`{"email":["Enter a valid email address."]}`))
	status, env, _ := do(t, newTestApp(nil, err), "/fail", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(env.Data), "Enter a valid email address.")
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	status, env, _ := do(t, newTestApp(nil, nil), "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, http.StatusInternalServerError, env.Status)
}

func TestAuthMiddleware_BridgeToken(t *testing.T) {
	auth := NewAuthMiddleware("s3cret", staticSession{})
	app := newTestApp(auth, apperror.Validation("x", nil))

	status, _, _ := do(t, app, "/fail", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _, _ = do(t, app, "/fail", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _, _ = do(t, app, "/fail", "bearer s3cret")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthMiddleware_RequireSession(t *testing.T) {
	status, _, _ := do(t, newTestApp(NewAuthMiddleware("", staticSession{}), nil), "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	live := staticSession{cur: session.Session{UserID: 7, Role: session.RoleRecruiter}, ok: true}
	status, _, body := do(t, newTestApp(NewAuthMiddleware("", live), nil), "/me", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"user_id":7,"role":"RECRUITER"}`, string(body))
}

func TestBearerTokenFromHeader(t *testing.T) {
	tok, ok := bearerTokenFromHeader("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, ok := bearerTokenFromHeader(h)
		assert.False(t, ok, h)
	}
}
