package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/config"
	"hirepath/internal/domain/application"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/response"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    *response.Meta  `json:"meta"`
}

// recruiterBackend is a minimal backend for one recruiter with one candidate.
func recruiterBackend(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	status := application.StatusPending

	record := func() fiber.Map {
		return fiber.Map{"id": 11, "job_id": 4, "status": status, "match_score": 83.5, "first_name": "Ana", "job_title": "Backend"}
	}

	app := fiber.New()
	app.Post("/accounts/login/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"access":  "access-token",
			"refresh": "refresh-token",
			"user":    fiber.Map{"id": 5, "email": "rec@example.com", "role": "RECRUITER"},
		})
	})
	app.Post("/accounts/logout/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "ok"})
	})
	app.Get("/accounts/profile/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": 5, "email": "rec@example.com", "role": "RECRUITER", "skills": []any{}})
	})
	app.Get("/companies/me/", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Not found."})
	})
	app.Get("/applications/recruiter/candidates/", func(c fiber.Ctx) error {
		mu.Lock()
		defer mu.Unlock()
		return c.JSON(fiber.Map{"count": 1, "next": nil, "results": []any{record()}})
	})
	app.Get("/applications/:id/", func(c fiber.Ctx) error {
		mu.Lock()
		defer mu.Unlock()
		return c.JSON(record())
	})
	app.Patch("/applications/:id/status/", func(c fiber.Ctx) error {
		var body struct {
			Status application.Status `json:"status"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "bad body"})
		}
		mu.Lock()
		defer mu.Unlock()
		status = body.Status
		return c.JSON(record())
	})

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		App:       config.AppConfig{AppName: "hirepath-test", HTTPPort: "0"},
		API:       config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second, UserAgent: "hirepath-test"},
		Session:   config.SessionConfig{Storage: config.StorageMemory},
		Scheduler: config.SchedulerConfig{RefreshSchedule: "@every 1h"},
	}
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestBridge_RecruiterShortlistsCandidate(t *testing.T) {
	backend := recruiterBackend(t)
	logger := log.New(io.Discard, "", 0)

	a, cleanup, err := Bootstrap(context.Background(), testConfig(backend.URL), logger)
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanup()) }()

	feed, cancel := a.Container.Notifications.Subscribe(8)
	defer cancel()

	bridge := httptest.NewServer(a.Handler)
	defer bridge.Close()

	status, env := call(t, bridge, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, env.Status)

	status, env = call(t, bridge, http.MethodPost, "/api/v1/session/login", fiber.Map{"email": "rec@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Contains(t, string(env.Data), `"role":"RECRUITER"`)
	assert.NotContains(t, string(env.Data), "access-token")

	status, env = call(t, bridge, http.MethodGet, "/api/v1/company", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.JSONEq(t, `{"company":null}`, string(env.Data))

	status, env = call(t, bridge, http.MethodGet, "/api/v1/candidates?score=excellent", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Count)
	assert.Equal(t, 1, env.Meta.Shown)

	status, env = call(t, bridge, http.MethodPost, "/api/v1/applications/11/status", fiber.Map{"status": "SHORTLISTED"})
	require.Equal(t, http.StatusOK, status, env.Message)
	var updated struct {
		Application application.Record `json:"application"`
		Actions     []struct {
			Status application.Status `json:"status"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, application.StatusShortlisted, updated.Application.Status)
	require.Len(t, updated.Actions, 2)
	assert.Equal(t, application.StatusRejected, updated.Actions[0].Status)
	assert.Equal(t, application.StatusHired, updated.Actions[1].Status)

	select {
	case n := <-feed:
		assert.Equal(t, notify.LevelSuccess, n.Level)
		assert.Equal(t, "Candidate shortlisted successfully!", n.Message)
	case <-time.After(time.Second):
		t.Fatal("expected an optimistic notification")
	}

	status, _ = call(t, bridge, http.MethodPost, "/api/v1/applications/11/status", fiber.Map{"status": "SHORTLISTED"})
	assert.Equal(t, http.StatusConflict, status)

	status, env = call(t, bridge, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"session":"authenticated"`)

	status, _ = call(t, bridge, http.MethodPost, "/api/v1/session/logout", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, bridge, http.MethodGet, "/api/v1/candidates", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBridge_TokenRequired(t *testing.T) {
	backend := recruiterBackend(t)
	cfg := testConfig(backend.URL)
	cfg.App.BridgeToken = "local-secret"

	c, err := NewContainer(context.Background(), cfg, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	bridge := httptest.NewServer(New(c).Handler)
	defer bridge.Close()

	status, _ := call(t, bridge, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	req, err := http.NewRequest(http.MethodGet, bridge.URL+"/api/v1/session", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer local-secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type fakeRevalidator struct{ calls int }

func (f *fakeRevalidator) Revalidate(context.Context) { f.calls++ }

type fakeStats struct {
	calls int
	err   error
}

func (f *fakeStats) RefreshStats(context.Context) error {
	f.calls++
	return f.err
}

func TestScheduler_RunOnce(t *testing.T) {
	sess := &fakeRevalidator{}
	stats := &fakeStats{err: errors.New("offline")}
	s, err := NewScheduler("@every 1m", sess, stats, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	s.RunOnce()
	assert.Equal(t, 1, sess.calls)
	assert.Equal(t, 1, stats.calls)

	_, err = NewScheduler("every minute", sess, stats, nil)
	assert.Error(t, err)
}

func TestListenAddr(t *testing.T) {
	addr, err := ListenAddr("8787")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8787", addr)

	addr, err = ListenAddr(":9000")
	require.NoError(t, err)
	assert.Equal(t, ":9000", addr)

	_, err = ListenAddr(" ")
	assert.Error(t, err)
}
