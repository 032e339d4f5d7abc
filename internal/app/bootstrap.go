package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"hirepath/internal/config"
	"hirepath/internal/delivery/http/handler"
	"hirepath/internal/delivery/http/middleware"
	"hirepath/internal/delivery/http/routes"
	"hirepath/internal/ws"
)

const (
	wsPath          = "/ws/notifications"
	shutdownTimeout = 10 * time.Second
)

type App struct {
	Fiber     *fiber.App
	Handler   http.Handler
	Container *Container
	Scheduler *Scheduler
}

// New builds the bridge: the fiber app serves /api and /health, and the websocket feed is mounted
// beside it on a net/http mux.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	mux := http.NewServeMux()
	mux.Handle(wsPath, ws.NewHandler(c.Hub, c.Config.App.BridgeToken, c.Logger))
	mux.Handle("/", adaptor.FiberApp(f))

	return &App{Fiber: f, Handler: mux, Container: c}
}

func Bootstrap(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	a := New(c)
	sched, err := NewScheduler(cfg.Scheduler.RefreshSchedule, c.Session, c.Applications, c.Logger)
	if err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("refresh schedule %q: %w", cfg.Scheduler.RefreshSchedule, err)
	}
	a.Scheduler = sched

	cleanup := func() error {
		sched.Stop()
		return c.Close()
	}
	return a, cleanup, nil
}

// Serve runs the hub, the scheduler and the HTTP server until ctx is done.
func (a *App) Serve(ctx context.Context, addr string) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.Container.Hub.Run(hubCtx)

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	srv := &http.Server{Addr: addr, Handler: a.Handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		a.Container.Logger.Printf("[App] bridge listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	auth := middleware.NewAuthMiddleware(c.Config.App.BridgeToken, c.Session)
	routes.NewRegistry(routes.Handlers{
		Health:      handler.NewHealthHandler(c.Config.App.AppName, c.Session.State, c.Hub.ClientCount),
		Session:     handler.NewSessionHandler(c.Session),
		Profile:     handler.NewProfileHandler(c.Profiles),
		Skill:       handler.NewSkillHandler(c.Skills),
		Job:         handler.NewJobHandler(c.Jobs),
		Application: handler.NewApplicationHandler(c.Applications, c.Workflow),
	}, auth).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return "127.0.0.1:" + p, nil
}
