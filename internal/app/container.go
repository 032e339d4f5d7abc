package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"hirepath/internal/config"
	"hirepath/internal/database/postgres"
	"hirepath/internal/infrastructure/api"
	"hirepath/internal/infrastructure/cache"
	"hirepath/internal/infrastructure/storage"
	"hirepath/internal/notify"
	"hirepath/internal/pkg/jwt"
	"hirepath/internal/store"
	"hirepath/internal/workflow"
	"hirepath/internal/ws"
)

// Container owns every long-lived component of one client process.
type Container struct {
	Config config.Config
	Logger *log.Logger

	Storage       storage.Store
	API           *api.Client
	Notifications *notify.Channel
	Hub           *ws.Hub

	Session      *store.SessionStore
	Profiles     *store.ProfileStore
	Skills       *store.SkillStore
	Jobs         *store.JobStore
	Applications *store.ApplicationStore
	Workflow     *workflow.Controller

	closers []func() error
}

// NewContainer wires the stores in dependency order and hydrates the session before returning,
// so no caller observes a store that has not seen the persisted identity.
func NewContainer(ctx context.Context, cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	st, err := c.openStorage(ctx, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Storage = st

	c.API = api.New(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Endpoints: api.DefaultEndpoints().WithOverrides(cfg.API.PathOverrides),
		Logger:    logger,
	})

	c.Notifications = notify.NewChannel(logger)
	c.Hub = ws.NewHub(logger)
	c.Notifications.AddSink(c.Hub)

	c.Session = store.NewSessionStore(c.API, c.Storage, jwt.NewInspector(0), c.Notifications, logger)
	c.API.SetTokenSource(c.Session)

	c.Profiles = store.NewProfileStore(c.API, c.Session, c.Notifications, logger)
	c.Skills = store.NewSkillStore(c.API, c.Profiles, c.Session, c.Notifications, logger)
	c.Jobs = store.NewJobStore(c.API, c.Session, c.Notifications, logger)
	c.Applications = store.NewApplicationStore(c.API, c.Session, c.Notifications, logger)
	c.Workflow = workflow.NewController(c.Applications, c.Notifications, logger)

	c.Session.OnChange("jobs", c.Jobs.OnSessionChange)
	c.Session.OnChange("applications", c.Applications.OnSessionChange)
	c.Session.OnChange("profile", c.Profiles.OnSessionChange)

	state := c.Session.Hydrate(ctx)
	logger.Printf("[App] session hydrated: state=%s storage=%s", state, cfg.Session.Storage)
	return c, nil
}

func (c *Container) openStorage(ctx context.Context, cfg config.Config) (storage.Store, error) {
	var (
		base storage.Store
		err  error
	)
	switch cfg.Session.Storage {
	case config.StorageMemory:
		base = storage.NewMemory()
	case config.StorageRedis:
		local, ferr := storage.NewFile(cfg.Session.Dir)
		if ferr != nil {
			return nil, fmt.Errorf("session storage: %w", ferr)
		}
		r := cache.NewRedis(cache.Options{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		}, local, c.Logger)
		c.closers = append(c.closers, r.Close)
		base = r
	case config.StoragePostgres:
		pool, perr := postgres.Connect(ctx, cfg.Database)
		if perr != nil {
			return nil, fmt.Errorf("session storage: %w", perr)
		}
		c.closers = append(c.closers, pool.Close)
		pg, perr := postgres.NewStore(ctx, pool, cfg.Database.Table)
		if perr != nil {
			return nil, fmt.Errorf("session storage: %w", perr)
		}
		c.Logger.Printf("[App] session storage=postgres table=%s", cfg.Database.Table)
		base = pg
	default:
		base, err = storage.NewFile(cfg.Session.Dir)
		if err != nil {
			return nil, fmt.Errorf("session storage: %w", err)
		}
	}

	if cfg.Session.Secret == "" {
		return base, nil
	}
	sealed, err := storage.NewSealed(base, cfg.Session.Secret)
	if err != nil {
		return nil, fmt.Errorf("session storage: %w", err)
	}
	return sealed, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
