package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	redisclient "github.com/VAshish07243/Chai-Shots/internal/clients/redis"
	"github.com/VAshish07243/Chai-Shots/internal/data/cache"
	"github.com/VAshish07243/Chai-Shots/internal/data/db"
	"github.com/VAshish07243/Chai-Shots/internal/jobs/scheduler"
	"github.com/VAshish07243/Chai-Shots/internal/jobs/worker"
	"github.com/VAshish07243/Chai-Shots/internal/observability"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
	"github.com/VAshish07243/Chai-Shots/internal/realtime"
	"github.com/VAshish07243/Chai-Shots/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *db.Service
	Redis    *goredis.Client
	Bus      bus.Bus
	Cache    cache.CatalogCache
	Repos    Repos
	Services Services

	shutdownOtel func(context.Context) error
}

// New connects the content store (and Redis when configured) and wires every
// repo and service. Failing to reach the store is an error.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)

	store, err := db.Open(cfg.DB, log)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init content store: %w", err)
	}
	a.Store = store
	if err := store.Ping(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("ping content store: %w", err)
	}

	if err := a.wireClients(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Repos = wireRepos(store.DB(), log)
	a.Services = wireServices(store.DB(), log, cfg, a.Repos, a.Bus, a.Cache)
	return a, nil
}

// wireClients sets up the event bus and catalog cache. Without REDIS_ADDR
// events stay in process and the catalog is not cached.
func (a *App) wireClients(ctx context.Context) error {
	a.Log.Info("Wiring clients...")
	if a.Cfg.RedisAddr == "" {
		a.Bus = bus.NewMemoryBus()
		a.Cache = cache.NewNop()
		return nil
	}
	rdb, err := redisclient.New(ctx, redisclient.Config{
		Addr:     a.Cfg.RedisAddr,
		Password: a.Cfg.RedisPassword,
		DB:       a.Cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("init redis: %w", err)
	}
	a.Redis = rdb
	b, err := bus.NewRedisBus(a.Log, rdb, a.Cfg.RedisChannel)
	if err != nil {
		return fmt.Errorf("init redis event bus: %w", err)
	}
	a.Bus = b
	a.Cache = cache.NewRedisCatalogCache(a.Log, rdb, a.Cfg.CatalogCacheTTL)
	return nil
}

// Migrate creates or updates the schema and indexes.
func (a *App) Migrate() error {
	a.Log.Info("Running migrations...", "driver", a.Store.Driver())
	return db.AutoMigrateAll(a.Store.DB())
}

// RunServer serves the HTTP API until ctx is done. Catalog cache entries are
// dropped as publication events arrive on the bus.
func (a *App) RunServer(ctx context.Context) error {
	if err := a.Bus.StartForwarder(ctx, func(ev realtime.Event) {
		a.Services.Catalog.HandleEvent(ctx, ev)
	}); err != nil {
		return fmt.Errorf("start event forwarder: %w", err)
	}
	return a.Server().Run(ctx, a.Cfg.HTTPAddr)
}

// NewWorker builds the scheduler process. Its health status follows the
// outcome of the most recent cycle.
func (a *App) NewWorker() *worker.Worker {
	var w *worker.Worker
	sched := scheduler.New(a.Log, a.Services.Publication, a.Bus, a.Cfg.Scheduler,
		scheduler.WithCycleHook(func(rep scheduler.Report) { w.ObserveCycle(rep) }),
	)
	w = worker.NewWorker(a.Log, sched, a.Cfg.WorkerHealthAddr)
	return w
}

// RunAll runs the API and the scheduler in one process.
func (a *App) RunAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.RunServer(gctx) })
	g.Go(func() error { return a.NewWorker().Run(gctx) })
	return g.Wait()
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	var errs []error
	if a.Bus != nil {
		errs = append(errs, a.Bus.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.shutdownOtel != nil {
		errs = append(errs, a.shutdownOtel(context.WithoutCancel(ctx)))
	}
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("shutdown finished with errors", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
