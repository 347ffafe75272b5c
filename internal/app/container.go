package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobfinder/internal/config"
	"jobfinder/internal/database"
	"jobfinder/internal/database/migration"
	dbpostgres "jobfinder/internal/database/postgres"
	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/domain/scoring"
	"jobfinder/internal/infrastructure/cache"
	"jobfinder/internal/logger"
	"jobfinder/internal/metrics"
	"jobfinder/internal/repository"
	"jobfinder/internal/scheduler"
	"jobfinder/internal/search"
	"jobfinder/internal/usecase"
	"jobfinder/internal/ws"

	"go.uber.org/zap"
)

const metricsNamespace = "jobfinder"

// ContainerOptions toggles the parts only the long-running server needs.
type ContainerOptions struct {
	// Realtime wires the websocket hub as the generator's notifier.
	Realtime bool
	// MemIndexFallback swaps in an in-memory index when the on-disk one is
	// held by another process, e.g. a running server.
	MemIndexFallback bool
}

type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	DB      database.DB
	Redis   *cache.Redis
	Index   *search.JobIndex
	Metrics *metrics.Collector
	Hub     *ws.Hub

	Seekers         *repository.PostgresSeekerRepository
	Jobs            *repository.PostgresJobRepository
	Recommendations *repository.PostgresRecommendationRepository

	Generator *usecase.RecommendationGenerator
	Query     *usecase.RecommendationQuery
	Scheduler *scheduler.Scheduler
}

func NewContainer(ctx context.Context, cfg config.Config, log *zap.Logger, opts ContainerOptions) (*Container, error) {
	log = logger.OrNop(log)
	c := &Container{Config: cfg, Logger: log}
	if err := c.build(ctx, opts); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) build(ctx context.Context, opts ContainerOptions) error {
	cfg, log := c.Config, c.Logger

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := dbpostgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		return err
	}
	c.DB = pool

	runner := migration.Runner{Dir: cfg.Database.MigrationsDir, Logger: log.Named("migration")}
	if err := runner.Run(ctx, c.DB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	c.Redis = cache.NewRedis(cfg.Redis, log)

	c.Index, err = openIndex(cfg.Search, opts.MemIndexFallback, log)
	if err != nil {
		return err
	}

	scoringCfg, err := scoring.LoadConfig(cfg.Recommender.ScoringFile)
	if err != nil {
		return err
	}

	c.Metrics = metrics.NewCollector(metricsNamespace)

	c.Seekers = repository.NewPostgresSeekerRepository(c.DB)
	c.Jobs = repository.NewPostgresJobRepository(c.DB)
	c.Recommendations = repository.NewPostgresRecommendationRepository(c.DB)

	deps := usecase.GeneratorDeps{
		Profiles:        repository.NewPostgresProfileRepository(c.DB),
		Jobs:            c.Jobs,
		Interactions:    repository.NewPostgresInteractionRepository(c.DB),
		Recommendations: c.Recommendations,
		Index:           c.Index,
		Scorer:          scoring.NewScorer(scoringCfg),
		Cache:           c.Redis,
		Logger:          log,
	}
	if opts.Realtime {
		c.Hub = ws.NewHub(log)
		deps.Notifier = c.Hub
	}
	c.Generator = usecase.NewRecommendationGenerator(deps)
	c.Query = usecase.NewRecommendationQuery(c.Seekers, c.Recommendations, c.Redis, cfg.Redis.CacheTTL, log)

	c.Scheduler = scheduler.New(c.Seekers, c.Generator, c.Redis, c.Metrics, log, scheduler.Options{
		Spec:          cfg.Recommender.CronSpec,
		RunOnStart:    cfg.Recommender.RunOnStart,
		Workers:       cfg.Recommender.Workers,
		SeekerTimeout: cfg.Recommender.SeekerTimeout,
		LockTTL:       cfg.Recommender.LockTTL,
		BeforeRun:     c.refreshBeforeRun,
	})

	return nil
}

// openIndex opens the on-disk index, falling back to memory when allowed and
// another process holds the lock.
func openIndex(cfg config.SearchConfig, memFallback bool, log *zap.Logger) (*search.JobIndex, error) {
	opts := search.Options{
		QueryLimit:   cfg.QueryLimit,
		QueryTimeout: cfg.QueryTimeout,
		OpenTimeout:  cfg.OpenTimeout,
	}
	idx, err := search.NewJobIndex(cfg.IndexPath, opts)
	if err == nil {
		return idx, nil
	}
	if !memFallback || !errors.Is(err, recommendation.ErrIndexUnavailable) {
		return nil, fmt.Errorf("open job index: %w", err)
	}
	log.Warn("job index busy, using an in-memory copy", zap.String("path", cfg.IndexPath), zap.Error(err))
	return search.NewMemJobIndex(opts)
}

// RefreshIndex makes the local index mirror the open job catalog, adding new
// postings and dropping closed ones.
func (c *Container) RefreshIndex(ctx context.Context) (indexed, removed int, err error) {
	jobs, err := c.Jobs.ListOpenJobs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list open jobs: %w", err)
	}
	removed, err = c.Index.Sync(ctx, jobs)
	if err != nil {
		return 0, 0, err
	}
	return len(jobs), removed, nil
}

func (c *Container) refreshBeforeRun(ctx context.Context) error {
	indexed, removed, err := c.RefreshIndex(ctx)
	if err != nil {
		return fmt.Errorf("refresh job index: %w", err)
	}
	c.Logger.Info("job index refreshed", zap.Int("jobs", indexed), zap.Int("removed", removed))
	return nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Index != nil {
		if err := c.Index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
