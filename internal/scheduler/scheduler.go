// Package scheduler runs the recommendation batch on a cron schedule and on
// demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"jobfinder/internal/infrastructure/cache"
	"jobfinder/internal/logger"
	"jobfinder/internal/metrics"
	"jobfinder/internal/repository"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	ErrRunInProgress = errors.New("recommendation run already in progress")
	ErrLeaseLost     = errors.New("run lock lost before the run finished")
)

const (
	DefaultSpec     = "0 2 * * *"
	defaultPageSize = 500
)

type Generator interface {
	GenerateForSeeker(ctx context.Context, seekerID uuid.UUID) (int, error)
}

type SeekerLister interface {
	ListSeekerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
}

// RunLocker guards a run across instances. A nil RunLocker disables the guard.
type RunLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (*cache.Lock, bool, error)
	Extend(ctx context.Context, l *cache.Lock, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, l *cache.Lock) error
}

type Options struct {
	Spec          string
	RunOnStart    bool
	Workers       int
	SeekerTimeout time.Duration
	// LockTTL is the lease length; a held lease is renewed every third of it.
	LockTTL  time.Duration
	PageSize int
	// BeforeRun runs once the lock is held, before seekers are listed. A
	// failure is logged and the run goes on.
	BeforeRun func(ctx context.Context) error
}

type RunSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Seekers   int
	Succeeded int
	Failed    int
	// Skipped is set when another instance held the run lock.
	Skipped bool
}

type Scheduler struct {
	cron *cron.Cron
	opts Options

	seekers   SeekerLister
	generator Generator
	locker    RunLocker
	metrics   *metrics.Collector
	logger    *zap.Logger

	running atomic.Bool
	last    atomic.Pointer[RunSummary]
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(seekers SeekerLister, gen Generator, locker RunLocker, m *metrics.Collector, log *zap.Logger, opts Options) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.SeekerTimeout <= 0 {
		opts.SeekerTimeout = 30 * time.Second
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Hour
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	// A short page ends the listing, so asking for more than the
	// repository returns would stop after the first page.
	if opts.PageSize > repository.MaxSeekerPage {
		opts.PageSize = repository.MaxSeekerPage
	}

	log = logger.OrNop(log).Named("scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{s: log.Sugar()}

	return &Scheduler{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		opts:      opts,
		seekers:   seekers,
		generator: gen,
		locker:    locker,
		metrics:   m,
		logger:    log,
		baseCtx:   ctx,
		cancel:    cancel,
	}
}

// Start registers the cron entry and starts ticking. An empty spec leaves the
// scheduler manual-only.
func (s *Scheduler) Start() error {
	if s.opts.Spec != "" {
		if _, err := s.cron.AddFunc(s.opts.Spec, s.runScheduled); err != nil {
			return fmt.Errorf("cron.AddFunc: %w", err)
		}
	}
	s.cron.Start()
	s.logger.Info("cron started", zap.String("spec", s.opts.Spec))

	if s.opts.RunOnStart {
		if err := s.Trigger(); err != nil {
			s.logger.Warn("run on start not triggered", zap.Error(err))
		}
	}
	return nil
}

// Stop cancels any run in flight and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("cron stopped")
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// LastRun reports the most recent run of this instance, if any.
func (s *Scheduler) LastRun() (RunSummary, bool) {
	p := s.last.Load()
	if p == nil {
		return RunSummary{}, false
	}
	return *p, true
}

// Trigger starts a run in the background. Per-seeker failures are only
// logged; the caller learns nothing beyond whether the run was started.
func (s *Scheduler) Trigger() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		if _, err := s.run(s.baseCtx); err != nil {
			s.logger.Error("triggered run failed", zap.Error(err))
		}
	}()
	return nil
}

// RunDaily runs one full batch synchronously.
func (s *Scheduler) RunDaily(ctx context.Context) (RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return RunSummary{}, ErrRunInProgress
	}
	defer s.running.Store(false)
	return s.run(ctx)
}

func (s *Scheduler) runScheduled() {
	if _, err := s.RunDaily(s.baseCtx); err != nil {
		s.logger.Error("scheduled run failed", zap.Error(err))
	}
}

func (s *Scheduler) run(ctx context.Context) (RunSummary, error) {
	sum := RunSummary{StartedAt: time.Now().UTC()}
	defer func() { s.last.Store(&sum) }()

	lock, acquired, err := s.acquire(ctx)
	if err != nil {
		return sum, err
	}
	if !acquired {
		sum.Skipped = true
		s.metrics.ObserveRun(metrics.RunSkipped, 0)
		s.logger.Info("run skipped, lock held by another instance")
		return sum, nil
	}
	if lock != nil {
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), lock); err != nil {
				s.logger.Warn("release run lock failed", zap.Error(err))
			}
		}()
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	var lost atomic.Bool
	if lock != nil {
		stopRenew := s.renewLease(runCtx, lock, func() {
			lost.Store(true)
			cancelRun()
		})
		defer stopRenew()
	}

	if s.opts.BeforeRun != nil {
		if err := s.opts.BeforeRun(runCtx); err != nil {
			s.logger.Warn("pre-run refresh failed, continuing", zap.Error(err))
		}
	}

	ids, err := s.listSeekers(runCtx)
	if err != nil {
		if lost.Load() {
			return sum, ErrLeaseLost
		}
		return sum, fmt.Errorf("list seekers: %w", err)
	}
	sum.Seekers = len(ids)
	s.logger.Info("run started", zap.Int("seekers", len(ids)), zap.Int("workers", s.opts.Workers))

	pool := NewWorkerPool(s.opts.Workers, s.opts.Workers)
	results := pool.Run(runCtx)

	go func() {
		defer pool.Close()
		for _, id := range ids {
			if !pool.Submit(runCtx, s.seekerTask(id)) {
				return
			}
		}
	}()

	for res := range results {
		s.metrics.ObserveSeeker(res.Err, res.Persisted)
		if res.Err != nil {
			sum.Failed++
			s.logger.Error("seeker failed",
				zap.String("seeker_id", res.SeekerID.String()),
				zap.Error(res.Err),
			)
			continue
		}
		sum.Succeeded++
	}

	sum.Duration = time.Since(sum.StartedAt)
	s.metrics.ObserveRun(metrics.RunCompleted, sum.Duration)

	fields := []zap.Field{
		zap.Int("seekers", sum.Seekers),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Duration("duration", sum.Duration),
	}
	if lost.Load() {
		s.logger.Error("run stopped, lock lost", fields...)
		return sum, ErrLeaseLost
	}
	if runCtx.Err() != nil {
		s.logger.Warn("run interrupted", append(fields, zap.Error(runCtx.Err()))...)
		return sum, nil
	}
	s.logger.Info("run finished", fields...)
	return sum, nil
}

// acquire returns acquired=true with a nil lock when no guard is configured
// or Redis is unreachable.
func (s *Scheduler) acquire(ctx context.Context) (*cache.Lock, bool, error) {
	if s.locker == nil {
		return nil, true, nil
	}
	lock, ok, err := s.locker.TryLock(ctx, cache.RecommendationRunLockKey, s.opts.LockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrUnavailable) {
			s.logger.Warn("run lock unavailable, proceeding unguarded", zap.Error(err))
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("acquire run lock: %w", err)
	}
	return lock, ok, nil
}

// renewLease keeps lock alive until the returned stop is called. When a
// renewal finds the lease gone, onLost is called and renewal ends.
func (s *Scheduler) renewLease(ctx context.Context, lock *cache.Lock, onLost func()) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(s.opts.LockTTL / 3)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
			}
			ok, err := s.locker.Extend(ctx, lock, s.opts.LockTTL)
			switch {
			case err != nil:
				s.logger.Warn("extend run lock failed", zap.Error(err))
			case !ok:
				onLost()
				return
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (s *Scheduler) listSeekers(ctx context.Context) ([]uuid.UUID, error) {
	var all []uuid.UUID
	after := uuid.Nil
	for {
		page, err := s.seekers.ListSeekerIDs(ctx, after, s.opts.PageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < s.opts.PageSize {
			return all, nil
		}
		after = page[len(page)-1]
	}
}

func (s *Scheduler) seekerTask(id uuid.UUID) Task {
	return func(ctx context.Context) (res Result) {
		res.SeekerID = id
		defer func() {
			if r := recover(); r != nil {
				res.Err = fmt.Errorf("generate panicked: %v", r)
			}
		}()

		sctx, cancel := context.WithTimeout(ctx, s.opts.SeekerTimeout)
		defer cancel()

		res.Persisted, res.Err = s.generator.GenerateForSeeker(sctx, id)
		return res
	}
}

// cronLogger routes robfig/cron output through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
