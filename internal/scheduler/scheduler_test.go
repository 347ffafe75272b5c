package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/infrastructure/cache"
	"jobfinder/internal/metrics"
	"jobfinder/internal/repository"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	ids   []uuid.UUID
	err   error
	calls int
	// maxLimit mimics a repository that caps the page size.
	maxLimit int
}

func (f *fakeLister) ListSeekerIDs(_ context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if after != uuid.Nil {
		for i, id := range f.ids {
			if id == after {
				start = i + 1
				break
			}
		}
	}
	if f.maxLimit > 0 && limit > f.maxLimit {
		limit = f.maxLimit
	}
	end := start + limit
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[start:end], nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, id uuid.UUID) (int, error)
	calls []uuid.UUID
}

func (f *fakeGenerator) GenerateForSeeker(ctx context.Context, id uuid.UUID) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return 10, nil
	}
	return fn(ctx, id)
}

func (f *fakeGenerator) called() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.calls...)
}

type fakeLocker struct {
	held     bool
	err      error
	locked   int
	unlocked int

	mu      sync.Mutex
	lose    bool
	extends int
}

func (f *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (*cache.Lock, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held {
		return nil, false, nil
	}
	f.locked++
	return &cache.Lock{Key: key}, true, nil
}

func (f *fakeLocker) Extend(context.Context, *cache.Lock, time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extends++
	return !f.lose, nil
}

func (f *fakeLocker) extendCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.extends
}

func (f *fakeLocker) Unlock(context.Context, *cache.Lock) error {
	f.unlocked++
	return nil
}

func newIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func TestRunDaily_FailureIsolation(t *testing.T) {
	ids := newIDs(2)
	missing, ok := ids[0], ids[1]
	gen := &fakeGenerator{fn: func(_ context.Context, id uuid.UUID) (int, error) {
		if id == missing {
			return 0, recommendation.ErrProfileNotFound
		}
		return 7, nil
	}}
	m := metrics.NewCollector("test")
	s := New(&fakeLister{ids: ids}, gen, nil, m, nil, Options{Workers: 2})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Seekers)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.False(t, sum.Skipped)
	assert.ElementsMatch(t, []uuid.UUID{missing, ok}, gen.called())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Seekers.WithLabelValues(metrics.SeekerFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Seekers.WithLabelValues(metrics.SeekerSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(metrics.RunCompleted)))
}

func TestRunDaily_PagesThroughAllSeekers(t *testing.T) {
	ids := newIDs(5)
	lister := &fakeLister{ids: ids}
	gen := &fakeGenerator{}
	s := New(lister, gen, nil, nil, nil, Options{Workers: 3, PageSize: 2})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Seekers)
	assert.Equal(t, 5, sum.Succeeded)
	assert.Equal(t, 3, lister.calls)
	assert.ElementsMatch(t, ids, gen.called())
}

func TestRunDaily_PageSizeAboveRepositoryCap(t *testing.T) {
	ids := newIDs(repository.MaxSeekerPage + 3)
	lister := &fakeLister{ids: ids, maxLimit: repository.MaxSeekerPage}
	s := New(lister, &fakeGenerator{}, nil, nil, nil, Options{Workers: 8, PageSize: 2 * repository.MaxSeekerPage})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(ids), sum.Seekers)
	assert.Equal(t, len(ids), sum.Succeeded)
	assert.Equal(t, 2, lister.calls)
}

func TestRunDaily_PanicAndTimeoutAreContained(t *testing.T) {
	ids := newIDs(3)
	gen := &fakeGenerator{fn: func(ctx context.Context, id uuid.UUID) (int, error) {
		switch id {
		case ids[0]:
			panic("nil map")
		case ids[1]:
			<-ctx.Done()
			return 0, ctx.Err()
		default:
			return 1, nil
		}
	}}
	s := New(&fakeLister{ids: ids}, gen, nil, nil, nil, Options{Workers: 3, SeekerTimeout: 20 * time.Millisecond})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 2, sum.Failed)
}

func TestRunDaily_ListFailureAbortsRun(t *testing.T) {
	gen := &fakeGenerator{}
	s := New(&fakeLister{err: errors.New("db down")}, gen, nil, nil, nil, Options{})

	_, err := s.RunDaily(context.Background())
	require.Error(t, err)
	assert.Empty(t, gen.called())
	assert.False(t, s.Running())
}

func TestRunDaily_SkipsWhenLockHeldElsewhere(t *testing.T) {
	gen := &fakeGenerator{}
	locker := &fakeLocker{held: true}
	m := metrics.NewCollector("test")
	s := New(&fakeLister{ids: newIDs(3)}, gen, locker, m, nil, Options{})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Skipped)
	assert.Empty(t, gen.called())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(metrics.RunSkipped)))
}

func TestRunDaily_ReleasesLock(t *testing.T) {
	locker := &fakeLocker{}
	s := New(&fakeLister{ids: newIDs(2)}, &fakeGenerator{}, locker, nil, nil, Options{})

	_, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
}

func TestRunDaily_ProceedsWithoutRedis(t *testing.T) {
	gen := &fakeGenerator{}
	locker := &fakeLocker{err: cache.ErrUnavailable}
	s := New(&fakeLister{ids: newIDs(2)}, gen, locker, nil, nil, Options{})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 0, locker.unlocked)
}

func TestRunDaily_RenewsLeaseWhileRunning(t *testing.T) {
	locker := &fakeLocker{}
	gen := &fakeGenerator{fn: func(ctx context.Context, _ uuid.UUID) (int, error) {
		select {
		case <-time.After(150 * time.Millisecond):
			return 1, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}}
	s := New(&fakeLister{ids: newIDs(1)}, gen, locker, nil, nil, Options{
		Workers:       1,
		LockTTL:       30 * time.Millisecond,
		SeekerTimeout: 5 * time.Second,
	})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	assert.GreaterOrEqual(t, locker.extendCount(), 2)
	assert.Equal(t, 1, locker.unlocked)
}

func TestRunDaily_LostLeaseStopsRun(t *testing.T) {
	locker := &fakeLocker{lose: true}
	gen := &fakeGenerator{fn: func(ctx context.Context, _ uuid.UUID) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}}
	s := New(&fakeLister{ids: newIDs(1)}, gen, locker, nil, nil, Options{
		Workers:       1,
		LockTTL:       30 * time.Millisecond,
		SeekerTimeout: 10 * time.Second,
	})

	start := time.Now()
	sum, err := s.RunDaily(context.Background())
	require.ErrorIs(t, err, ErrLeaseLost)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, sum.Succeeded)
	assert.Equal(t, 1, locker.extendCount())
	assert.Equal(t, 1, locker.unlocked)
}

func TestRunDaily_BeforeRunFailureDoesNotAbort(t *testing.T) {
	locker := &fakeLocker{}
	calls := 0
	gen := &fakeGenerator{}
	s := New(&fakeLister{ids: newIDs(2)}, gen, locker, nil, nil, Options{
		BeforeRun: func(context.Context) error {
			calls++
			assert.Equal(t, 1, locker.locked)
			return errors.New("catalog query failed")
		},
	})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, sum.Succeeded)
}

func TestRunDaily_BeforeRunSkippedWhenLockHeld(t *testing.T) {
	calls := 0
	s := New(&fakeLister{ids: newIDs(1)}, &fakeGenerator{}, &fakeLocker{held: true}, nil, nil, Options{
		BeforeRun: func(context.Context) error {
			calls++
			return nil
		},
	})

	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Skipped)
	assert.Zero(t, calls)
}

func TestTrigger_PreventsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	gen := &fakeGenerator{fn: func(ctx context.Context, _ uuid.UUID) (int, error) {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return 1, nil
	}}
	s := New(&fakeLister{ids: newIDs(1)}, gen, nil, nil, nil, Options{Workers: 1, SeekerTimeout: 5 * time.Second})

	require.NoError(t, s.Trigger())
	<-started

	assert.True(t, s.Running())
	assert.ErrorIs(t, s.Trigger(), ErrRunInProgress)
	_, err := s.RunDaily(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	s.Stop()
	assert.False(t, s.Running())
}

func TestStart_RejectsBadSpec(t *testing.T) {
	s := New(&fakeLister{}, &fakeGenerator{}, nil, nil, nil, Options{Spec: "every tuesday"})
	require.Error(t, s.Start())
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewWorkerPool(1, 0)
	assert.False(t, p.Submit(ctx, func(context.Context) Result { return Result{} }))
	p.Close()
}

func TestLastRun(t *testing.T) {
	s := New(&fakeLister{ids: newIDs(2)}, &fakeGenerator{}, nil, nil, nil, Options{})

	_, ok := s.LastRun()
	assert.False(t, ok)

	_, err := s.RunDaily(context.Background())
	require.NoError(t, err)

	last, ok := s.LastRun()
	require.True(t, ok)
	assert.Equal(t, 2, last.Succeeded)
}
