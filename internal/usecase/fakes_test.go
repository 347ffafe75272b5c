package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/search"

	"github.com/google/uuid"
)

type fakeProfiles struct {
	byID map[uuid.UUID]recommendation.SeekerProfile
	err  error
}

func (f *fakeProfiles) GetBySeekerID(_ context.Context, id uuid.UUID) (recommendation.SeekerProfile, error) {
	if f.err != nil {
		return recommendation.SeekerProfile{}, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return recommendation.SeekerProfile{}, recommendation.ErrProfileNotFound
	}
	return p, nil
}

type fakeJobs struct {
	open    []recommendation.JobPosting
	all     []recommendation.JobPosting
	listErr error
}

func (f *fakeJobs) ListOpenJobs(context.Context) ([]recommendation.JobPosting, error) {
	return f.open, f.listErr
}

func (f *fakeJobs) FindByIDs(_ context.Context, ids []uuid.UUID) ([]recommendation.JobPosting, error) {
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := []recommendation.JobPosting{}
	for _, j := range append(append([]recommendation.JobPosting{}, f.open...), f.all...) {
		if _, ok := want[j.ID]; ok {
			out = append(out, j)
			delete(want, j.ID)
		}
	}
	return out, nil
}

type fakeInteractions struct {
	views []recommendation.InteractionRecord
	apps  []recommendation.InteractionRecord
}

func (f *fakeInteractions) ViewsBy(context.Context, uuid.UUID) ([]recommendation.InteractionRecord, error) {
	return f.views, nil
}

func (f *fakeInteractions) ApplicationsBy(context.Context, uuid.UUID) ([]recommendation.InteractionRecord, error) {
	return f.apps, nil
}

type fakeRecs struct {
	mu       sync.Mutex
	stored   map[uuid.UUID][]recommendation.Recommendation
	replaced int
	err      error

	listed  []recommendation.RecommendedJob
	listErr error
	lists   int
	// onList runs after the result has been read, before it is returned.
	onList func()
}

func newFakeRecs() *fakeRecs {
	return &fakeRecs{stored: make(map[uuid.UUID][]recommendation.Recommendation)}
}

func (f *fakeRecs) ReplaceForSeeker(_ context.Context, seekerID uuid.UUID, recs []recommendation.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced++
	if f.err != nil {
		return f.err
	}
	f.stored[seekerID] = append([]recommendation.Recommendation(nil), recs...)
	return nil
}

func (f *fakeRecs) ListBySeeker(context.Context, uuid.UUID) ([]recommendation.RecommendedJob, error) {
	f.lists++
	out, err := f.listed, f.listErr
	if hook := f.onList; hook != nil {
		f.onList = nil
		hook()
	}
	return out, err
}

type fakeIndex struct {
	scores map[uuid.UUID]float64
	err    error
	last   search.BoostedQuery
	calls  int
}

func (f *fakeIndex) Query(_ context.Context, q search.BoostedQuery) (map[uuid.UUID]float64, error) {
	f.calls++
	f.last = q
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]float64, len(f.scores))
	for k, v := range f.scores {
		out[k] = v
	}
	return out, nil
}

type fakeCache struct {
	data       map[string][]byte
	counters   map[string]int64
	bumped     []string
	sets       int
	counterErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte), counters: make(map[string]int64)}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.sets++
	f.data[key] = b
	return nil
}

func (f *fakeCache) Counter(_ context.Context, key string) (int64, error) {
	if f.counterErr != nil {
		return 0, f.counterErr
	}
	return f.counters[key], nil
}

func (f *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	f.bumped = append(f.bumped, key)
	f.counters[key]++
	return f.counters[key], nil
}

type notification struct {
	seekerID uuid.UUID
	count    int
}

type fakeNotifier struct {
	got []notification
}

func (f *fakeNotifier) RecommendationsUpdated(seekerID uuid.UUID, count int, _ time.Time) {
	f.got = append(f.got, notification{seekerID: seekerID, count: count})
}

type fakeSeekers struct {
	seekers map[uuid.UUID]bool
	err     error
}

func (f *fakeSeekers) ListSeekerIDs(context.Context, uuid.UUID, int) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeSeekers) IsSeeker(_ context.Context, id uuid.UUID) (bool, error) {
	return f.seekers[id], f.err
}
