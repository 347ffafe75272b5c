package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/domain/scoring"
	"jobfinder/internal/search"
	"jobfinder/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProfiles map[uuid.UUID]recommendation.SeekerProfile

func (m memProfiles) GetBySeekerID(_ context.Context, id uuid.UUID) (recommendation.SeekerProfile, error) {
	p, ok := m[id]
	if !ok {
		return recommendation.SeekerProfile{}, recommendation.ErrProfileNotFound
	}
	return p, nil
}

type memJobs []recommendation.JobPosting

func (m memJobs) ListOpenJobs(context.Context) ([]recommendation.JobPosting, error) {
	return m, nil
}

func (m memJobs) FindByIDs(context.Context, []uuid.UUID) ([]recommendation.JobPosting, error) {
	return nil, nil
}

type noInteractions struct{}

func (noInteractions) ViewsBy(context.Context, uuid.UUID) ([]recommendation.InteractionRecord, error) {
	return nil, nil
}

func (noInteractions) ApplicationsBy(context.Context, uuid.UUID) ([]recommendation.InteractionRecord, error) {
	return nil, nil
}

type memRecs struct {
	mu     sync.Mutex
	stored map[uuid.UUID][]recommendation.Recommendation
}

func (m *memRecs) ReplaceForSeeker(_ context.Context, id uuid.UUID, recs []recommendation.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[id] = append([]recommendation.Recommendation(nil), recs...)
	return nil
}

func (m *memRecs) ListBySeeker(context.Context, uuid.UUID) ([]recommendation.RecommendedJob, error) {
	return nil, nil
}

func (m *memRecs) get(id uuid.UUID) []recommendation.Recommendation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored[id]
}

func TestRunDaily_MissingProfileKeepsEarlierSet(t *testing.T) {
	now := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	ids := newIDs(2)
	noProfile, withProfile := ids[0], ids[1]

	good := recommendation.JobPosting{
		ID:          uuid.New(),
		Title:       "Go Developer",
		Description: "golang services",
		Location:    "Hanoi",
		Category:    "Backend",
		Level:       recommendation.LevelMid,
		EmployerID:  uuid.New(),
		CreatedAt:   now,
	}
	poor := recommendation.JobPosting{
		ID:        uuid.New(),
		Title:     "Illustrator",
		Location:  "Dalat",
		Category:  "Design",
		Level:     recommendation.LevelInternship,
		CreatedAt: now,
	}
	catalog := memJobs{poor, good}

	idx, err := search.NewMemJobIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	_, err = idx.Sync(context.Background(), catalog)
	require.NoError(t, err)

	earlier := []recommendation.Recommendation{
		{SeekerID: noProfile, JobID: uuid.New(), Score: 0.55, Rank: 1, ComputedAt: now.Add(-24 * time.Hour)},
		{SeekerID: noProfile, JobID: uuid.New(), Score: 0.41, Rank: 2, ComputedAt: now.Add(-24 * time.Hour)},
	}
	recs := &memRecs{stored: map[uuid.UUID][]recommendation.Recommendation{
		noProfile: append([]recommendation.Recommendation(nil), earlier...),
	}}

	location, bio, years := "Hanoi", "backend golang", 5
	gen := usecase.NewRecommendationGenerator(usecase.GeneratorDeps{
		Profiles: memProfiles{withProfile: {
			SeekerID:        withProfile,
			Location:        &location,
			YearsExperience: &years,
			Bio:             &bio,
		}},
		Jobs:            catalog,
		Interactions:    noInteractions{},
		Recommendations: recs,
		Index:           idx,
		Scorer:          scoring.NewScorer(scoring.DefaultConfig()),
		Now:             func() time.Time { return now },
	})

	s := New(&fakeLister{ids: ids}, gen, nil, nil, nil, Options{Workers: 2})
	sum, err := s.RunDaily(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)

	assert.Equal(t, earlier, recs.get(noProfile))

	got := recs.get(withProfile)
	require.Len(t, got, 1)
	assert.Equal(t, good.ID, got[0].JobID)
	assert.Equal(t, withProfile, got[0].SeekerID)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, now, got[0].ComputedAt)
	assert.GreaterOrEqual(t, got[0].Score, scoring.DefaultConfig().Threshold)
}
