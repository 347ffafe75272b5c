package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/infrastructure/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRecommendations_NonSeekerGetsEmpty(t *testing.T) {
	recs := newFakeRecs()
	uc := NewRecommendationQuery(&fakeSeekers{}, recs, newFakeCache(), time.Minute, nil)

	items, err := uc.GetRecommendations(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 0, recs.lists)
}

func TestGetRecommendations_NothingComputedYet(t *testing.T) {
	id := uuid.New()
	uc := NewRecommendationQuery(&fakeSeekers{seekers: map[uuid.UUID]bool{id: true}}, newFakeRecs(), nil, time.Minute, nil)

	items, err := uc.GetRecommendations(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetRecommendations_CachesAfterRead(t *testing.T) {
	id := uuid.New()
	recs := newFakeRecs()
	recs.listed = []recommendation.RecommendedJob{{JobID: uuid.New(), Title: "Go Developer", Score: 0.8}}
	c := newFakeCache()
	uc := NewRecommendationQuery(&fakeSeekers{seekers: map[uuid.UUID]bool{id: true}}, recs, c, time.Minute, nil)

	first, err := uc.GetRecommendations(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, c.data, cache.RecommendationsKey(id, 0))

	second, err := uc.GetRecommendations(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first[0].JobID, second[0].JobID)
	assert.Equal(t, 1, recs.lists)
}

func TestGetRecommendations_ReplaceDuringReadIsNotServedStale(t *testing.T) {
	f := newGeneratorFixture()
	job := matchingJob(fixedNow)
	f.jobs.open = []recommendation.JobPosting{job}
	gen := f.generator()

	old := []recommendation.RecommendedJob{{JobID: uuid.New(), Title: "Retired Posting", Score: 0.7}}
	fresh := []recommendation.RecommendedJob{{JobID: job.ID, Title: "Go Developer", Score: 0.6}}
	f.recs.listed = old
	// A scheduled replace commits between the database read and the cache
	// write of the first request.
	f.recs.onList = func() {
		_, err := gen.GenerateForSeeker(context.Background(), f.seekerID)
		require.NoError(t, err)
		f.recs.listed = fresh
	}

	seekers := &fakeSeekers{seekers: map[uuid.UUID]bool{f.seekerID: true}}
	uc := NewRecommendationQuery(seekers, f.recs, f.cache, time.Hour, nil)

	first, err := uc.GetRecommendations(context.Background(), f.seekerID)
	require.NoError(t, err)
	assert.Equal(t, old, first)

	second, err := uc.GetRecommendations(context.Background(), f.seekerID)
	require.NoError(t, err)
	assert.Equal(t, fresh, second)
	assert.Equal(t, 2, f.recs.lists)

	third, err := uc.GetRecommendations(context.Background(), f.seekerID)
	require.NoError(t, err)
	assert.Equal(t, fresh, third)
	assert.Equal(t, 2, f.recs.lists)
}

func TestGetRecommendations_VersionReadFailureSkipsCache(t *testing.T) {
	id := uuid.New()
	recs := newFakeRecs()
	recs.listed = []recommendation.RecommendedJob{{JobID: uuid.New(), Title: "Go Developer", Score: 0.8}}
	c := newFakeCache()
	c.counterErr = errors.New("i/o timeout")
	uc := NewRecommendationQuery(&fakeSeekers{seekers: map[uuid.UUID]bool{id: true}}, recs, c, time.Minute, nil)

	for i := 0; i < 2; i++ {
		items, err := uc.GetRecommendations(context.Background(), id)
		require.NoError(t, err)
		require.Len(t, items, 1)
	}
	assert.Equal(t, 2, recs.lists)
	assert.Zero(t, c.sets)
}

func TestGetRecommendations_Errors(t *testing.T) {
	_, err := NewRecommendationQuery(&fakeSeekers{}, newFakeRecs(), nil, 0, nil).
		GetRecommendations(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = NewRecommendationQuery(&fakeSeekers{err: errors.New("db down")}, newFakeRecs(), nil, 0, nil).
		GetRecommendations(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInternal)

	id := uuid.New()
	recs := newFakeRecs()
	recs.listErr = errors.New("db down")
	_, err = NewRecommendationQuery(&fakeSeekers{seekers: map[uuid.UUID]bool{id: true}}, recs, nil, 0, nil).
		GetRecommendations(context.Background(), id)
	assert.ErrorIs(t, err, ErrInternal)
}
