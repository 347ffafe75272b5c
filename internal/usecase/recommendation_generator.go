package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/domain/scoring"
	"jobfinder/internal/infrastructure/cache"
	"jobfinder/internal/logger"
	"jobfinder/internal/repository"
	"jobfinder/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobIndex interface {
	Query(ctx context.Context, q search.BoostedQuery) (map[uuid.UUID]float64, error)
}

// RecommendationCache stores read results under a per-seeker generation.
// Writers bump the generation after commit; readers fetch it before they
// touch the database, so a read that raced a replace can only populate a
// generation nobody asks for again.
type RecommendationCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Counter(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

// Notifier is told about every committed replace.
type Notifier interface {
	RecommendationsUpdated(seekerID uuid.UUID, count int, at time.Time)
}

type RecommendationGeneratorUsecase interface {
	GenerateForSeeker(ctx context.Context, seekerID uuid.UUID) (int, error)
}

type GeneratorDeps struct {
	Profiles        repository.ProfileRepository
	Jobs            repository.JobRepository
	Interactions    repository.InteractionRepository
	Recommendations repository.RecommendationRepository
	Index           JobIndex
	Scorer          *scoring.Scorer

	Cache    RecommendationCache
	Notifier Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

type RecommendationGenerator struct {
	profiles     repository.ProfileRepository
	jobs         repository.JobRepository
	interactions repository.InteractionRepository
	recs         repository.RecommendationRepository
	index        JobIndex
	scorer       *scoring.Scorer

	cache    RecommendationCache
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewRecommendationGenerator(d GeneratorDeps) *RecommendationGenerator {
	scorer := d.Scorer
	if scorer == nil {
		scorer = scoring.NewScorer(scoring.DefaultConfig())
	}
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &RecommendationGenerator{
		profiles:     d.Profiles,
		jobs:         d.Jobs,
		interactions: d.Interactions,
		recs:         d.Recommendations,
		index:        d.Index,
		scorer:       scorer,
		cache:        d.Cache,
		notifier:     d.Notifier,
		logger:       logger.OrNop(d.Logger).Named("generator"),
		now:          now,
	}
}

// GenerateForSeeker recomputes and replaces the seeker's stored set and
// returns how many recommendations were persisted. On error nothing is
// written and the previous set stays in place.
func (g *RecommendationGenerator) GenerateForSeeker(ctx context.Context, seekerID uuid.UUID) (int, error) {
	profile, err := g.profiles.GetBySeekerID(ctx, seekerID)
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	profile.SeekerID = seekerID

	jobs, err := g.jobs.ListOpenJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("load open jobs: %w", err)
	}

	history, err := g.loadHistory(ctx, seekerID)
	if err != nil {
		return 0, err
	}

	relevance, err := g.index.Query(ctx, search.BoostedQuery{
		Bio:         deref(profile.Bio),
		Location:    deref(profile.Location),
		EmployerIDs: setKeys(history.ViewedEmployerIDs),
	})
	if err != nil {
		if !errors.Is(err, recommendation.ErrIndexUnavailable) {
			err = errors.Join(recommendation.ErrIndexUnavailable, err)
		}
		return 0, fmt.Errorf("query index: %w", err)
	}

	computedAt := g.now()
	recs := g.rank(profile, jobs, history, relevance, computedAt)

	if err := g.recs.ReplaceForSeeker(ctx, seekerID, recs); err != nil {
		return 0, fmt.Errorf("replace recommendations: %w", err)
	}

	if g.cache != nil {
		if _, err := g.cache.Incr(ctx, cache.RecommendationsVersionKey(seekerID)); err != nil {
			g.logger.Warn("invalidate recommendation cache failed",
				zap.String("seeker_id", seekerID.String()), zap.Error(err))
		}
	}
	if g.notifier != nil {
		g.notifier.RecommendationsUpdated(seekerID, len(recs), computedAt)
	}

	g.logger.Debug("recommendations replaced",
		zap.String("seeker_id", seekerID.String()),
		zap.Int("candidates", len(jobs)),
		zap.Int("hits", len(relevance)),
		zap.Int("persisted", len(recs)),
	)
	return len(recs), nil
}

func (g *RecommendationGenerator) loadHistory(ctx context.Context, seekerID uuid.UUID) (scoring.History, error) {
	h := scoring.History{
		ViewedJobIDs:      make(map[uuid.UUID]struct{}),
		ViewedEmployerIDs: make(map[uuid.UUID]struct{}),
	}

	views, err := g.interactions.ViewsBy(ctx, seekerID)
	if err != nil {
		return h, fmt.Errorf("load views: %w", err)
	}
	for _, v := range views {
		h.ViewedJobIDs[v.JobID] = struct{}{}
		if v.EmployerID != uuid.Nil {
			h.ViewedEmployerIDs[v.EmployerID] = struct{}{}
		}
	}

	apps, err := g.interactions.ApplicationsBy(ctx, seekerID)
	if err != nil {
		return h, fmt.Errorf("load applications: %w", err)
	}
	if len(apps) == 0 {
		return h, nil
	}

	ids := make([]uuid.UUID, 0, len(apps))
	seen := make(map[uuid.UUID]struct{}, len(apps))
	for _, a := range apps {
		if _, ok := seen[a.JobID]; ok {
			continue
		}
		seen[a.JobID] = struct{}{}
		ids = append(ids, a.JobID)
	}
	applied, err := g.jobs.FindByIDs(ctx, ids)
	if err != nil {
		return h, fmt.Errorf("load applied jobs: %w", err)
	}
	h.AppliedJobs = applied
	return h, nil
}

type scoredJob struct {
	job   recommendation.JobPosting
	score float64
}

func (g *RecommendationGenerator) rank(
	p recommendation.SeekerProfile,
	jobs []recommendation.JobPosting,
	h scoring.History,
	relevance map[uuid.UUID]float64,
	computedAt time.Time,
) []recommendation.Recommendation {
	cfg := g.scorer.Config()

	kept := make([]scoredJob, 0, len(jobs))
	seen := make(map[uuid.UUID]struct{}, len(jobs))
	for _, j := range jobs {
		if _, ok := seen[j.ID]; ok {
			continue
		}
		seen[j.ID] = struct{}{}

		s := g.scorer.Score(p, j, h, relevance[j.ID])
		if s < cfg.Threshold {
			continue
		}
		kept = append(kept, scoredJob{job: j, score: s})
	}

	sort.Slice(kept, func(a, b int) bool {
		x, y := kept[a], kept[b]
		if x.score != y.score {
			return x.score > y.score
		}
		if !x.job.CreatedAt.Equal(y.job.CreatedAt) {
			return x.job.CreatedAt.After(y.job.CreatedAt)
		}
		return x.job.ID.String() < y.job.ID.String()
	})

	if len(kept) > cfg.TopN {
		kept = kept[:cfg.TopN]
	}

	out := make([]recommendation.Recommendation, 0, len(kept))
	for i, k := range kept {
		out = append(out, recommendation.Recommendation{
			SeekerID:   p.SeekerID,
			JobID:      k.job.ID,
			Score:      k.score,
			Rank:       i + 1,
			ComputedAt: computedAt,
		})
	}
	return out
}

func setKeys(m map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
