package usecase

import (
	"context"
	"time"

	"jobfinder/internal/domain/recommendation"
	"jobfinder/internal/infrastructure/cache"
	"jobfinder/internal/logger"
	"jobfinder/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecommendationQueryUsecase interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID) ([]recommendation.RecommendedJob, error)
}

type RecommendationQuery struct {
	seekers repository.SeekerRepository
	recs    repository.RecommendationRepository
	cache   RecommendationCache
	ttl     time.Duration
	logger  *zap.Logger
}

func NewRecommendationQuery(seekers repository.SeekerRepository, recs repository.RecommendationRepository, c RecommendationCache, ttl time.Duration, log *zap.Logger) *RecommendationQuery {
	return &RecommendationQuery{seekers: seekers, recs: recs, cache: c, ttl: ttl, logger: logger.OrNop(log)}
}

// GetRecommendations returns the stored set for userID. A user that is not a
// seeker, or has nothing computed yet, gets an empty slice.
func (u *RecommendationQuery) GetRecommendations(ctx context.Context, userID uuid.UUID) ([]recommendation.RecommendedJob, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	// The generation is read before the database so a replace committed
	// after this point lands under a newer key.
	key := ""
	if u.cache != nil {
		if version, err := u.cache.Counter(ctx, cache.RecommendationsVersionKey(userID)); err == nil {
			key = cache.RecommendationsKey(userID, version)
		}
	}
	if key != "" {
		var cached []recommendation.RecommendedJob
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			if cached == nil {
				cached = []recommendation.RecommendedJob{}
			}
			return cached, nil
		}
	}

	ok, err := u.seekers.IsSeeker(ctx, userID)
	if err != nil {
		u.logger.Error("check seeker role failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	if !ok {
		return []recommendation.RecommendedJob{}, nil
	}

	items, err := u.recs.ListBySeeker(ctx, userID)
	if err != nil {
		u.logger.Error("list recommendations failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, ErrInternal
	}
	if items == nil {
		items = []recommendation.RecommendedJob{}
	}

	if key != "" {
		_ = u.cache.SetJSON(ctx, key, items, u.ttl)
	}
	return items, nil
}
