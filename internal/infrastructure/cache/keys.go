package cache

import (
	"strconv"

	"github.com/google/uuid"
)

const RecommendationRunLockKey = "recommendations:run:lock"

// RecommendationsVersionKey holds the seeker's generation counter. Every
// committed replace bumps it, which retires all cached entries of older
// generations at once.
func RecommendationsVersionKey(seekerID uuid.UUID) string {
	return "recommendations:seeker:" + seekerID.String() + ":version"
}

func RecommendationsKey(seekerID uuid.UUID, version int64) string {
	return "recommendations:seeker:" + seekerID.String() + ":v" + strconv.FormatInt(version, 10)
}
