package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventRecommendationsUpdated = "recommendations_updated"

type RecommendationsUpdatedEvent struct {
	Type      string    `json:"type"`
	SeekerID  uuid.UUID `json:"seeker_id"`
	Count     int       `json:"count"`
	Timestamp string    `json:"timestamp"`
}

// RecommendationsUpdated tells the seeker's open sockets that a new set was
// stored.
func (h *Hub) RecommendationsUpdated(seekerID uuid.UUID, count int, at time.Time) {
	if h == nil {
		return
	}
	b, err := json.Marshal(RecommendationsUpdatedEvent{
		Type:      EventRecommendationsUpdated,
		SeekerID:  seekerID,
		Count:     count,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("encode event failed", zap.Error(err))
		return
	}
	h.Publish(seekerID, b)
}
