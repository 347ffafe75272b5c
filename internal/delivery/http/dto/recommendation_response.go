package dto

import (
	"time"

	"jobfinder/internal/domain/recommendation"
)

type RecommendationItem struct {
	JobID      string    `json:"job_id"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Category   string    `json:"category"`
	JobLevel   string    `json:"job_level"`
	JobType    string    `json:"job_type"`
	Score      float64   `json:"score"`
	Rank       int       `json:"rank"`
	ComputedAt time.Time `json:"computed_at"`
}

type RecommendationListResponse struct {
	Items []RecommendationItem `json:"items"`
	Total int                  `json:"total"`
}

// NewRecommendationListResponse keeps the stored order; rank is 1-based.
func NewRecommendationListResponse(jobs []recommendation.RecommendedJob) RecommendationListResponse {
	items := make([]RecommendationItem, 0, len(jobs))
	for i, j := range jobs {
		items = append(items, RecommendationItem{
			JobID:      j.JobID.String(),
			Title:      j.Title,
			Location:   j.Location,
			Category:   j.Category,
			JobLevel:   j.JobLevel,
			JobType:    j.JobType,
			Score:      j.Score,
			Rank:       i + 1,
			ComputedAt: j.ComputedAt,
		})
	}
	return RecommendationListResponse{Items: items, Total: len(items)}
}
