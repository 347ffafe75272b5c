package repository

import (
	"context"
	"fmt"

	"jobfinder/internal/database"
	"jobfinder/internal/domain/recommendation"

	"github.com/google/uuid"
)

type RecommendationRepository interface {
	// ReplaceForSeeker swaps the seeker's stored set for recs in one
	// transaction. An empty recs clears the set.
	ReplaceForSeeker(ctx context.Context, seekerID uuid.UUID, recs []recommendation.Recommendation) error
	ListBySeeker(ctx context.Context, seekerID uuid.UUID) ([]recommendation.RecommendedJob, error)
}

type PostgresRecommendationRepository struct {
	db database.DB
}

func NewPostgresRecommendationRepository(db database.DB) *PostgresRecommendationRepository {
	return &PostgresRecommendationRepository{db: db}
}

func (r *PostgresRecommendationRepository) ReplaceForSeeker(ctx context.Context, seekerID uuid.UUID, recs []recommendation.Recommendation) error {
	if seekerID == uuid.Nil {
		return fmt.Errorf("replace recommendations: nil seeker id")
	}

	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		// Serialises overlapping runs for the same seeker.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, seekerID.String()); err != nil {
			return fmt.Errorf("lock seeker %s: %w", seekerID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM job_recommendations WHERE job_seeker_id = $1`, seekerID); err != nil {
			return fmt.Errorf("delete recommendations: %w", err)
		}

		for _, rec := range recs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_recommendations (job_seeker_id, job_id, score, rank, recommended_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				seekerID, rec.JobID, rec.Score, rec.Rank, rec.ComputedAt,
			); err != nil {
				return fmt.Errorf("insert recommendation job=%s: %w", rec.JobID, err)
			}
		}
		return nil
	})
}

func (r *PostgresRecommendationRepository) ListBySeeker(ctx context.Context, seekerID uuid.UUID) ([]recommendation.RecommendedJob, error) {
	rows, err := r.db.Query(ctx,
		`SELECT j.id, j.title, COALESCE(j.location, ''), COALESCE(c.name, ''),
				COALESCE(l.name, ''), COALESCE(t.name, ''), jr.score, jr.recommended_at
		 FROM job_recommendations jr
		 JOIN jobs j ON j.id = jr.job_id
		 LEFT JOIN categories c ON c.id = j.category_id
		 LEFT JOIN job_levels l ON l.id = j.job_level_id
		 LEFT JOIN job_types t ON t.id = j.job_type_id
		 WHERE jr.job_seeker_id = $1
		 ORDER BY jr.score DESC, jr.rank ASC`,
		seekerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]recommendation.RecommendedJob, 0)
	for rows.Next() {
		var it recommendation.RecommendedJob
		if err := rows.Scan(
			&it.JobID, &it.Title, &it.Location, &it.Category,
			&it.JobLevel, &it.JobType, &it.Score, &it.ComputedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
