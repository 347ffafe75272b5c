package repository

import (
	"context"

	"jobfinder/internal/database"
	"jobfinder/internal/domain/recommendation"

	"github.com/google/uuid"
)

type InteractionRepository interface {
	ViewsBy(ctx context.Context, seekerID uuid.UUID) ([]recommendation.InteractionRecord, error)
	ApplicationsBy(ctx context.Context, seekerID uuid.UUID) ([]recommendation.InteractionRecord, error)
}

type PostgresInteractionRepository struct {
	db database.DB
}

func NewPostgresInteractionRepository(db database.DB) *PostgresInteractionRepository {
	return &PostgresInteractionRepository{db: db}
}

func (r *PostgresInteractionRepository) ViewsBy(ctx context.Context, seekerID uuid.UUID) ([]recommendation.InteractionRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT v.job_seeker_id, v.job_id, j.employer_id, v.viewed_at
		 FROM job_views v
		 JOIN jobs j ON j.id = v.job_id
		 WHERE v.job_seeker_id = $1
		 ORDER BY v.viewed_at DESC`,
		seekerID,
	)
	if err != nil {
		return nil, err
	}
	return scanInteractions(rows, recommendation.InteractionView)
}

func (r *PostgresInteractionRepository) ApplicationsBy(ctx context.Context, seekerID uuid.UUID) ([]recommendation.InteractionRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.job_seeker_id, a.job_id, j.employer_id, a.applied_at
		 FROM applications a
		 JOIN jobs j ON j.id = a.job_id
		 WHERE a.job_seeker_id = $1
		 ORDER BY a.applied_at DESC`,
		seekerID,
	)
	if err != nil {
		return nil, err
	}
	return scanInteractions(rows, recommendation.InteractionApplication)
}

func scanInteractions(rows database.Rows, kind recommendation.InteractionKind) ([]recommendation.InteractionRecord, error) {
	defer rows.Close()

	out := make([]recommendation.InteractionRecord, 0)
	for rows.Next() {
		rec := recommendation.InteractionRecord{Kind: kind}
		if err := rows.Scan(&rec.SeekerID, &rec.JobID, &rec.EmployerID, &rec.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
