package repository

import (
	"context"

	"jobfinder/internal/database"
	dbpostgres "jobfinder/internal/database/postgres"
	"jobfinder/internal/domain/recommendation"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	GetBySeekerID(ctx context.Context, seekerID uuid.UUID) (recommendation.SeekerProfile, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetBySeekerID(ctx context.Context, seekerID uuid.UUID) (recommendation.SeekerProfile, error) {
	p := recommendation.SeekerProfile{SeekerID: seekerID}

	var years *int32
	err := r.db.QueryRow(ctx,
		`SELECT location, years_experience, description
		 FROM user_detail
		 WHERE user_id = $1`,
		seekerID,
	).Scan(&p.Location, &years, &p.Bio)
	if err != nil {
		if dbpostgres.IsNoRows(err) {
			return recommendation.SeekerProfile{}, recommendation.ErrProfileNotFound
		}
		return recommendation.SeekerProfile{}, err
	}

	if years != nil {
		y := int(*years)
		p.YearsExperience = &y
	}
	return p, nil
}
