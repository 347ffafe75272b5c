package repository

import (
	"context"

	"jobfinder/internal/database"

	"github.com/google/uuid"
)

const RoleJobSeeker = "JOB_SEEKER"

// MaxSeekerPage caps the limit ListSeekerIDs honours.
const MaxSeekerPage = 5000

type SeekerRepository interface {
	// ListSeekerIDs pages through job-seeker identities in id order, starting
	// after the given id (uuid.Nil for the first page).
	ListSeekerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error)
	IsSeeker(ctx context.Context, userID uuid.UUID) (bool, error)
}

type PostgresSeekerRepository struct {
	db database.DB
}

func NewPostgresSeekerRepository(db database.DB) *PostgresSeekerRepository {
	return &PostgresSeekerRepository{db: db}
}

func (r *PostgresSeekerRepository) ListSeekerIDs(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 500
	}
	if limit > MaxSeekerPage {
		limit = MaxSeekerPage
	}

	rows, err := r.db.Query(ctx,
		`SELECT u.id
		 FROM users u
		 JOIN roles r ON r.id = u.role_id
		 WHERE r.name = $1 AND u.id > $2
		 ORDER BY u.id ASC
		 LIMIT $3`,
		RoleJobSeeker, after, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSeekerRepository) IsSeeker(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, nil
	}

	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM users u JOIN roles r ON r.id = u.role_id
			WHERE u.id = $1 AND r.name = $2
		)`,
		userID, RoleJobSeeker,
	).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}
