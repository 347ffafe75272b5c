package repository

import (
	"context"

	"jobfinder/internal/database"
	"jobfinder/internal/domain/recommendation"

	"github.com/google/uuid"
)

type JobRepository interface {
	// ListOpenJobs returns every active, unexpired posting.
	ListOpenJobs(ctx context.Context) ([]recommendation.JobPosting, error)
	// FindByIDs returns postings regardless of status; unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]recommendation.JobPosting, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobPostingSelect = `SELECT j.id, j.title, COALESCE(j.description, ''), COALESCE(j.location, ''),
		COALESCE(c.name, ''), COALESCE(l.name, ''), COALESCE(t.name, ''),
		j.employer_id, j.created_at
	 FROM jobs j
	 LEFT JOIN categories c ON c.id = j.category_id
	 LEFT JOIN job_levels l ON l.id = j.job_level_id
	 LEFT JOIN job_types t ON t.id = j.job_type_id`

func (r *PostgresJobRepository) ListOpenJobs(ctx context.Context) ([]recommendation.JobPosting, error) {
	rows, err := r.db.Query(ctx,
		jobPostingSelect+`
	 WHERE j.active = TRUE AND (j.expired_date IS NULL OR j.expired_date >= CURRENT_DATE)
	 ORDER BY j.created_at DESC, j.id ASC`,
	)
	if err != nil {
		return nil, err
	}
	return scanJobPostings(rows)
}

func (r *PostgresJobRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]recommendation.JobPosting, error) {
	if len(ids) == 0 {
		return []recommendation.JobPosting{}, nil
	}

	rows, err := r.db.Query(ctx,
		jobPostingSelect+`
	 WHERE j.id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	return scanJobPostings(rows)
}

func scanJobPostings(rows database.Rows) ([]recommendation.JobPosting, error) {
	defer rows.Close()

	out := make([]recommendation.JobPosting, 0)
	for rows.Next() {
		var j recommendation.JobPosting
		var level string
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Description, &j.Location,
			&j.Category, &level, &j.JobType,
			&j.EmployerID, &j.CreatedAt,
		); err != nil {
			return nil, err
		}
		j.Level = recommendation.ParseLevel(level)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
