package seeder

import (
	"context"

	"jobfinder/internal/database"
)

type demoInteraction struct {
	Seeker string
	Job    string
}

var (
	demoViews = []demoInteraction{
		{Seeker: "rani@example.com", Job: "Backend Engineer (Go)"},
		{Seeker: "rani@example.com", Job: "Senior Platform Engineer"},
		{Seeker: "bayu@example.com", Job: "Data Engineer"},
	}
	demoApplications = []demoInteraction{
		{Seeker: "rani@example.com", Job: "Backend Engineer (Go)"},
	}
)

// InteractionsSeeder records some views and applications so the history
// signals have something to work with.
type InteractionsSeeder struct{}

func (InteractionsSeeder) Name() string { return "interactions" }

func (InteractionsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "job_views", "id", "job_id", "job_seeker_id"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "applications", "id", "job_id", "job_seeker_id"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, v := range demoViews {
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_views (id, job_id, job_seeker_id) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
				stableID("job_views", v.Seeker+"|"+v.Job), stableID("jobs", v.Job), stableID("users", v.Seeker),
			); err != nil {
				return err
			}
		}
		for _, a := range demoApplications {
			if _, err := tx.Exec(ctx,
				`INSERT INTO applications (id, job_id, job_seeker_id) VALUES ($1, $2, $3) ON CONFLICT (job_seeker_id, job_id) DO NOTHING`,
				stableID("applications", a.Seeker+"|"+a.Job), stableID("jobs", a.Job), stableID("users", a.Seeker),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
