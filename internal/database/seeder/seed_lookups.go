package seeder

import (
	"context"

	"jobfinder/internal/database"
	"jobfinder/internal/repository"
)

var (
	demoCategories = []string{"Software Engineering", "Data", "Design", "Marketing"}
	demoLevels     = []string{"Internship", "Entry Level", "Mid Level", "High Level"}
	demoJobTypes   = []string{"Full-time", "Part-time", "Contract"}
)

const roleEmployer = "EMPLOYER"

// LookupsSeeder fills roles, categories, job levels and job types.
type LookupsSeeder struct{}

func (LookupsSeeder) Name() string { return "lookups" }

func (LookupsSeeder) Run(ctx context.Context, db database.DB) error {
	tables := map[string][]string{
		"roles":      {repository.RoleJobSeeker, roleEmployer},
		"categories": demoCategories,
		"job_levels": demoLevels,
		"job_types":  demoJobTypes,
	}
	for table := range tables {
		if err := EnsureTableColumns(ctx, db, table, "id", "name"); err != nil {
			return err
		}
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, table := range []string{"roles", "categories", "job_levels", "job_types"} {
			for _, name := range tables[table] {
				if _, err := tx.Exec(ctx,
					`INSERT INTO `+table+` (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
					stableID(table, name), name,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
