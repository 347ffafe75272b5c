package seeder

import (
	"context"

	"jobfinder/internal/database"
	"jobfinder/internal/repository"
)

type demoSeeker struct {
	Email       string
	Location    string
	Years       int
	Description string
}

var (
	demoEmployers = []string{"hr@skillsync-labs.example", "talent@cloudkita.example"}

	demoSeekers = []demoSeeker{
		{Email: "rani@example.com", Location: "Jakarta", Years: 2, Description: "Backend developer working with Go, PostgreSQL and REST APIs."},
		{Email: "bayu@example.com", Location: "Bandung", Years: 8, Description: "Data engineer building pipelines and analytics warehouses."},
		{Email: "sari@example.com", Location: "Remote", Years: 0, Description: "Design student looking for a product design internship."},
	}
)

// UsersSeeder creates demo employers and seekers. Seekers get a profile row.
type UsersSeeder struct{}

func (UsersSeeder) Name() string { return "users" }

func (UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "email", "role_id"); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "user_detail", "id", "user_id", "location", "years_experience", "description"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, email := range demoEmployers {
			if err := insertUser(ctx, tx, email, roleEmployer); err != nil {
				return err
			}
		}
		for _, s := range demoSeekers {
			if err := insertUser(ctx, tx, s.Email, repository.RoleJobSeeker); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_detail (id, user_id, location, years_experience, description)
				 VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id) DO NOTHING`,
				stableID("user_detail", s.Email), stableID("users", s.Email), s.Location, s.Years, s.Description,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertUser(ctx context.Context, tx database.Tx, email, role string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO users (id, email, role_id) VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING`,
		stableID("users", email), email, stableID("roles", role),
	)
	return err
}
