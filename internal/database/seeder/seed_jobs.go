package seeder

import (
	"context"

	"jobfinder/internal/database"
)

type demoJob struct {
	Title       string
	Employer    string
	Location    string
	Category    string
	Level       string
	JobType     string
	Description string
}

var demoJobs = []demoJob{
	{
		Title:       "Backend Engineer (Go)",
		Employer:    "hr@skillsync-labs.example",
		Location:    "Jakarta",
		Category:    "Software Engineering",
		Level:       "Entry Level",
		JobType:     "Full-time",
		Description: "Build and maintain Go services, REST APIs and PostgreSQL backed systems.",
	},
	{
		Title:       "Senior Platform Engineer",
		Employer:    "talent@cloudkita.example",
		Location:    "Remote",
		Category:    "Software Engineering",
		Level:       "High Level",
		JobType:     "Full-time",
		Description: "Operate Kubernetes clusters and CI/CD for production workloads.",
	},
	{
		Title:       "Data Engineer",
		Employer:    "talent@cloudkita.example",
		Location:    "Bandung",
		Category:    "Data",
		Level:       "High Level",
		JobType:     "Full-time",
		Description: "Own batch pipelines and the analytics warehouse.",
	},
	{
		Title:       "Product Design Intern",
		Employer:    "hr@skillsync-labs.example",
		Location:    "Remote",
		Category:    "Design",
		Level:       "Internship",
		JobType:     "Part-time",
		Description: "Help the design team with user research and prototypes.",
	},
	{
		Title:       "Growth Marketer",
		Employer:    "hr@skillsync-labs.example",
		Location:    "Surabaya",
		Category:    "Marketing",
		Level:       "Mid Level",
		JobType:     "Contract",
		Description: "Plan campaigns and measure acquisition funnels.",
	},
}

type JobsSeeder struct{}

func (JobsSeeder) Name() string { return "jobs" }

func (JobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "jobs",
		"id",
		"title",
		"description",
		"location",
		"employer_id",
		"category_id",
		"job_level_id",
		"job_type_id",
		"active",
	); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, j := range demoJobs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO jobs (id, title, description, location, employer_id, category_id, job_level_id, job_type_id, active)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE) ON CONFLICT (id) DO NOTHING`,
				stableID("jobs", j.Title),
				j.Title,
				j.Description,
				j.Location,
				stableID("users", j.Employer),
				stableID("categories", j.Category),
				stableID("job_levels", j.Level),
				stableID("job_types", j.JobType),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
