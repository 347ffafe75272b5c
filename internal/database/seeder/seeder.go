// Package seeder loads a small demo data set: employers, seekers with
// profiles, open jobs and some interaction history.
package seeder

import (
	"context"

	"jobfinder/internal/database"

	"github.com/google/uuid"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

var demoNamespace = uuid.MustParse("5b8f3c1e-2d7a-4f9b-9c61-0e4a7d2b8f10")

// stableID gives every demo row the same id on every run so reseeding is a
// no-op.
func stableID(kind, name string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(kind+":"+name))
}
