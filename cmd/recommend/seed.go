package main

import (
	"jobfinder/internal/app"
	"jobfinder/internal/database/seeder"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo employers, seekers, jobs and interactions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withContainer(ctx, app.ContainerOptions{MemIndexFallback: true}, func(c *app.Container) error {
			r := seeder.Runner{Seeders: seeder.Defaults(), Logger: c.Logger}
			if err := r.Run(ctx, c.DB); err != nil {
				return err
			}
			_, _, err := c.RefreshIndex(ctx)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
