package main

import (
	"fmt"

	"jobfinder/internal/app"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seekerCmd = &cobra.Command{
	Use:   "seeker <uuid>",
	Short: "Recompute recommendations for a single seeker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid seeker id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		return withContainer(ctx, app.ContainerOptions{MemIndexFallback: true}, func(c *app.Container) error {
			if _, _, err := c.RefreshIndex(ctx); err != nil {
				return err
			}
			n, err := c.Generator.GenerateForSeeker(ctx, id)
			if err != nil {
				return err
			}
			c.Logger.Info("seeker done", zap.String("seeker_id", id.String()), zap.Int("persisted", n))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seekerCmd)
}
