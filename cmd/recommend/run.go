package main

import (
	"os/signal"
	"syscall"

	"jobfinder/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recompute recommendations for every seeker once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return withContainer(ctx, app.ContainerOptions{MemIndexFallback: true}, func(c *app.Container) error {
			sum, err := c.Scheduler.RunDaily(ctx)
			if err != nil {
				return err
			}
			c.Logger.Info("batch done",
				zap.Int("seekers", sum.Seekers),
				zap.Int("succeeded", sum.Succeeded),
				zap.Int("failed", sum.Failed),
				zap.Bool("skipped", sum.Skipped),
				zap.Duration("duration", sum.Duration),
			)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
