package main

import (
	"jobfinder/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Mirror the open job catalog into the local search index",
	Long: `Mirror the open job catalog into the local search index.

A running server refreshes its own index before every batch and holds the
index lock, so this command fails fast while one is up.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return withContainer(ctx, app.ContainerOptions{}, func(c *app.Container) error {
			n, removed, err := c.RefreshIndex(ctx)
			if err != nil {
				return err
			}
			c.Logger.Info("reindex done", zap.Int("jobs", n), zap.Int("removed", removed))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
