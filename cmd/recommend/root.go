package main

import (
	"context"
	"fmt"

	"jobfinder/internal/app"
	"jobfinder/internal/config"
	"jobfinder/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:          "recommend",
		Short:        "recommend runs the job recommendation batch outside the server",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// withContainer loads config, wires the container and hands it to fn.
func withContainer(ctx context.Context, opts app.ContainerOptions, fn func(c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	lg, err := logger.New(jsonLog, debug || cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	c, err := app.NewContainer(ctx, cfg, lg, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			lg.Warn("close container", zap.Error(err))
		}
	}()

	return fn(c)
}
