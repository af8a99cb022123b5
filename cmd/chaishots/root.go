package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VAshish07243/Chai-Shots/internal/app"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type commandContext struct {
	configDir string
}

// withApp loads configuration, connects the store and hands a ready App to fn.
// The App is closed when fn returns. SIGINT and SIGTERM cancel ctx.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := app.NewViper(c.configDir)
	if err != nil {
		return err
	}
	log, err := logger.New(v.GetString("LOG_MODE"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg := app.LoadConfig(v, log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		log.Sync()
		return err
	}
	defer a.Close(ctx)
	return fn(ctx, a)
}

func newRootCommand() *cobra.Command {
	cc := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "chaishots",
		Short:         "Chai-Shots content management service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cc.configDir, "config", "c", ".", "Directory holding an optional app.env file")

	rootCmd.AddCommand(newServeCommand(cc))
	rootCmd.AddCommand(newWorkerCommand(cc))
	rootCmd.AddCommand(newAllCommand(cc))
	rootCmd.AddCommand(newMigrateCommand(cc))
	rootCmd.AddCommand(newSeedCommand(cc))
	rootCmd.AddCommand(newScheduleCommand(cc))
	return rootCmd
}
