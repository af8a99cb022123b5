package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VAshish07243/Chai-Shots/internal/app"
)

func newServeCommand(cc *commandContext) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the authoring and catalog HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cc.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if migrate {
					if err := a.Migrate(); err != nil {
						return fmt.Errorf("migrate: %w", err)
					}
				}
				return a.RunServer(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply schema migrations before serving")
	return cmd
}

func newWorkerCommand(cc *commandContext) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the publication scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cc.withApp(cmd, func(ctx context.Context, a *app.App) error {
				w := a.NewWorker()
				if !once {
					return w.Run(ctx)
				}
				rep, err := w.RunOnce(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "found=%d published=%d programs_published=%d skipped=%d stale=%d in %s\n",
					rep.Found, rep.Published, rep.ProgramsPublished, rep.SkippedTotal(), len(rep.Stale), rep.Duration)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle and exit")
	return cmd
}

func newAllCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the HTTP API and the scheduler in one process",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cc.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Migrate(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				return a.RunAll(ctx)
			})
		},
	}
}

func newMigrateCommand(cc *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cc.withApp(cmd, func(_ context.Context, a *app.App) error {
				if err := a.Migrate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}
