package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VAshish07243/Chai-Shots/internal/app"
	"github.com/VAshish07243/Chai-Shots/internal/seed"
)

func newSeedCommand(cc *commandContext) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, topics and programs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := loadSeedFile(file)
			if err != nil {
				return err
			}
			return cc.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Migrate(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				sum, err := seed.NewSeeder(a.Store.DB(), a.Log).Load(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Users", "Topics", "Programs", "Skipped", "Terms", "Lessons", "Scheduled"},
					[][]string{{
						itoa(sum.Users), itoa(sum.Topics), itoa(sum.Programs), itoa(sum.SkippedPrograms),
						itoa(sum.Terms), itoa(sum.Lessons), itoa(sum.Scheduled),
					}},
					nil,
				))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed YAML file (defaults to the built-in demo catalog)")
	return cmd
}

func loadSeedFile(path string) (*seed.File, error) {
	if path == "" {
		return seed.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return seed.Parse(raw)
}
