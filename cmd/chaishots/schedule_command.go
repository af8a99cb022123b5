package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/VAshish07243/Chai-Shots/internal/app"
	"github.com/VAshish07243/Chai-Shots/internal/domain/content"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/dbctx"
	"github.com/VAshish07243/Chai-Shots/internal/publication"
)

func newScheduleCommand(cc *commandContext) *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect scheduled lessons",
	}
	scheduleCmd.AddCommand(newScheduleListCommand(cc))
	return scheduleCmd
}

func newScheduleListCommand(cc *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scheduled lessons, soonest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cc.withApp(cmd, func(ctx context.Context, a *app.App) error {
				lessons, err := a.Repos.Lesson.ListScheduled(dbctx.Context{Ctx: ctx}, limit)
				if err != nil {
					return err
				}
				if len(lessons) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No scheduled lessons")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(scheduleHeaders, buildScheduleRows(lessons, time.Now()), nil))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum lessons to show")
	return cmd
}

var scheduleHeaders = []string{"Lesson", "Title", "Program", "Term", "Publish At", "Due", "Assets"}

// buildScheduleRows flags lessons whose instant has passed and whether they
// would pass the publish check right now.
func buildScheduleRows(lessons []*content.Lesson, now time.Time) [][]string {
	rows := make([][]string, 0, len(lessons))
	for _, l := range lessons {
		publishAt, due := "-", "no"
		if l.PublishAt != nil {
			publishAt = l.PublishAt.UTC().Format(time.RFC3339)
			if !l.PublishAt.After(now) {
				due = "yes"
			}
		}
		program, term := "-", "-"
		if l.Term != nil {
			program = l.Term.ProgramID.String()
			term = itoa(l.Term.TermNumber)
		}
		assets := "ok"
		if missing := publication.MissingThumbnails(publication.SnapshotOf(l)); len(missing) > 0 {
			assets = fmt.Sprintf("missing %v", missing)
		}
		rows = append(rows, []string{
			l.ID.String(), l.Title, program, term, publishAt, due, assets,
		})
	}
	return rows
}
