package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"ttx/internal/formatter"
	"ttx/internal/models"
	"ttx/internal/repositories"
	"ttx/internal/tasks"
)

// Fetch pulls every entity group of the selected workspaces from both tools,
// links them, and prints a summary. With --save the source records are
// exported to a file.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	if err := r.checkCredentials(); err != nil {
		return err
	}
	if _, err := r.engine.FetchWorkspaces(ctx, true); err != nil {
		return err
	}
	if err := r.selectWorkspaces(cmd.StringSlice("workspace"), cmd.Bool("all")); err != nil {
		return err
	}

	r.writePlain("Fetching records from both tools...\n\n")

	return r.recorded("fetch", func(runs *repositories.RunRepository, runID string) error {
		progress, stop := r.consumeProgress(runs, runID, func(update tasks.ProgressUpdate) {
			r.writePlain("📥 %s\n", update.Message)
		})
		err := r.engine.FetchAll(ctx, progress)
		stop()
		if err != nil {
			return err
		}

		summary, err := formatter.ExportToText(r.sourceSnapshot())
		if err != nil {
			return err
		}
		r.writePlain("\n%s", summary)

		if cmd.Bool("save") {
			path, err := formatter.WriteExport(r.sourceSnapshot(), cmd.String("output"), cmd.String("format"))
			if err != nil {
				return err
			}
			r.writePlain("\nSaved to %s\n", path)
		}
		return nil
	})
}

// sourceSnapshot builds the exportable view of the fetched source records.
func (r *Runner) sourceSnapshot() *formatter.Snapshot {
	byGroup := make(map[models.EntityGroup][]*models.Record)
	for _, group := range models.FetchOrder {
		byGroup[group] = r.engine.State().Slice(models.MappingSource, group)
	}
	return formatter.NewSnapshot(models.ToolToggl.String(), r.engine.State().LastFetch(), byGroup)
}
