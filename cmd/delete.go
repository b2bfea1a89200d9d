package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"ttx/internal/models"
	"ttx/internal/repositories"
	"ttx/internal/tasks"
)

// Delete removes the selected workspaces' records from Toggl, children first.
// Destructive, so it refuses to run without --yes.
func (r *Runner) Delete(ctx context.Context, cmd *cli.Command) error {
	if err := r.checkCredentials(); err != nil {
		return err
	}
	if _, err := r.engine.FetchWorkspaces(ctx, false); err != nil {
		return err
	}
	if err := r.selectWorkspaces(cmd.StringSlice("workspace"), cmd.Bool("all")); err != nil {
		return err
	}

	included := r.engine.State().IncludedWorkspaces()
	if !cmd.Bool("yes") {
		r.writePlain("This would permanently delete all records in:\n")
		for _, w := range included {
			r.writePlain("  • %s\n", w.Name)
		}
		r.writePlain("\nRe-run with --yes to confirm. The workspaces themselves stay; Toggl does not allow deleting them over the API.\n")
		return nil
	}

	r.writePlain("Deleting records from Toggl...\n\n")

	return r.recorded("delete", func(runs *repositories.RunRepository, runID string) error {
		progress, stop := r.consumeProgress(runs, runID, func(update tasks.ProgressUpdate) {
			switch update.Operation {
			case tasks.OpFetch:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.OpDelete:
				r.writePlain("🗑  %s\n", update.Message)
			}
		})
		err := r.engine.DeleteAll(ctx, progress)
		stop()
		if err != nil {
			return err
		}

		r.writePlain("\n")
		r.writePlainHeader("Delete Complete!")
		for _, group := range models.DeleteOrder {
			p := r.engine.Progress(group)
			if p.Total == 0 {
				continue
			}
			r.writePlain("%s: %d/%d\n", group, p.Completed, p.Total)
		}
		return nil
	})
}
