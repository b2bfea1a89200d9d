package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"ttx/internal/models"
	"ttx/internal/repositories"
	"ttx/internal/tasks"
)

// Transfer runs a full Toggl → Clockify sync for the selected workspaces:
// fetch both sides, link, then create everything missing on Clockify.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	if err := r.checkCredentials(); err != nil {
		return err
	}
	if _, err := r.engine.FetchWorkspaces(ctx, true); err != nil {
		return err
	}
	if err := r.selectWorkspaces(cmd.StringSlice("workspace"), cmd.Bool("all")); err != nil {
		return err
	}

	included := r.engine.State().IncludedWorkspaces()
	r.writePlain("Starting transfer to Clockify...\n")
	for _, w := range included {
		r.writePlain("  • %s\n", w.Name)
	}
	r.writePlain("\n")

	return r.recorded("transfer", func(runs *repositories.RunRepository, runID string) error {
		progress, stop := r.consumeProgress(runs, runID, func(update tasks.ProgressUpdate) {
			switch update.Operation {
			case tasks.OpFetch:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.OpCreate:
				r.writePlain("📝 %s\n", update.Message)
			}
		})

		err := r.engine.FetchAll(ctx, progress)
		if err == nil {
			err = r.engine.CreateAll(ctx, progress)
		}
		stop()
		if err != nil {
			return err
		}

		r.writePlain("\n")
		r.writePlainHeader("Transfer Complete!")
		created := 0
		for _, group := range models.CreateOrder {
			p := r.engine.Progress(group)
			if p.Total == 0 {
				continue
			}
			created += p.Completed
			r.writePlain("%s: %d/%d\n", group, p.Completed, p.Total)
		}
		if created == 0 {
			r.writePlain("Everything was already on Clockify; nothing to create.\n")
		}
		return nil
	})
}
