package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// History lists past runs from the run-history database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	runs := r.runHistory()
	if runs == nil {
		return fmt.Errorf("run history database could not be opened; run 'ttx setup' first")
	}

	list, err := runs.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, true)
	}

	r.writePlainHeader("Run History")
	if len(list) == 0 {
		r.writePlain("No runs recorded yet.\n")
		return nil
	}

	for _, run := range list {
		r.writePlain("%s  %-8s  %-10s  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Operation, run.Status, run.ID)
		if run.Error != "" {
			r.writePlain("    error: %s\n", run.Error)
		}
		for _, g := range run.Groups {
			r.writePlain("    %s: %d/%d\n", g.Group, g.Completed, g.Total)
		}
	}
	return nil
}
