package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

type workspaceRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ClockifyID string `json:"clockify_id,omitempty"`
}

// Workspaces lists the Toggl workspaces and whether each has a Clockify
// counterpart with the same name.
func (r *Runner) Workspaces(ctx context.Context, cmd *cli.Command) error {
	if err := r.checkCredentials(); err != nil {
		return err
	}

	workspaces, err := r.engine.FetchWorkspaces(ctx, true)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]workspaceRow, 0, len(workspaces))
		for _, w := range workspaces {
			rows = append(rows, workspaceRow{ID: w.ID, Name: w.Name, ClockifyID: w.LinkedID})
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Toggl Workspaces")
	if len(workspaces) == 0 {
		r.writePlain("No workspaces found.\n")
		return nil
	}

	for _, w := range workspaces {
		if w.Linked() {
			r.writePlain("✓ %s (clockify: %s)\n", w.Name, w.LinkedID)
		} else {
			r.writePlain("✗ %s (no clockify workspace with this name)\n", w.Name)
		}
	}
	r.writePlain("\nWorkspaces marked ✗ must be created on Clockify before a transfer.\n")
	return nil
}
