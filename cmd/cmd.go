// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the run-history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

func workspacesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "workspaces",
		Aliases: []string{"ws"},
		Usage:   "List Toggl workspaces and their Clockify matches",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Workspaces,
	}
}

func fetchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch and link every entity group from both tools",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace name to include (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include every workspace",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save the fetched records locally",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Export format: csv, json, or text",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Base path for the export file",
			},
		},
		Action: r.Fetch,
	}
}

func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Transfer selected workspaces from Toggl to Clockify",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace name to include (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include every workspace",
			},
		},
		Action: r.Transfer,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete the selected workspaces' records from Toggl",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "workspace",
				Aliases: []string{"w"},
				Usage:   "Workspace name to include (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include every workspace",
			},
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Skip the confirmation prompt",
			},
		},
		Action: r.Delete,
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive workspace picker and transfer",
		Action: r.TUI,
	}
}
