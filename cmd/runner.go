package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"ttx/internal/repositories"
	"ttx/internal/services"
	"ttx/internal/shared"
	"ttx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.TransferEngine

	db   *sql.DB
	runs *repositories.RunRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Engine     *tasks.TransferEngine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Engine == nil {
		opts.Engine = buildEngine(opts.Config, opts.HTTPClient, opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     opts.Engine,
	}
}

// buildEngine wires the full service stack: gateway, pacer, retrying client,
// both tool adapters, and the transfer coordinator.
func buildEngine(config *shared.Config, httpClient *http.Client, logger *log.Logger) *tasks.TransferEngine {
	gateway := services.NewGateway(httpClient, config.BaseURL, config.ToolCredentials)
	pacer := services.NewPacer(config.Delay)
	client := services.NewClient(gateway, pacer, services.DefaultMaxAttempts, shared.WithComponent(logger, "api"))

	toggl := services.NewTogglClient(client)
	clockify := services.NewClockifyClient(client, config.Credentials.Clockify.UserID)
	registry := services.NewRegistry(toggl, clockify)

	return tasks.NewTransferEngine(registry, shared.WithComponent(logger, "engine"))
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, workspacesCommand, fetchCommand, transferCommand, deleteCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the run-history database if one was opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
		r.db = nil
		r.runs = nil
	}
}

// checkCredentials validates API credentials for remote operation. Local mode
// talks to development hosts where authentication is not enforced.
func (r *Runner) checkCredentials() error {
	if r.config.Local.Enabled {
		return nil
	}
	return r.config.Validate()
}

// runHistory lazily opens the run-history repository. History is best-effort:
// when the database cannot be opened the runner logs a warning and the
// operation proceeds unrecorded.
func (r *Runner) runHistory() *repositories.RunRepository {
	if r.runs != nil {
		return r.runs
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return nil
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		db.Close()
		return nil
	}

	r.db = db
	r.runs = repositories.NewRunRepository(db)
	return r.runs
}

// recorded wraps one engine operation in a run-history record. History is
// best-effort; the operation runs even when no record could be started.
func (r *Runner) recorded(operation string, fn func(runs *repositories.RunRepository, runID string) error) error {
	runs := r.runHistory()

	var runID string
	if runs != nil {
		if run, err := runs.Begin(operation); err == nil {
			runID = run.ID
		} else {
			r.logger.Warn("failed to record run", "error", err)
		}
	}

	err := fn(runs, runID)

	if runs != nil && runID != "" {
		if ferr := runs.Finish(runID, err); ferr != nil {
			r.logger.Warn("failed to finalize run record", "error", ferr)
		}
	}
	return err
}

// consumeProgress starts a goroutine draining progress updates: each one is
// rendered and its group counters persisted when history is available. The
// returned stop function closes the channel and waits for the drain to end,
// so later output never interleaves with progress lines.
func (r *Runner) consumeProgress(runs *repositories.RunRepository, runID string, render func(tasks.ProgressUpdate)) (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			if render != nil {
				render(update)
			}
			if runs != nil && runID != "" {
				if err := runs.SetGroupProgress(runID, update.Group.String(), update.Completed, update.Total); err != nil {
					r.logger.Debug("failed to record group progress", "error", err)
				}
			}
		}
	}()

	stop := func() {
		close(progress)
		<-done
	}
	return progress, stop
}

// selectWorkspaces fetches source workspaces and marks the requested ones as
// included. Non-interactive commands must name workspaces or pass all.
func (r *Runner) selectWorkspaces(names []string, all bool) error {
	if len(names) == 0 && !all {
		return fmt.Errorf("%w: pass --workspace or --all", shared.ErrMissingArgument)
	}
	return r.engine.SelectWorkspaces(names, all)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
