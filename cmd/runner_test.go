package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"ttx/internal/models"
	"ttx/internal/repositories"
	"ttx/internal/shared"
	"ttx/internal/tasks"
	ttxtest "ttx/internal/testing"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Local.Enabled = true
	config.Local.TogglURL = "http://toggl.local"
	config.Local.ClockifyURL = "http://clockify.local"
	config.Database.Path = filepath.Join(t.TempDir(), "ttx.db")
	return config
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with provided dependencies", func(t *testing.T) {
			config := testConfig(t)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})
	})

	t.Run("SelectWorkspaces Requires A Selection Flag", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}})

		if err := runner.selectWorkspaces(nil, false); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("WriteJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: output})

		if err := runner.writeJSON(map[string]string{"tool": "toggl"}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if got := output.String(); got != "{\"tool\":\"toggl\"}\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})
}

func TestWorkspacesCommand(t *testing.T) {
	transport := ttxtest.NewScriptedTransport(
		ttxtest.Step{Status: 200, Body: `[{"id":7,"name":"Acme"},{"id":8,"name":"Initech"}]`},
		ttxtest.Step{Status: 200, Body: `[{"id":"cw1","name":"Acme"}]`},
	)
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     testConfig(t),
		Output:     output,
		HTTPClient: &http.Client{Transport: transport},
	})

	cmd := workspacesCommand(runner)
	if err := cmd.Run(context.Background(), []string{"workspaces"}); err != nil {
		t.Fatalf("workspaces command failed: %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "✓ Acme (clockify: cw1)") {
		t.Errorf("linked workspace not reported:\n%s", got)
	}
	if !strings.Contains(got, "✗ Initech") {
		t.Errorf("unlinked workspace not reported:\n%s", got)
	}
	if transport.Calls() != 2 {
		t.Errorf("expected 2 API calls, got %d", transport.Calls())
	}
}

func TestRecordedRuns(t *testing.T) {
	t.Run("Persists Progress And Outcome", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}})
		defer runner.Close()

		err := runner.recorded("fetch", func(runs *repositories.RunRepository, runID string) error {
			progress, stop := runner.consumeProgress(runs, runID, nil)
			progress <- tasks.ProgressUpdate{Group: models.Clients, Completed: 2, Total: 2}
			stop()
			return nil
		})
		if err != nil {
			t.Fatalf("recorded run failed: %v", err)
		}

		list, err := runner.runHistory().List(0)
		if err != nil {
			t.Fatalf("listing runs failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 run, got %d", len(list))
		}
		run := list[0]
		if run.Operation != "fetch" || run.Status != "success" {
			t.Errorf("unexpected run record: %+v", run)
		}
		if len(run.Groups) != 1 || run.Groups[0].Group != "clients" || run.Groups[0].Completed != 2 {
			t.Errorf("group progress not persisted: %+v", run.Groups)
		}
	})

	t.Run("Records Failures", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}})
		defer runner.Close()

		wantErr := errors.New("workspace gone")
		err := runner.recorded("delete", func(*repositories.RunRepository, string) error {
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("recorded should return the operation error, got %v", err)
		}

		list, err := runner.runHistory().List(0)
		if err != nil {
			t.Fatalf("listing runs failed: %v", err)
		}
		if len(list) != 1 || list[0].Status != "error" || list[0].Error != "workspace gone" {
			t.Errorf("failure not recorded: %+v", list)
		}
	})
}
