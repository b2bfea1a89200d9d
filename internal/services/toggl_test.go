package services

import (
	"context"
	"testing"
	"time"

	"ttx/internal/models"
	ttxtest "ttx/internal/testing"
)

func newTestToggl(transport *ttxtest.ScriptedTransport) *TogglClient {
	return NewTogglClient(newTestClient(transport))
}

// entryYearSteps scripts one response for the first fetch window and an empty
// body for every later year window.
func entryYearSteps(firstWindowBody string) []ttxtest.Step {
	years := time.Now().UTC().Year() - timeEntryEpochYear + 1
	steps := make([]ttxtest.Step, years)
	steps[0] = ttxtest.Step{Status: 200, Body: firstWindowBody}
	for i := 1; i < years; i++ {
		steps[i] = ttxtest.Step{Status: 200, Body: `[]`}
	}
	return steps
}

func TestTogglAdapters(t *testing.T) {
	ctx := context.Background()

	t.Run("Workspaces", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(
			ttxtest.Step{Status: 200, Body: `[{"id":7,"name":"Acme"}]`},
		)
		adapter := &togglWorkspacesAdapter{newTestToggl(transport)}

		records, err := adapter.FetchAll(ctx, "")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 workspace, got %d", len(records))
		}
		w := records[0]
		if w.ID != "7" || w.Name != "Acme" || w.Group != models.Workspaces {
			t.Errorf("unexpected workspace record: %+v", w)
		}
		if w.Included {
			t.Error("workspaces require explicit opt-in")
		}
		if got := transport.Requests[0].URL.Path; got != "/me/workspaces" {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("Clients Map Wire Fields", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(
			ttxtest.Step{Status: 200, Body: `[{"id":11,"wid":7,"name":"Globex"}]`},
		)
		adapter := &togglClientsAdapter{newTestToggl(transport)}

		records, err := adapter.FetchAll(ctx, "7")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 client, got %d", len(records))
		}
		c := records[0]
		if c.ID != "11" || c.WorkspaceID != "7" || c.Name != "Globex" {
			t.Errorf("unexpected client record: %+v", c)
		}
		if !c.Included {
			t.Error("fetched clients default to included")
		}
		if got := transport.Requests[0].URL.Path; got != "/workspaces/7/clients" {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("Projects Optional Client", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{
			Status: 200,
			Body: `[{"id":3,"workspace_id":7,"name":"Website","client_id":11,"billable":true},
			        {"id":4,"workspace_id":7,"name":"Internal","client_id":null,"billable":false}]`,
		})
		adapter := &togglProjectsAdapter{newTestToggl(transport)}

		records, err := adapter.FetchAll(ctx, "7")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 projects, got %d", len(records))
		}
		if records[0].ClientID != "11" || !records[0].Billable {
			t.Errorf("unexpected first project: %+v", records[0])
		}
		if records[1].ClientID != "" {
			t.Errorf("null client_id should map to empty, got %q", records[1].ClientID)
		}
	})

	t.Run("Tasks Forbidden Means None", func(t *testing.T) {
		// Free workspaces answer 403 on the tasks endpoint.
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 403})
		adapter := &togglTasksAdapter{newTestToggl(transport)}

		records, err := adapter.FetchAll(ctx, "7")
		if err != nil {
			t.Fatalf("403 must not surface as an error, got %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no tasks, got %d", len(records))
		}
		if transport.Calls() != 1 {
			t.Errorf("403 must not be retried, got %d calls", transport.Calls())
		}
	})

	t.Run("Users Forbidden Means None", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 403})
		adapter := &togglUsersAdapter{newTestToggl(transport)}

		records, err := adapter.FetchAll(ctx, "7")
		if err != nil {
			t.Fatalf("403 must not surface as an error, got %v", err)
		}
		if records != nil {
			t.Errorf("expected no users, got %d", len(records))
		}
	})

	t.Run("Server Error Propagates", func(t *testing.T) {
		// Only 403 is swallowed; everything else fails the fetch.
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 500})
		adapter := &togglUsersAdapter{newTestToggl(transport)}

		if _, err := adapter.FetchAll(ctx, "7"); err == nil {
			t.Fatal("expected the 500 to propagate")
		}
		if transport.Calls() != 1 {
			t.Errorf("500 must not be retried, got %d calls", transport.Calls())
		}
	})

	t.Run("Time Entries Windowed Fetch", func(t *testing.T) {
		// The endpoint spans all workspaces and skips entries still running.
		body := `[{"id":501,"workspace_id":7,"project_id":3,"task_id":null,"user_id":9,
		           "description":"Deploy","tag_ids":[21,22],"billable":true,
		           "start":"2010-03-01T09:00:00Z","stop":"2010-03-01T10:00:00Z"},
		          {"id":502,"workspace_id":8,"user_id":9,"description":"Elsewhere",
		           "start":"2010-03-02T09:00:00Z","stop":"2010-03-02T10:00:00Z"},
		          {"id":503,"workspace_id":7,"user_id":9,"description":"Still running",
		           "start":"2010-03-03T09:00:00Z","stop":null}]`
		transport := ttxtest.NewScriptedTransport(entryYearSteps(body)...)
		adapter := &togglTimeEntriesAdapter{newTestToggl(transport)}

		records, err := adapter.FetchAll(ctx, "7")
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 entry after filtering, got %d", len(records))
		}
		e := records[0]
		if e.ID != "501" || e.ProjectID != "3" || e.TaskID != "" || e.UserID != "9" {
			t.Errorf("unexpected entry record: %+v", e)
		}
		if len(e.TagIDs) != 2 || e.TagIDs[0] != "21" || e.TagIDs[1] != "22" {
			t.Errorf("unexpected tag ids: %v", e.TagIDs)
		}
		if e.End.Sub(e.Start) != time.Hour {
			t.Errorf("unexpected interval: %v to %v", e.Start, e.End)
		}

		years := time.Now().UTC().Year() - timeEntryEpochYear + 1
		if transport.Calls() != years {
			t.Errorf("expected one request per year window, got %d of %d", transport.Calls(), years)
		}
		query := transport.Requests[0].URL.Query()
		if query.Get("start_date") != "2010-01-01" || query.Get("end_date") != "2011-01-01" {
			t.Errorf("unexpected first window: %s", transport.Requests[0].URL.RawQuery)
		}
	})

	t.Run("Task Delete Uses Project Scoped Path", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 200})
		adapter := &togglTasksAdapter{newTestToggl(transport)}

		rec := &models.Record{ID: "9", WorkspaceID: "7", ProjectID: "3", Group: models.Tasks}
		if err := adapter.Delete(ctx, rec); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		req := transport.Requests[0]
		if req.Method != "DELETE" || req.URL.Path != "/workspaces/7/projects/3/tasks/9" {
			t.Errorf("unexpected request: %s %s", req.Method, req.URL.Path)
		}
	})
}
