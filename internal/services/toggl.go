// Toggl Track API v9 client and entity group adapters.
//
// Wire types mirror https://engineering.toggl.com/docs/api/ responses; only
// the fields the engine consumes are declared.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ttx/internal/models"
)

// timeEntryEpochYear is the first year either tool can hold data; time entry
// fetches iterate year windows from here through the current year.
const timeEntryEpochYear = 2010

// TogglClient wraps the paced [Client] with Toggl-specific calls.
type TogglClient struct {
	api *Client
}

// NewTogglClient creates a TogglClient on top of the shared call surface.
func NewTogglClient(api *Client) *TogglClient {
	return &TogglClient{api: api}
}

type togglWorkspace struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type togglNamed struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	Name        string `json:"name"`
}

type togglProject struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
	ClientID    *int64 `json:"client_id"`
	Billable    bool   `json:"billable"`
}

type togglTask struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	ProjectID   int64  `json:"project_id"`
	Name        string `json:"name"`
}

type togglUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

type togglGroup struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	Name        string `json:"name"`
}

type togglTimeEntry struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	ProjectID   *int64     `json:"project_id"`
	TaskID      *int64     `json:"task_id"`
	UserID      int64      `json:"user_id"`
	Description string     `json:"description"`
	TagIDs      []int64    `json:"tag_ids"`
	Billable    bool       `json:"billable"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
}

func togglID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func togglOptionalID(id *int64) string {
	if id == nil {
		return ""
	}
	return togglID(*id)
}

// Workspaces lists every workspace visible to the authenticated account.
func (c *TogglClient) Workspaces(ctx context.Context) ([]togglWorkspace, error) {
	var out []togglWorkspace
	if err := c.api.Get(ctx, models.ToolToggl, "/me/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TimeEntries lists entries that started inside [from, to). The endpoint is
// scoped to the calling user and spans all workspaces; callers filter.
func (c *TogglClient) TimeEntries(ctx context.Context, from, to time.Time) ([]togglTimeEntry, error) {
	query := url.Values{}
	query.Set("start_date", from.Format("2006-01-02"))
	query.Set("end_date", to.Format("2006-01-02"))

	var out []togglTimeEntry
	if err := c.api.Get(ctx, models.ToolToggl, "/me/time_entries", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// listInWorkspace fetches one bulk (non-paginated) workspace-scoped listing.
func listInWorkspace[T any](ctx context.Context, c *TogglClient, workspaceID, resource string) ([]T, error) {
	var out []T
	path := fmt.Sprintf("/workspaces/%s/%s", workspaceID, resource)
	if err := c.api.Get(ctx, models.ToolToggl, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TogglClient) deleteInWorkspace(ctx context.Context, workspaceID, resource, id string) error {
	return c.api.Delete(ctx, models.ToolToggl, fmt.Sprintf("/workspaces/%s/%s/%s", workspaceID, resource, id))
}

// togglAdapters builds the adapter set for the Toggl side. Toggl is the
// migration source: adapters fetch and delete, none create. Workspaces
// additionally cannot be deleted through the API, so that adapter is
// fetch-only and the missing capability surfaces as an explicit constraint.
func togglAdapters(c *TogglClient) []GroupAdapter {
	return []GroupAdapter{
		&togglWorkspacesAdapter{c},
		&togglClientsAdapter{c},
		&togglTagsAdapter{c},
		&togglProjectsAdapter{c},
		&togglTasksAdapter{c},
		&togglUsersAdapter{c},
		&togglUserGroupsAdapter{c},
		&togglTimeEntriesAdapter{c},
	}
}

type togglWorkspacesAdapter struct{ c *TogglClient }

func (a *togglWorkspacesAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglWorkspacesAdapter) Group() models.EntityGroup { return models.Workspaces }

func (a *togglWorkspacesAdapter) FetchAll(ctx context.Context, _ string) ([]*models.Record, error) {
	wire, err := a.c.Workspaces(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:    togglID(w.ID),
			Group: models.Workspaces,
			Name:  w.Name,
		})
	}
	return records, nil
}

type togglClientsAdapter struct{ c *TogglClient }

func (a *togglClientsAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglClientsAdapter) Group() models.EntityGroup { return models.Clients }

func (a *togglClientsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := listInWorkspace[togglNamed](ctx, a.c, workspaceID, "clients")
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          togglID(w.ID),
			WorkspaceID: workspaceID,
			Group:       models.Clients,
			Name:        w.Name,
			Included:    true,
		})
	}
	return records, nil
}

func (a *togglClientsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.deleteInWorkspace(ctx, rec.WorkspaceID, "clients", rec.ID)
}

type togglTagsAdapter struct{ c *TogglClient }

func (a *togglTagsAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglTagsAdapter) Group() models.EntityGroup { return models.Tags }

func (a *togglTagsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := listInWorkspace[togglNamed](ctx, a.c, workspaceID, "tags")
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          togglID(w.ID),
			WorkspaceID: workspaceID,
			Group:       models.Tags,
			Name:        w.Name,
			Included:    true,
		})
	}
	return records, nil
}

func (a *togglTagsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.deleteInWorkspace(ctx, rec.WorkspaceID, "tags", rec.ID)
}

type togglProjectsAdapter struct{ c *TogglClient }

func (a *togglProjectsAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglProjectsAdapter) Group() models.EntityGroup { return models.Projects }

func (a *togglProjectsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := listInWorkspace[togglProject](ctx, a.c, workspaceID, "projects")
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          togglID(w.ID),
			WorkspaceID: workspaceID,
			Group:       models.Projects,
			Name:        w.Name,
			ClientID:    togglOptionalID(w.ClientID),
			Billable:    w.Billable,
			Included:    true,
		})
	}
	return records, nil
}

func (a *togglProjectsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.deleteInWorkspace(ctx, rec.WorkspaceID, "projects", rec.ID)
}

type togglTasksAdapter struct{ c *TogglClient }

func (a *togglTasksAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglTasksAdapter) Group() models.EntityGroup { return models.Tasks }

func (a *togglTasksAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := listInWorkspace[togglTask](ctx, a.c, workspaceID, "tasks")
	if err != nil {
		// Tasks require a paid Toggl plan; the API answers 403 on free
		// workspaces, which is "no tasks", not a failure.
		if StatusOf(err) == http.StatusForbidden {
			return nil, nil
		}
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          togglID(w.ID),
			WorkspaceID: workspaceID,
			Group:       models.Tasks,
			Name:        w.Name,
			ProjectID:   togglID(w.ProjectID),
			Included:    true,
		})
	}
	return records, nil
}

func (a *togglTasksAdapter) Delete(ctx context.Context, rec *models.Record) error {
	path := fmt.Sprintf("/workspaces/%s/projects/%s/tasks/%s", rec.WorkspaceID, rec.ProjectID, rec.ID)
	return a.c.api.Delete(ctx, models.ToolToggl, path)
}

type togglUsersAdapter struct{ c *TogglClient }

func (a *togglUsersAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglUsersAdapter) Group() models.EntityGroup { return models.Users }

func (a *togglUsersAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := listInWorkspace[togglUser](ctx, a.c, workspaceID, "users")
	if err != nil {
		// Membership listing is admin-only; 403 on a workspace the account
		// does not own means "no visible users".
		if StatusOf(err) == http.StatusForbidden {
			return nil, nil
		}
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          togglID(w.ID),
			WorkspaceID: workspaceID,
			Group:       models.Users,
			Name:        w.Fullname,
			Email:       w.Email,
			Included:    true,
		})
	}
	return records, nil
}

func (a *togglUsersAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.deleteInWorkspace(ctx, rec.WorkspaceID, "workspace_users", rec.ID)
}

type togglUserGroupsAdapter struct{ c *TogglClient }

func (a *togglUserGroupsAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglUserGroupsAdapter) Group() models.EntityGroup { return models.UserGroups }

func (a *togglUserGroupsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := listInWorkspace[togglGroup](ctx, a.c, workspaceID, "groups")
	if err != nil {
		if StatusOf(err) == http.StatusForbidden {
			return nil, nil
		}
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          togglID(w.ID),
			WorkspaceID: workspaceID,
			Group:       models.UserGroups,
			Name:        w.Name,
			Included:    true,
		})
	}
	return records, nil
}

func (a *togglUserGroupsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.deleteInWorkspace(ctx, rec.WorkspaceID, "groups", rec.ID)
}

type togglTimeEntriesAdapter struct{ c *TogglClient }

func (a *togglTimeEntriesAdapter) Tool() models.ToolName     { return models.ToolToggl }
func (a *togglTimeEntriesAdapter) Group() models.EntityGroup { return models.TimeEntries }

// FetchAll iterates year windows from the epoch through the current year,
// because the listing endpoint scopes by date range. Entries still running
// (no stop time) are skipped: an open entry cannot be recreated faithfully.
func (a *togglTimeEntriesAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	var records []*models.Record

	for year := timeEntryEpochYear; year <= time.Now().UTC().Year(); year++ {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

		wire, err := a.c.TimeEntries(ctx, from, to)
		if err != nil {
			return nil, err
		}

		for _, w := range wire {
			if togglID(w.WorkspaceID) != workspaceID || w.Stop == nil {
				continue
			}
			tagIDs := make([]string, 0, len(w.TagIDs))
			for _, id := range w.TagIDs {
				tagIDs = append(tagIDs, togglID(id))
			}
			records = append(records, &models.Record{
				ID:          togglID(w.ID),
				WorkspaceID: workspaceID,
				Group:       models.TimeEntries,
				Description: w.Description,
				Start:       w.Start,
				End:         *w.Stop,
				Billable:    w.Billable,
				ProjectID:   togglOptionalID(w.ProjectID),
				TaskID:      togglOptionalID(w.TaskID),
				TagIDs:      tagIDs,
				UserID:      togglID(w.UserID),
				Included:    true,
			})
		}
	}

	return records, nil
}

func (a *togglTimeEntriesAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.deleteInWorkspace(ctx, rec.WorkspaceID, "time_entries", rec.ID)
}
