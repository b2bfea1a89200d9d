// Clockify API v1 client and entity group adapters.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ttx/internal/models"
	"ttx/internal/shared"
)

// ClockifyClient wraps the paced [Client] with Clockify-specific calls.
// userID scopes the time entry listing endpoint, which is user-addressed.
type ClockifyClient struct {
	api    *Client
	userID string
}

// NewClockifyClient creates a ClockifyClient. userID comes from config and is
// only required when fetching time entries.
func NewClockifyClient(api *Client, userID string) *ClockifyClient {
	return &ClockifyClient{api: api, userID: userID}
}

type clockifyWorkspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type clockifyNamed struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
}

type clockifyProject struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	Name        string `json:"name"`
	ClientID    string `json:"clientId"`
	Billable    bool   `json:"billable"`
	Public      bool   `json:"public"`
}

type clockifyTask struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

type clockifyUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type clockifyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type clockifyTimeEntry struct {
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	ProjectID    string           `json:"projectId"`
	TaskID       string           `json:"taskId"`
	TagIDs       []string         `json:"tagIds"`
	Billable     bool             `json:"billable"`
	UserID       string           `json:"userId"`
	TimeInterval clockifyInterval `json:"timeInterval"`
}

// clockifyTimestamp renders the wire format Clockify accepts on writes.
func clockifyTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func (c *ClockifyClient) workspacePath(workspaceID, resource string) string {
	return fmt.Sprintf("/workspaces/%s/%s", workspaceID, resource)
}

// clockifyAdapters builds the adapter set for the Clockify side. Clockify is
// the migration target: every group except workspaces can be created.
// Workspace creation is not available to API-key accounts, so that adapter
// carries no create capability and the engine reports the constraint instead
// of silently skipping it.
func clockifyAdapters(c *ClockifyClient) []GroupAdapter {
	return []GroupAdapter{
		&clockifyWorkspacesAdapter{c},
		&clockifyClientsAdapter{c},
		&clockifyTagsAdapter{c},
		&clockifyProjectsAdapter{c},
		&clockifyTasksAdapter{c},
		&clockifyUsersAdapter{c},
		&clockifyUserGroupsAdapter{c},
		&clockifyTimeEntriesAdapter{c},
	}
}

type clockifyWorkspacesAdapter struct{ c *ClockifyClient }

func (a *clockifyWorkspacesAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyWorkspacesAdapter) Group() models.EntityGroup { return models.Workspaces }

func (a *clockifyWorkspacesAdapter) FetchAll(ctx context.Context, _ string) ([]*models.Record, error) {
	var wire []clockifyWorkspace
	if err := a.c.api.Get(ctx, models.ToolClockify, "/workspaces", nil, &wire); err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:    w.ID,
			Group: models.Workspaces,
			Name:  w.Name,
		})
	}
	return records, nil
}

type clockifyClientsAdapter struct{ c *ClockifyClient }

func (a *clockifyClientsAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyClientsAdapter) Group() models.EntityGroup { return models.Clients }

func (a *clockifyClientsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := FetchAllPages[clockifyNamed](ctx, a.c.api, models.ToolClockify, a.c.workspacePath(workspaceID, "clients"), nil)
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          w.ID,
			WorkspaceID: workspaceID,
			Group:       models.Clients,
			Name:        w.Name,
			Included:    true,
		})
	}
	return records, nil
}

func (a *clockifyClientsAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, _ Resolver) (*models.Record, error) {
	body := map[string]any{"name": rec.Name}
	var created clockifyNamed
	if err := a.c.api.Post(ctx, models.ToolClockify, a.c.workspacePath(targetWorkspaceID, "clients"), body, &created); err != nil {
		return nil, err
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.Clients,
		Name:        created.Name,
		Included:    true,
	}, nil
}

func (a *clockifyClientsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.api.Delete(ctx, models.ToolClockify, a.c.workspacePath(rec.WorkspaceID, "clients")+"/"+rec.ID)
}

type clockifyTagsAdapter struct{ c *ClockifyClient }

func (a *clockifyTagsAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyTagsAdapter) Group() models.EntityGroup { return models.Tags }

func (a *clockifyTagsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := FetchAllPages[clockifyNamed](ctx, a.c.api, models.ToolClockify, a.c.workspacePath(workspaceID, "tags"), nil)
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          w.ID,
			WorkspaceID: workspaceID,
			Group:       models.Tags,
			Name:        w.Name,
			Included:    true,
		})
	}
	return records, nil
}

func (a *clockifyTagsAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, _ Resolver) (*models.Record, error) {
	body := map[string]any{"name": rec.Name}
	var created clockifyNamed
	if err := a.c.api.Post(ctx, models.ToolClockify, a.c.workspacePath(targetWorkspaceID, "tags"), body, &created); err != nil {
		return nil, err
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.Tags,
		Name:        created.Name,
		Included:    true,
	}, nil
}

func (a *clockifyTagsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.api.Delete(ctx, models.ToolClockify, a.c.workspacePath(rec.WorkspaceID, "tags")+"/"+rec.ID)
}

type clockifyProjectsAdapter struct{ c *ClockifyClient }

func (a *clockifyProjectsAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyProjectsAdapter) Group() models.EntityGroup { return models.Projects }

func (a *clockifyProjectsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := FetchAllPages[clockifyProject](ctx, a.c.api, models.ToolClockify, a.c.workspacePath(workspaceID, "projects"), nil)
	if err != nil {
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          w.ID,
			WorkspaceID: workspaceID,
			Group:       models.Projects,
			Name:        w.Name,
			ClientID:    w.ClientID,
			Billable:    w.Billable,
			Included:    true,
		})
	}
	return records, nil
}

// Create re-maps the source client reference through the already-linked
// Clients group before posting.
func (a *clockifyProjectsAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, deps Resolver) (*models.Record, error) {
	body := map[string]any{
		"name":     rec.Name,
		"isPublic": true,
		"billable": rec.Billable,
	}
	if rec.ClientID != "" {
		if linked, ok := deps.Linked(models.Clients, rec.ClientID); ok {
			body["clientId"] = linked
		}
	}

	var created clockifyProject
	if err := a.c.api.Post(ctx, models.ToolClockify, a.c.workspacePath(targetWorkspaceID, "projects"), body, &created); err != nil {
		return nil, err
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.Projects,
		Name:        created.Name,
		ClientID:    created.ClientID,
		Billable:    created.Billable,
		Included:    true,
	}, nil
}

func (a *clockifyProjectsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.api.Delete(ctx, models.ToolClockify, a.c.workspacePath(rec.WorkspaceID, "projects")+"/"+rec.ID)
}

type clockifyTasksAdapter struct{ c *ClockifyClient }

func (a *clockifyTasksAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyTasksAdapter) Group() models.EntityGroup { return models.Tasks }

// FetchAll lists tasks project by project; Clockify has no workspace-level
// task listing.
func (a *clockifyTasksAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	projects, err := FetchAllPages[clockifyProject](ctx, a.c.api, models.ToolClockify, a.c.workspacePath(workspaceID, "projects"), nil)
	if err != nil {
		return nil, err
	}

	var records []*models.Record
	for _, p := range projects {
		path := fmt.Sprintf("/workspaces/%s/projects/%s/tasks", workspaceID, p.ID)
		tasks, err := FetchAllPages[clockifyTask](ctx, a.c.api, models.ToolClockify, path, nil)
		if err != nil {
			if StatusOf(err) == http.StatusForbidden {
				continue
			}
			return nil, err
		}
		for _, t := range tasks {
			records = append(records, &models.Record{
				ID:          t.ID,
				WorkspaceID: workspaceID,
				Group:       models.Tasks,
				Name:        t.Name,
				ProjectID:   t.ProjectID,
				Included:    true,
			})
		}
	}
	return records, nil
}

func (a *clockifyTasksAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, deps Resolver) (*models.Record, error) {
	projectID, ok := deps.Linked(models.Projects, rec.ProjectID)
	if !ok {
		return nil, fmt.Errorf("%w: task %q has no linked project", shared.ErrInvalidInput, rec.Name)
	}

	path := fmt.Sprintf("/workspaces/%s/projects/%s/tasks", targetWorkspaceID, projectID)
	body := map[string]any{"name": rec.Name}

	var created clockifyTask
	if err := a.c.api.Post(ctx, models.ToolClockify, path, body, &created); err != nil {
		return nil, err
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.Tasks,
		Name:        created.Name,
		ProjectID:   projectID,
		Included:    true,
	}, nil
}

func (a *clockifyTasksAdapter) Delete(ctx context.Context, rec *models.Record) error {
	path := fmt.Sprintf("/workspaces/%s/projects/%s/tasks/%s", rec.WorkspaceID, rec.ProjectID, rec.ID)
	return a.c.api.Delete(ctx, models.ToolClockify, path)
}

type clockifyUsersAdapter struct{ c *ClockifyClient }

func (a *clockifyUsersAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyUsersAdapter) Group() models.EntityGroup { return models.Users }

func (a *clockifyUsersAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := FetchAllPages[clockifyUser](ctx, a.c.api, models.ToolClockify, a.c.workspacePath(workspaceID, "users"), nil)
	if err != nil {
		// Membership listing requires admin rights on the workspace.
		if StatusOf(err) == http.StatusForbidden {
			return nil, nil
		}
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          w.ID,
			WorkspaceID: workspaceID,
			Group:       models.Users,
			Name:        w.Name,
			Email:       w.Email,
			Included:    true,
		})
	}
	return records, nil
}

// Create invites the user by email; Clockify has no direct user creation.
func (a *clockifyUsersAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, _ Resolver) (*models.Record, error) {
	body := map[string]any{"email": rec.Email}
	var created clockifyUser
	if err := a.c.api.Post(ctx, models.ToolClockify, a.c.workspacePath(targetWorkspaceID, "users"), body, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		// The invite response does not echo a member object until the user
		// accepts; synthesize a pending record keyed by email.
		created = clockifyUser{ID: rec.Email, Email: rec.Email, Name: rec.Name}
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.Users,
		Name:        created.Name,
		Email:       created.Email,
		Included:    true,
	}, nil
}

func (a *clockifyUsersAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.api.Delete(ctx, models.ToolClockify, a.c.workspacePath(rec.WorkspaceID, "users")+"/"+rec.ID)
}

type clockifyUserGroupsAdapter struct{ c *ClockifyClient }

func (a *clockifyUserGroupsAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyUserGroupsAdapter) Group() models.EntityGroup { return models.UserGroups }

func (a *clockifyUserGroupsAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	wire, err := FetchAllPages[clockifyNamed](ctx, a.c.api, models.ToolClockify, a.c.workspacePath(workspaceID, "user-groups"), nil)
	if err != nil {
		if StatusOf(err) == http.StatusForbidden {
			return nil, nil
		}
		return nil, err
	}
	records := make([]*models.Record, 0, len(wire))
	for _, w := range wire {
		records = append(records, &models.Record{
			ID:          w.ID,
			WorkspaceID: workspaceID,
			Group:       models.UserGroups,
			Name:        w.Name,
			Included:    true,
		})
	}
	return records, nil
}

func (a *clockifyUserGroupsAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, _ Resolver) (*models.Record, error) {
	body := map[string]any{"name": rec.Name}
	var created clockifyNamed
	if err := a.c.api.Post(ctx, models.ToolClockify, a.c.workspacePath(targetWorkspaceID, "user-groups"), body, &created); err != nil {
		return nil, err
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.UserGroups,
		Name:        created.Name,
		Included:    true,
	}, nil
}

func (a *clockifyUserGroupsAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.api.Delete(ctx, models.ToolClockify, a.c.workspacePath(rec.WorkspaceID, "user-groups")+"/"+rec.ID)
}

type clockifyTimeEntriesAdapter struct{ c *ClockifyClient }

func (a *clockifyTimeEntriesAdapter) Tool() models.ToolName     { return models.ToolClockify }
func (a *clockifyTimeEntriesAdapter) Group() models.EntityGroup { return models.TimeEntries }

// FetchAll iterates year windows from the epoch through the current year and
// pages within each window: the listing endpoint scopes both by date range
// and by page.
func (a *clockifyTimeEntriesAdapter) FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error) {
	if a.c.userID == "" {
		return nil, fmt.Errorf("%w: clockify user_id is required to list time entries", shared.ErrMissingCredentials)
	}

	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries", workspaceID, a.c.userID)
	var records []*models.Record

	for year := timeEntryEpochYear; year <= time.Now().UTC().Year(); year++ {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

		query := url.Values{}
		query.Set("start", clockifyTimestamp(from))
		query.Set("end", clockifyTimestamp(to))

		wire, err := FetchAllPages[clockifyTimeEntry](ctx, a.c.api, models.ToolClockify, path, query)
		if err != nil {
			return nil, err
		}

		for _, w := range wire {
			records = append(records, &models.Record{
				ID:          w.ID,
				WorkspaceID: workspaceID,
				Group:       models.TimeEntries,
				Description: w.Description,
				Start:       w.TimeInterval.Start,
				End:         w.TimeInterval.End,
				Billable:    w.Billable,
				ProjectID:   w.ProjectID,
				TaskID:      w.TaskID,
				TagIDs:      w.TagIDs,
				UserID:      w.UserID,
				Included:    true,
			})
		}
	}

	return records, nil
}

// Create re-maps project, task, and tag references through their
// already-linked dependency groups.
func (a *clockifyTimeEntriesAdapter) Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, deps Resolver) (*models.Record, error) {
	body := map[string]any{
		"start":       clockifyTimestamp(rec.Start),
		"end":         clockifyTimestamp(rec.End),
		"description": rec.Description,
		"billable":    rec.Billable,
	}

	if rec.ProjectID != "" {
		if linked, ok := deps.Linked(models.Projects, rec.ProjectID); ok {
			body["projectId"] = linked
		}
	}
	if rec.TaskID != "" {
		if linked, ok := deps.Linked(models.Tasks, rec.TaskID); ok {
			body["taskId"] = linked
		}
	}
	if len(rec.TagIDs) > 0 {
		tagIDs := make([]string, 0, len(rec.TagIDs))
		for _, id := range rec.TagIDs {
			if linked, ok := deps.Linked(models.Tags, id); ok {
				tagIDs = append(tagIDs, linked)
			}
		}
		if len(tagIDs) > 0 {
			body["tagIds"] = tagIDs
		}
	}

	var created clockifyTimeEntry
	if err := a.c.api.Post(ctx, models.ToolClockify, a.c.workspacePath(targetWorkspaceID, "time-entries"), body, &created); err != nil {
		return nil, err
	}
	return &models.Record{
		ID:          created.ID,
		WorkspaceID: targetWorkspaceID,
		Group:       models.TimeEntries,
		Description: created.Description,
		Start:       created.TimeInterval.Start,
		End:         created.TimeInterval.End,
		Billable:    created.Billable,
		ProjectID:   created.ProjectID,
		TaskID:      created.TaskID,
		TagIDs:      created.TagIDs,
		Included:    true,
	}, nil
}

func (a *clockifyTimeEntriesAdapter) Delete(ctx context.Context, rec *models.Record) error {
	return a.c.api.Delete(ctx, models.ToolClockify, a.c.workspacePath(rec.WorkspaceID, "time-entries")+"/"+rec.ID)
}
