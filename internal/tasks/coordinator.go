// Package tasks implements the migration engine's orchestration layer: the
// per-group fetch/create/delete drivers and the transfer coordinator that
// sequences entity groups in dependency order.
//
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI/UI layer. Groups run strictly sequentially: later
// groups' adapters read the linked ids produced by earlier groups, and
// per-record calls within a group are sequential as well so the per-tool
// pacing delay is honored.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"ttx/internal/models"
	"ttx/internal/services"
	"ttx/internal/shared"
)

// GroupProgress is the per-group counter pair the engine exposes for polling.
type GroupProgress struct {
	Completed int
	Total     int
}

// TransferEngine coordinates the three top-level operations over the adapter
// registry and the in-memory record store. It never runs two operations at
// once; a single-flight guard rejects concurrent triggers.
type TransferEngine struct {
	registry   *services.Registry
	state      *SyncState
	logger     *log.Logger
	sourceTool models.ToolName
	targetTool models.ToolName

	mu           sync.Mutex
	inFlight     bool
	status       Status
	currentGroup models.EntityGroup
	lastError    error
	counters     map[models.EntityGroup]GroupProgress
}

// NewTransferEngine creates the coordinator. Direction is fixed: records
// flow from Toggl to Clockify, deletes run against Toggl.
func NewTransferEngine(registry *services.Registry, logger *log.Logger) *TransferEngine {
	return &TransferEngine{
		registry:   registry,
		state:      NewSyncState(),
		logger:     logger,
		sourceTool: models.ToolToggl,
		targetTool: models.ToolClockify,
		status:     StatusPending,
		counters:   make(map[models.EntityGroup]GroupProgress),
	}
}

// State exposes the record store for read-only inspection (UI, formatter).
func (e *TransferEngine) State() *SyncState { return e.state }

// Status returns the state machine position, the group currently being
// processed, and the error that moved the machine to StatusError, if any.
func (e *TransferEngine) Status() (Status, models.EntityGroup, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.currentGroup, e.lastError
}

// Progress returns the per-group completed/total counters for the running or
// last operation.
func (e *TransferEngine) Progress(group models.EntityGroup) GroupProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counters[group]
}

// Flush discards all fetched state, e.g. after switching credentials.
func (e *TransferEngine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Flush()
	e.counters = make(map[models.EntityGroup]GroupProgress)
	e.status = StatusPending
	e.lastError = nil
}

// FetchWorkspaces fetches only the workspace group, so the caller can
// present a selection before committing to a full fetch. includeTarget
// controls whether the target side is fetched and linked; delete flows pass
// false since nothing is matched there. Runs at most once; later calls
// return the cached records.
func (e *TransferEngine) FetchWorkspaces(ctx context.Context, includeTarget bool) ([]*models.Record, error) {
	if len(e.state.SourceWorkspaces()) > 0 {
		return e.state.SourceWorkspaces(), nil
	}
	if err := e.runGroupFetch(ctx, models.Workspaces, includeTarget, nil); err != nil {
		return nil, err
	}
	return e.state.SourceWorkspaces(), nil
}

// SelectWorkspaces marks source workspaces as included by name. With all
// set, every fetched source workspace is selected (the automated full-sync
// policy); otherwise only the named ones are. At least one workspace must
// end up selected.
func (e *TransferEngine) SelectWorkspaces(names []string, all bool) error {
	selected := 0
	for _, w := range e.state.SourceWorkspaces() {
		w.Included = all || containsFold(names, w.Name)
		if w.Included {
			selected++
		}
	}
	if selected == 0 {
		return shared.ErrNoWorkspaces
	}
	return nil
}

// FetchAll populates the record store for a transfer: every group in
// dependency order, both sides, linked. Runs only once per session — when a
// prior fetch already populated state, a repeated call is a no-op so
// navigating back and forth never triggers a redundant full re-sync.
func (e *TransferEngine) FetchAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	if e.state.Fetched() {
		e.logger.Debug("fetch skipped, state already populated", "last_fetch", e.state.LastFetch())
		return nil
	}
	if err := e.begin(); err != nil {
		return err
	}

	err := e.fetchAll(ctx, true, progress)
	if err == nil {
		e.state.MarkFetched(time.Now())
	}
	e.end(err)
	return err
}

func (e *TransferEngine) fetchAll(ctx context.Context, includeTarget bool, progress chan<- ProgressUpdate) error {
	for _, group := range models.FetchOrder {
		if group == models.Workspaces && len(e.state.SourceWorkspaces()) > 0 {
			// Workspaces were already fetched for the selection step.
			continue
		}
		e.setCurrentGroup(group)
		if err := e.runGroupFetch(ctx, group, includeTarget, progress); err != nil {
			return err
		}
	}
	e.deriveEntryCounts()
	return nil
}

// CreateAll transfers every selected, unmatched record to the target tool in
// forward dependency order. Workspace linkage is a prerequisite, not part of
// the loop: the target tool cannot create workspaces over the API, so an
// unlinked selected workspace aborts the run with a user-facing constraint.
func (e *TransferEngine) CreateAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	if !e.state.Fetched() {
		return shared.ErrNothingFetched
	}
	if err := e.begin(); err != nil {
		return err
	}

	err := e.createAll(ctx, progress)
	e.end(err)
	return err
}

func (e *TransferEngine) createAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	var unlinked []string
	for _, w := range e.state.IncludedWorkspaces() {
		if !w.Linked() {
			unlinked = append(unlinked, w.Name)
		}
	}
	if len(unlinked) > 0 {
		return fmt.Errorf("%w: create workspace(s) %s on %s manually, then fetch again",
			shared.ErrCreateUnsupported, strings.Join(unlinked, ", "), e.targetTool)
	}

	for _, group := range models.CreateOrder {
		e.setCurrentGroup(group)
		completed, total, err := e.runGroupCreate(ctx, group, progress)
		if err != nil {
			return fmt.Errorf("creating %s: %w", group, err)
		}
		e.send(progress, groupDoneUpdate(OpCreate, group, completed, total))
	}
	return nil
}

// DeleteAll removes the selected source records in the exact reverse of the
// create order so children disappear before the records they reference. When
// no prior fetch populated state, a source-only fetch runs first (no target
// fetch, no linking).
func (e *TransferEngine) DeleteAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	if err := e.begin(); err != nil {
		return err
	}

	err := e.deleteAll(ctx, progress)
	e.end(err)
	return err
}

func (e *TransferEngine) deleteAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	if !e.state.Fetched() {
		if err := e.fetchAll(ctx, false, progress); err != nil {
			return err
		}
		e.state.MarkFetched(time.Now())
	}

	for _, group := range models.DeleteOrder {
		e.setCurrentGroup(group)

		adapter, err := e.registry.Adapter(e.sourceTool, group)
		if err != nil {
			return err
		}
		if !services.CanDelete(adapter) {
			// Workspace deletion is not exposed by the source API; surface
			// the constraint and keep going rather than failing the run.
			e.logger.Warn("group cannot be deleted via API, skipping",
				"tool", e.sourceTool.String(), "group", group.String())
			continue
		}

		completed, total, err := e.runGroupDelete(ctx, group, progress)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", group, err)
		}
		e.send(progress, groupDoneUpdate(OpDelete, group, completed, total))
	}
	return nil
}

// deriveEntryCounts annotates source records with the number of dependent
// time entries. Display-only.
func (e *TransferEngine) deriveEntryCounts() {
	entries := e.state.Slice(models.MappingSource, models.TimeEntries)

	projects := e.state.Get(models.MappingSource, models.Projects)
	tasks := e.state.Get(models.MappingSource, models.Tasks)
	tags := e.state.Get(models.MappingSource, models.Tags)
	users := e.state.Get(models.MappingSource, models.Users)
	clients := e.state.Get(models.MappingSource, models.Clients)
	workspaces := models.Index(e.state.SourceWorkspaces())

	bump := func(set models.RecordSet, id string) {
		if rec, ok := set[id]; ok && id != "" {
			rec.EntryCount++
		}
	}

	for _, entry := range entries {
		bump(workspaces, entry.WorkspaceID)
		bump(tasks, entry.TaskID)
		bump(users, entry.UserID)
		for _, tagID := range entry.TagIDs {
			bump(tags, tagID)
		}
		if project, ok := projects[entry.ProjectID]; entry.ProjectID != "" && ok {
			project.EntryCount++
			bump(clients, project.ClientID)
		}
	}
}

// begin moves the state machine to InProcess, rejecting concurrent triggers.
func (e *TransferEngine) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return shared.ErrRunInProgress
	}
	e.inFlight = true
	e.status = StatusInProcess
	e.lastError = nil
	return nil
}

// end resolves the state machine to Success or Error.
func (e *TransferEngine) end(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if err != nil {
		e.status = StatusError
		e.lastError = err
		e.logger.Error("operation failed", "group", e.currentGroup.String(), "err", err)
		return
	}
	e.status = StatusSuccess
}

func (e *TransferEngine) setCurrentGroup(group models.EntityGroup) {
	e.mu.Lock()
	e.currentGroup = group
	e.mu.Unlock()
}

func (e *TransferEngine) setCompleted(group models.EntityGroup, completed, total int) {
	e.mu.Lock()
	e.counters[group] = GroupProgress{Completed: completed, Total: total}
	e.mu.Unlock()
}

// send delivers a progress update without blocking: a slow or absent
// consumer must never stall the pipeline.
func (e *TransferEngine) send(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
