package tasks

import (
	"context"
	"fmt"

	"ttx/internal/linker"
	"ttx/internal/models"
	"ttx/internal/services"
	"ttx/internal/shared"
)

// runGroupFetch fetches one entity group into state. For transfer flows both
// sides are fetched and linked; for delete flows only the source side is
// fetched and records are indexed directly with an empty target map, since
// nothing will be matched.
func (e *TransferEngine) runGroupFetch(ctx context.Context, group models.EntityGroup, includeTarget bool, progress chan<- ProgressUpdate) error {
	sourceAdapter, err := e.registry.Adapter(e.sourceTool, group)
	if err != nil {
		return err
	}

	source, err := e.fetchSide(ctx, sourceAdapter, group, models.MappingSource)
	if err != nil {
		return fmt.Errorf("fetching %s %s: %w", e.sourceTool, group, err)
	}

	if !includeTarget {
		// No linking runs, so nothing marks the records; everything fetched
		// from the selected workspaces is in scope for the delete.
		if group != models.Workspaces {
			for _, rec := range source {
				rec.Included = true
			}
		}
		e.state.Set(models.MappingSource, group, models.Index(source))
		e.state.Set(models.MappingTarget, group, models.RecordSet{})
		e.send(progress, groupDoneUpdate(OpFetch, group, len(source), len(source)))
		return nil
	}

	targetAdapter, err := e.registry.Adapter(e.targetTool, group)
	if err != nil {
		return err
	}

	target, err := e.fetchSide(ctx, targetAdapter, group, models.MappingTarget)
	if err != nil {
		return fmt.Errorf("fetching %s %s: %w", e.targetTool, group, err)
	}

	result := e.linkerFor(group).Link(group, source, target)
	e.state.Set(models.MappingSource, group, result.Source)
	e.state.Set(models.MappingTarget, group, result.Target)

	e.send(progress, groupDoneUpdate(OpFetch, group, len(source), len(source)))
	return nil
}

// fetchSide lists a group's records across the relevant workspaces of one
// mapping. Workspaces are listed account-wide; every other group iterates
// the selected source workspaces (or their linked target counterparts).
func (e *TransferEngine) fetchSide(ctx context.Context, adapter services.GroupAdapter, group models.EntityGroup, mapping models.Mapping) ([]*models.Record, error) {
	if group == models.Workspaces {
		return adapter.FetchAll(ctx, "")
	}

	var all []*models.Record
	for _, workspace := range e.state.IncludedWorkspaces() {
		workspaceID := workspace.ID
		if mapping == models.MappingTarget {
			if !workspace.Linked() {
				continue
			}
			workspaceID = workspace.LinkedID
		}

		records, err := adapter.FetchAll(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// linkerFor builds a Linker with the context the group needs: the workspace
// link index for every child group, plus the source project set for time
// entries.
func (e *TransferEngine) linkerFor(group models.EntityGroup) *linker.Linker {
	switch group {
	case models.Workspaces:
		return linker.New(nil, nil)
	case models.TimeEntries:
		return linker.New(e.workspaceIndex(), e.state.Get(models.MappingSource, models.Projects))
	default:
		return linker.New(e.workspaceIndex(), nil)
	}
}

func (e *TransferEngine) workspaceIndex() map[string]string {
	return linker.WorkspaceIndex(e.state.SourceWorkspaces())
}

// runGroupCreate creates every genuinely new source record of the group on
// the target tool: included and unlinked, so matched records are never
// re-created. After all creates succeed the group is re-linked over the
// combined sets so state reflects the new one-to-one links.
func (e *TransferEngine) runGroupCreate(ctx context.Context, group models.EntityGroup, progress chan<- ProgressUpdate) (int, int, error) {
	adapter, err := e.registry.Adapter(e.targetTool, group)
	if err != nil {
		return 0, 0, err
	}

	var pending []*models.Record
	for _, rec := range e.state.Slice(models.MappingSource, group) {
		if rec.Included && !rec.Linked() {
			pending = append(pending, rec)
		}
	}

	total := len(pending)
	e.setCompleted(group, 0, total)
	e.send(progress, groupStartedUpdate(OpCreate, group, total))

	targetSet := e.state.Get(models.MappingTarget, group)
	completed := 0

	for _, rec := range pending {
		targetWorkspaceID, ok := e.workspaceIndex()[rec.WorkspaceID]
		if !ok {
			return completed, total, fmt.Errorf("%w: workspace %s is not linked", shared.ErrInvalidInput, rec.WorkspaceID)
		}

		created, err := services.CreateRecord(ctx, adapter, rec, targetWorkspaceID, e.state)
		if err != nil {
			return completed, total, err
		}

		targetSet[created.ID] = created
		completed++
		e.setCompleted(group, completed, total)
		e.send(progress, recordDoneUpdate(OpCreate, group, completed, total, rec.Name))
	}

	result := e.linkerFor(group).Link(group,
		e.state.Slice(models.MappingSource, group),
		e.state.Slice(models.MappingTarget, group))
	e.state.Set(models.MappingSource, group, result.Source)
	e.state.Set(models.MappingTarget, group, result.Target)

	return completed, total, nil
}

// runGroupDelete deletes the included source records of the group. Each
// delete is an independent call, but the batch aborts on the first failure
// and surfaces it; the remaining records stay untouched.
func (e *TransferEngine) runGroupDelete(ctx context.Context, group models.EntityGroup, progress chan<- ProgressUpdate) (int, int, error) {
	adapter, err := e.registry.Adapter(e.sourceTool, group)
	if err != nil {
		return 0, 0, err
	}

	var pending []*models.Record
	for _, rec := range e.state.Slice(models.MappingSource, group) {
		if rec.Included {
			pending = append(pending, rec)
		}
	}

	total := len(pending)
	e.setCompleted(group, 0, total)
	e.send(progress, groupStartedUpdate(OpDelete, group, total))

	sourceSet := e.state.Get(models.MappingSource, group)
	completed := 0

	for _, rec := range pending {
		if err := services.DeleteRecord(ctx, adapter, rec); err != nil {
			return completed, total, err
		}
		delete(sourceSet, rec.ID)
		completed++
		e.setCompleted(group, completed, total)
		e.send(progress, recordDoneUpdate(OpDelete, group, completed, total, rec.Name))
	}

	return completed, total, nil
}
