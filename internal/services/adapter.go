package services

import (
	"context"
	"fmt"

	"ttx/internal/models"
	"ttx/internal/shared"
)

// Resolver maps a source-side record id of a dependency group to the id of
// its linked counterpart on the target side. Adapters use it while building
// create payloads, which is why group creation must follow dependency order:
// the foreign keys of a record can only be re-mapped once the groups they
// point into have been linked.
type Resolver interface {
	Linked(group models.EntityGroup, sourceID string) (string, bool)
}

// GroupAdapter translates between one tool's wire schema and [models.Record]
// for one entity group. Fetching is universal; creation and deletion are
// optional capabilities declared through [Creator] and [Deleter], so a
// missing capability is visible in the type system instead of silently
// skipped.
type GroupAdapter interface {
	Tool() models.ToolName
	Group() models.EntityGroup

	// FetchAll lists every record of the group within one workspace. The
	// Workspaces group ignores workspaceID. A 403 on membership-scoped
	// sub-fetches is treated as "no data", since the calling account may
	// lack permission on a workspace it does not own.
	FetchAll(ctx context.Context, workspaceID string) ([]*models.Record, error)
}

// Creator is implemented by adapters whose tool API can create records of
// the group.
type Creator interface {
	// Create builds the tool-specific payload from the generic record
	// (re-mapping foreign keys through deps), POSTs it, and returns the
	// response as a new record with Included = true and no link.
	Create(ctx context.Context, rec *models.Record, targetWorkspaceID string, deps Resolver) (*models.Record, error)
}

// Deleter is implemented by adapters whose tool API can delete records of
// the group.
type Deleter interface {
	Delete(ctx context.Context, rec *models.Record) error
}

// CanCreate reports whether the adapter's tool API can create the group.
func CanCreate(a GroupAdapter) bool {
	_, ok := a.(Creator)
	return ok
}

// CanDelete reports whether the adapter's tool API can delete the group.
func CanDelete(a GroupAdapter) bool {
	_, ok := a.(Deleter)
	return ok
}

// CreateRecord dispatches to the adapter's Creator capability, returning
// [shared.ErrCreateUnsupported] when it is absent.
func CreateRecord(ctx context.Context, a GroupAdapter, rec *models.Record, targetWorkspaceID string, deps Resolver) (*models.Record, error) {
	creator, ok := a.(Creator)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", shared.ErrCreateUnsupported, a.Tool(), a.Group())
	}
	return creator.Create(ctx, rec, targetWorkspaceID, deps)
}

// DeleteRecord dispatches to the adapter's Deleter capability, returning
// [shared.ErrDeleteUnsupported] when it is absent.
func DeleteRecord(ctx context.Context, a GroupAdapter, rec *models.Record) error {
	deleter, ok := a.(Deleter)
	if !ok {
		return fmt.Errorf("%w: %s %s", shared.ErrDeleteUnsupported, a.Tool(), a.Group())
	}
	return deleter.Delete(ctx, rec)
}

// Registry resolves the adapter for a (tool, entity group) pair. It is built
// once at startup so dispatch stays exhaustive instead of relying on ad hoc
// map lookups scattered through the engine.
type Registry struct {
	adapters map[models.ToolName]map[models.EntityGroup]GroupAdapter
}

// NewRegistry builds the full adapter set for both tools.
func NewRegistry(toggl *TogglClient, clockify *ClockifyClient) *Registry {
	adapters := togglAdapters(toggl)
	adapters = append(adapters, clockifyAdapters(clockify)...)
	return NewRegistryOf(adapters...)
}

// NewRegistryOf builds a registry from an explicit adapter list.
func NewRegistryOf(adapters ...GroupAdapter) *Registry {
	r := &Registry{adapters: make(map[models.ToolName]map[models.EntityGroup]GroupAdapter)}
	for _, a := range adapters {
		r.register(a)
	}
	return r
}

func (r *Registry) register(a GroupAdapter) {
	byGroup, ok := r.adapters[a.Tool()]
	if !ok {
		byGroup = make(map[models.EntityGroup]GroupAdapter)
		r.adapters[a.Tool()] = byGroup
	}
	byGroup[a.Group()] = a
}

// Adapter returns the adapter registered for the pair.
func (r *Registry) Adapter(tool models.ToolName, group models.EntityGroup) (GroupAdapter, error) {
	if byGroup, ok := r.adapters[tool]; ok {
		if a, ok := byGroup[group]; ok {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no adapter registered for %s %s", tool, group)
}
