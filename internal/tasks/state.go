package tasks

import (
	"sort"
	"time"

	"ttx/internal/models"
)

// SyncState is the in-memory record store: one [models.RecordSet] per
// (mapping, entity group). It is owned by the [TransferEngine] and mutated
// only by the orchestrator and the linker; the engine's single-flight guard
// keeps two operations from ever touching it concurrently.
type SyncState struct {
	records   map[models.Mapping]map[models.EntityGroup]models.RecordSet
	lastFetch time.Time
}

// NewSyncState creates an empty store.
func NewSyncState() *SyncState {
	s := &SyncState{}
	s.Flush()
	return s
}

// Flush discards all records and the fetch marker, e.g. when a transfer is
// restarted against different tools or credentials.
func (s *SyncState) Flush() {
	s.records = map[models.Mapping]map[models.EntityGroup]models.RecordSet{
		models.MappingSource: make(map[models.EntityGroup]models.RecordSet),
		models.MappingTarget: make(map[models.EntityGroup]models.RecordSet),
	}
	s.lastFetch = time.Time{}
}

// Set stores one side of a group.
func (s *SyncState) Set(mapping models.Mapping, group models.EntityGroup, set models.RecordSet) {
	s.records[mapping][group] = set
}

// Get returns one side of a group, never nil.
func (s *SyncState) Get(mapping models.Mapping, group models.EntityGroup) models.RecordSet {
	if set, ok := s.records[mapping][group]; ok {
		return set
	}
	return models.RecordSet{}
}

// Slice returns one side of a group as a slice, ordered by id so iteration
// order is deterministic.
func (s *SyncState) Slice(mapping models.Mapping, group models.EntityGroup) []*models.Record {
	set := s.Get(mapping, group)
	records := make([]*models.Record, 0, len(set))
	for _, r := range set {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

// MarkFetched records that a full fetch completed, making later FetchAll
// calls no-ops until the state is flushed.
func (s *SyncState) MarkFetched(at time.Time) {
	s.lastFetch = at
}

// Fetched reports whether a full fetch has populated this state.
func (s *SyncState) Fetched() bool {
	return !s.lastFetch.IsZero()
}

// LastFetch returns when the state was last populated.
func (s *SyncState) LastFetch() time.Time {
	return s.lastFetch
}

// Linked resolves a source-side record id of the given group to the id of
// its linked target counterpart. SyncState is the engine's
// [services.Resolver]: adapters use it to re-map foreign keys while building
// create payloads.
func (s *SyncState) Linked(group models.EntityGroup, sourceID string) (string, bool) {
	rec, ok := s.Get(models.MappingSource, group)[sourceID]
	if !ok || !rec.Linked() {
		return "", false
	}
	return rec.LinkedID, true
}

// SourceWorkspaces returns the fetched source workspaces.
func (s *SyncState) SourceWorkspaces() []*models.Record {
	return s.Slice(models.MappingSource, models.Workspaces)
}

// IncludedWorkspaces returns the source workspaces selected for the pending
// operation.
func (s *SyncState) IncludedWorkspaces() []*models.Record {
	var selected []*models.Record
	for _, w := range s.SourceWorkspaces() {
		if w.Included {
			selected = append(selected, w)
		}
	}
	return selected
}
