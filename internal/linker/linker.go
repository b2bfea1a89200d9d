// Package linker matches equivalent records between the source and target
// record spaces of one entity group and records the association on both
// sides.
//
// Non-time-entry groups match on a comparison field (email for users, name
// for everything else), gated on the owning workspaces being linked so two
// same-named projects in unrelated workspaces never cross-link. Time entries
// use a four-predicate matcher with one-minute tolerances on both endpoints.
// Matching is greedy: the first qualifying candidate wins, which is a
// documented limitation on ambiguous inputs, not a defect.
package linker

import (
	"sort"
	"time"

	"ttx/internal/models"
)

// startTolerance bounds how far apart two entries' start (and end) times may
// be and still count as the same entry.
const startTolerance = time.Minute

// Result holds both sides of one group indexed by id after linking.
type Result struct {
	Source models.RecordSet
	Target models.RecordSet
}

// Linker carries the cross-group context matching needs: the workspace link
// index and, for time entries, the source-side project set.
type Linker struct {
	// workspaceLinks maps a source workspace id to its linked target
	// workspace id.
	workspaceLinks map[string]string

	// sourceProjects indexes source projects by id so the time-entry matcher
	// can follow a source entry's project to its linked target project.
	sourceProjects models.RecordSet
}

// New creates a Linker. Either argument may be nil when the group being
// linked does not need it (workspaces need neither).
func New(workspaceLinks map[string]string, sourceProjects models.RecordSet) *Linker {
	if workspaceLinks == nil {
		workspaceLinks = map[string]string{}
	}
	return &Linker{workspaceLinks: workspaceLinks, sourceProjects: sourceProjects}
}

// WorkspaceIndex builds the source→target workspace id map from linked
// workspace records.
func WorkspaceIndex(workspaces []*models.Record) map[string]string {
	index := make(map[string]string)
	for _, w := range workspaces {
		if w.Linked() {
			index[w.ID] = w.LinkedID
		}
	}
	return index
}

// Link matches source records against target records of the same group,
// mutating LinkedID and Included on both sides, and returns both sides
// indexed by id. An empty source set short-circuits to two empty maps.
func (l *Linker) Link(group models.EntityGroup, source, target []*models.Record) Result {
	if len(source) == 0 {
		return Result{Source: models.RecordSet{}, Target: models.RecordSet{}}
	}

	if group == models.TimeEntries {
		return l.linkTimeEntries(source, target)
	}
	return l.linkByField(group, source, target)
}

// linkByField links on exact comparison-field equality. For every group
// except workspaces a candidate only qualifies when its owning workspace is
// the linked counterpart of the source record's workspace.
func (l *Linker) linkByField(group models.EntityGroup, source, target []*models.Record) Result {
	result := Result{Source: models.Index(source), Target: models.Index(target)}

	for _, s := range source {
		if s.Linked() {
			// Already matched in a previous pass (re-link after create).
			s.Included = false
			continue
		}

		var match *models.Record
		field := s.CompareField()
		if field != "" {
			for _, t := range target {
				if t.Linked() {
					// Already claimed, either in an earlier pass or by a
					// duplicate-named source earlier in this scan.
					continue
				}
				if t.CompareField() != field {
					continue
				}
				if group != models.Workspaces && l.workspaceLinks[s.WorkspaceID] != t.WorkspaceID {
					continue
				}
				match = t
				break
			}
		}

		if match != nil {
			s.LinkedID = match.ID
			s.Included = false
			match.LinkedID = s.ID
			match.Included = false
			continue
		}

		s.LinkedID = ""
		// Workspaces require explicit opt-in; every other group defaults to
		// included when unmatched.
		s.Included = group != models.Workspaces
	}

	return result
}

// linkTimeEntries greedily pairs entries. Both slices are sorted by start
// time first; the scan itself remains a full pairwise comparison.
func (l *Linker) linkTimeEntries(source, target []*models.Record) Result {
	sortByStart(source)
	sortByStart(target)

	result := Result{Source: models.Index(source), Target: models.Index(target)}

	for _, s := range source {
		if s.Linked() {
			s.Included = false
			continue
		}

		for _, t := range target {
			if t.Linked() {
				continue
			}
			if l.entriesEquivalent(s, t) {
				s.LinkedID = t.ID
				t.LinkedID = s.ID
				break
			}
		}

		s.Included = !s.Linked()
	}

	return result
}

// entriesEquivalent reports whether a source and target entry describe the
// same logged time. All four predicates must hold: linked projects, identical
// descriptions, and start/end times within tolerance.
func (l *Linker) entriesEquivalent(s, t *models.Record) bool {
	if !l.projectsMatch(s, t) {
		return false
	}
	if s.Description != t.Description {
		return false
	}
	if absDelta(s.Start, t.Start) > startTolerance {
		return false
	}
	if absDelta(s.End, t.End) > startTolerance {
		return false
	}
	return true
}

// projectsMatch holds when both entries have no project, or both have one and
// the source entry's project links to the target entry's project.
func (l *Linker) projectsMatch(s, t *models.Record) bool {
	if s.ProjectID == "" && t.ProjectID == "" {
		return true
	}
	if s.ProjectID == "" || t.ProjectID == "" {
		return false
	}
	project, ok := l.sourceProjects[s.ProjectID]
	if !ok {
		return false
	}
	return project.LinkedID == t.ProjectID
}

func sortByStart(records []*models.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Start.Before(records[j].Start)
	})
}

func absDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
