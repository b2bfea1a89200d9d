package models

import "time"

// ToolName identifies one of the two time-tracking services.
type ToolName int

const (
	ToolToggl ToolName = iota
	ToolClockify
)

func (t ToolName) String() string {
	switch t {
	case ToolToggl:
		return "toggl"
	case ToolClockify:
		return "clockify"
	default:
		return "unknown"
	}
}

// Mapping is the side of a transfer a record set belongs to.
type Mapping int

const (
	MappingSource Mapping = iota
	MappingTarget
)

func (m Mapping) String() string {
	if m == MappingSource {
		return "source"
	}
	return "target"
}

// EntityGroup is one of the eight record categories handled by the engine.
type EntityGroup int

const (
	Workspaces EntityGroup = iota
	Clients
	Tags
	Projects
	Tasks
	UserGroups
	Users
	TimeEntries
)

func (g EntityGroup) String() string {
	switch g {
	case Workspaces:
		return "workspaces"
	case Clients:
		return "clients"
	case Tags:
		return "tags"
	case Projects:
		return "projects"
	case Tasks:
		return "tasks"
	case UserGroups:
		return "user_groups"
	case Users:
		return "users"
	case TimeEntries:
		return "time_entries"
	default:
		return "unknown"
	}
}

// FetchOrder lists groups parents-first for read operations.
var FetchOrder = []EntityGroup{
	Workspaces, Clients, Tags, Projects, Tasks, UserGroups, Users, TimeEntries,
}

// CreateOrder lists the groups created during a transfer. Workspaces are
// excluded: workspace linkage is a prerequisite established before the loop
// runs, since every child group resolves its target workspace through it.
var CreateOrder = []EntityGroup{
	Clients, Tags, Projects, Tasks, UserGroups, Users, TimeEntries,
}

// DeleteOrder is the exact reverse of the forward order so children are
// removed before the records they reference.
var DeleteOrder = []EntityGroup{
	TimeEntries, Tasks, Projects, Tags, UserGroups, Users, Clients, Workspaces,
}

// Record is the normalized form of one remote object. Group-specific fields
// are populated only for the groups that carry them; ID-valued fields always
// refer to ids within the record's own tool.
type Record struct {
	ID          string
	WorkspaceID string
	Group       EntityGroup

	// LinkedID is the id of the matched counterpart record in the opposite
	// mapping, or empty until linking runs.
	LinkedID string

	// Included marks the record for the pending create or delete operation.
	Included bool

	// EntryCount is a derived count of dependent time entries, for display.
	EntryCount int

	Name  string
	Email string // users only

	// Time-entry fields.
	Description string
	Start       time.Time
	End         time.Time
	Billable    bool
	ClientID    string
	ProjectID   string
	TaskID      string
	TagIDs      []string
	UserID      string
}

// Linked reports whether the record has a matched counterpart.
func (r *Record) Linked() bool { return r.LinkedID != "" }

// CompareField returns the value the field matcher compares for this record's
// group: email for users, name for everything else.
func (r *Record) CompareField() string {
	if r.Group == Users {
		return r.Email
	}
	return r.Name
}

// RecordSet indexes records by id.
type RecordSet map[string]*Record

// Index builds a RecordSet from a slice.
func Index(records []*Record) RecordSet {
	set := make(RecordSet, len(records))
	for _, r := range records {
		set[r.ID] = r
	}
	return set
}

// Credentials is the per-tool authentication material consumed by the
// gateway. Email and UserID are only required by endpoints scoped to the
// calling user.
type Credentials struct {
	APIKey string
	Email  string
	UserID string
}
