// Package models defines the entity record model shared by every layer of the
// migration engine.
//
// The central type is [Record]: a normalized view of one remote object
// (workspace, client, tag, project, task, user, user group, or time entry)
// from either tool. Records from the two tools live in parallel collections
// keyed by [Mapping] and are associated with each other through LinkedID.
//
// Group dependency order is fixed at compile time:
//
//	Workspaces → {Clients, Tags, Users, UserGroups} → Projects → Tasks → TimeEntries
//
// [CreateOrder] and [DeleteOrder] encode the forward and reverse traversals.
package models
