package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"ttx/internal/models"
)

var _ list.Item = workspaceItem{}

// workspaceItem wraps a workspace [models.Record] to implement [list.Item].
// The record is shared with the engine's state, so toggling inclusion here is
// the selection the transfer acts on.
type workspaceItem struct {
	workspace *models.Record
}

func (i workspaceItem) FilterValue() string { return i.workspace.Name }

func (i workspaceItem) Title() string {
	marker := "[ ]"
	if i.workspace.Included {
		marker = "[x]"
	}
	return fmt.Sprintf("%s %s", marker, i.workspace.Name)
}

func (i workspaceItem) Description() string {
	if i.workspace.Linked() {
		return "matched on target"
	}
	return "missing on target • create it there before transferring"
}
