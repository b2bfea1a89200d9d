package ui

import (
	"ttx/internal/models"
	"ttx/internal/tasks"
)

type workspacesFetchedMsg struct {
	workspaces []*models.Record
	err        error
}

type progressUpdateMsg tasks.ProgressUpdate

type transferCompleteMsg struct {
	err error
}
