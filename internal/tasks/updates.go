package tasks

import (
	"fmt"

	"ttx/internal/models"
)

// Operation is one of the three top-level commands the engine runs.
type Operation int

const (
	OpFetch Operation = iota
	OpCreate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpFetch:
		return "fetch"
	case OpCreate:
		return "transfer"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Status is the coordinator's state machine position.
type Status int

const (
	StatusPending Status = iota
	StatusInProcess
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProcess:
		return "in_process"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ProgressUpdate is one progress event during a long-running operation. The
// engine knows nothing about its consumer; the CLI/UI layer renders these.
type ProgressUpdate struct {
	Operation Operation
	Group     models.EntityGroup
	Completed int
	Total     int
	Message   string
}

func groupStartedUpdate(op Operation, group models.EntityGroup, total int) ProgressUpdate {
	return ProgressUpdate{
		Operation: op,
		Group:     group,
		Total:     total,
		Message:   fmt.Sprintf("%s: %s (%d records)", op, group, total),
	}
}

func recordDoneUpdate(op Operation, group models.EntityGroup, completed, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Operation: op,
		Group:     group,
		Completed: completed,
		Total:     total,
		Message:   fmt.Sprintf("[%d/%d] %s %s: %s", completed, total, op, group, name),
	}
}

func groupDoneUpdate(op Operation, group models.EntityGroup, completed, total int) ProgressUpdate {
	return ProgressUpdate{
		Operation: op,
		Group:     group,
		Completed: completed,
		Total:     total,
		Message:   fmt.Sprintf("%s: %s done (%d/%d)", op, group, completed, total),
	}
}
