package tui

import "time"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskAuth TaskID = iota // Logging in
	// TaskFirstLookup is the first lookup task; see LookupTask.
	TaskFirstLookup
)

// LookupTask returns the task ID of the i-th lookup of a command.
func LookupTask(i int) TaskID {
	return TaskFirstLookup + TaskID(i)
}

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task    TaskID
	Status  TaskStatus
	Message string // Optional message (e.g., the user's display name)
	Count   int    // Count of items (e.g., commits fetched)
	Error   error  // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports that GitHub stopped serving requests until ResetAt.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
