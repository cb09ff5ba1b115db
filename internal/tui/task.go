package tui

import (
	"fmt"
)

// Task represents a single task in the TUI progress display.
type Task struct {
	ID      TaskID
	Name    string
	Status  TaskStatus
	Message string
	Count   int
	Error   error
}

// NewTask creates a new task with the given ID and name.
func NewTask(id TaskID, name string) Task {
	return Task{
		ID:     id,
		Name:   name,
		Status: StatusPending,
	}
}

// LookupTasks returns one pending task per subject, numbered with LookupTask.
func LookupTasks(subjects []string) []Task {
	tasks := make([]Task, 0, len(subjects))
	for i, s := range subjects {
		tasks = append(tasks, NewTask(LookupTask(i), s))
	}
	return tasks
}

// LoginTasks returns the task list for the login command.
func LoginTasks() []Task {
	return []Task{NewTask(TaskAuth, "Logging in")}
}

// finished reports whether the task reached a terminal status.
func (t Task) finished() bool {
	return t.Status == StatusComplete || t.Status == StatusError || t.Status == StatusSkipped
}

// View renders the task as a string.
func (t Task) View(spinnerFrame string) string {
	icon := StatusIcon(t.Status, spinnerFrame)

	var name string
	if t.Status == StatusPending {
		name = taskDimStyle.Render(t.Name)
	} else {
		name = taskNameStyle.Render(t.Name)
	}

	line := fmt.Sprintf("  %s %s", icon, name)

	if t.Message != "" {
		line += " " + messageStyle.Render(t.Message)
	}

	if t.Count > 0 {
		line += " " + messageStyle.Render(fmt.Sprintf("(%d)", t.Count))
	}

	if t.Error != nil {
		line += " " + errorStyle.Render(t.Error.Error())
	}

	return line
}
