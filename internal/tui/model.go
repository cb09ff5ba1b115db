package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubble Tea model for the TUI progress display.
type Model struct {
	tasks          []Task
	spinner        spinner.Model
	progress       progress.Model
	events         <-chan Event
	done           bool
	canceled       bool
	username       string
	rateLimited    bool
	rateLimitReset time.Time
	now            func() time.Time
}

// doneMsg signals that all events have been processed.
type doneMsg struct{}

// ModelOption is a functional option for configuring a Model.
type ModelOption func(*Model)

// WithTasks sets the tasks to display in the TUI.
func WithTasks(tasks []Task) ModelOption {
	return func(m *Model) {
		m.tasks = tasks
	}
}

// NewModel creates a new TUI model.
func NewModel(events <-chan Event, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(
		progress.WithScaledGradient("#60a5fa", "#1e3a8a"),
		progress.WithWidth(25),
		progress.WithoutPercentage(),
	)

	m := Model{
		tasks:    LoginTasks(),
		spinner:  s,
		progress: p,
		events:   events,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Canceled reports whether the user quit before the work finished.
func (m Model) Canceled() bool {
	return m.canceled
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.canceled = !m.done
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TaskEvent:
		m = m.updateTask(msg)
		return m, waitForEvent(m.events)

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent, doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// updateTask updates a task based on a TaskEvent.
func (m Model) updateTask(e TaskEvent) Model {
	for i := range m.tasks {
		if m.tasks[i].ID != e.Task {
			continue
		}
		m.tasks[i].Status = e.Status
		if e.Message != "" {
			m.tasks[i].Message = e.Message
		}
		if e.Count > 0 {
			m.tasks[i].Count = e.Count
		}
		if e.Error != nil {
			m.tasks[i].Error = e.Error
		}
		// Capture username from auth complete event
		if e.Task == TaskAuth && e.Status == StatusComplete && e.Message != "" {
			m.username = e.Message
		}
		break
	}
	return m
}

// finishedCount returns how many tasks reached a terminal status.
func (m Model) finishedCount() int {
	n := 0
	for _, t := range m.tasks {
		if t.finished() {
			n++
		}
	}
	return n
}

// View renders the model.
func (m Model) View() string {
	var s string

	for _, task := range m.tasks {
		// Special handling for auth task to show username
		if task.ID == TaskAuth {
			switch task.Status {
			case StatusComplete:
				if m.username != "" {
					s += fmt.Sprintf("  %s Logged in as %s\n", iconComplete, userStyle.Render(m.username))
					continue
				}
			case StatusRunning:
				s += fmt.Sprintf("  %s Logging in...\n", spinnerStyle.Render(m.spinner.View()))
				continue
			case StatusError:
				if task.Error != nil {
					s += fmt.Sprintf("  %s Login failed %s\n", iconError, errorStyle.Render(task.Error.Error()))
					continue
				}
			}
		}
		s += task.View(m.spinner.View()) + "\n"
	}

	// Overall progress once there is more than one lookup
	if total := len(m.tasks); total > 1 {
		finished := m.finishedCount()
		s += fmt.Sprintf("\n  %s %s\n",
			m.progress.ViewAs(float64(finished)/float64(total)),
			messageStyle.Render(fmt.Sprintf("%d/%d", finished, total)))
	}

	if m.rateLimited {
		duration := m.rateLimitReset.Sub(m.now()).Round(time.Second)
		if duration > 0 {
			s += warnStyle.Render(fmt.Sprintf("\n  Rate limited by GitHub (resets in %s)\n", duration))
		}
	}

	// Only show cancel hint while running
	if !m.done {
		s += footerStyle.Render("\n  Press Ctrl+C to cancel")
	}
	s += "\n"

	return s
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}
