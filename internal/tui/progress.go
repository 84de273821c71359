package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gerunddev/notionbridge/internal/styles"
)

// TaskFunc does the work behind a spinner and returns a one-line summary
type TaskFunc func() (string, error)

// taskDoneMsg is sent when the task returns
type taskDoneMsg struct {
	summary string
	err     error
}

// taskModel is the Bubble Tea model for a single network operation
type taskModel struct {
	spinner  spinner.Model
	status   string
	work     TaskFunc
	started  time.Time
	complete bool
	canceled bool
	summary  string
	err      error
}

// InitTaskModel creates a spinner model that runs work on Init
func InitTaskModel(status string, work TaskFunc) taskModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return taskModel{
		spinner: s,
		status:  status,
		work:    work,
		started: time.Now(),
	}
}

func (m taskModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

func (m taskModel) run() tea.Cmd {
	work := m.work
	return func() tea.Msg {
		summary, err := work()
		return taskDoneMsg{summary: summary, err: err}
	}
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.canceled = true
			return m, tea.Quit
		}

	case taskDoneMsg:
		m.complete = true
		m.summary = msg.summary
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m taskModel) View() string {
	if m.complete {
		if m.err != nil {
			return styles.ErrorStyle.Render("✗ "+m.err.Error()) + "\n"
		}
		return styles.SuccessStyle.Render("✓ "+m.summary) + "\n" +
			styles.HelpStyle.Render(fmt.Sprintf("Completed in %v", time.Since(m.started).Round(time.Millisecond))) + "\n"
	}
	if m.canceled {
		return styles.WarningStyle.Render("Canceled") + "\n"
	}

	return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
}

// ErrCanceled is returned by RunTask when the user quits before the task
// finishes
var ErrCanceled = errors.New("canceled")

// RunTask shows a spinner with status while work runs and returns its error
func RunTask(status string, work TaskFunc) error {
	final, err := tea.NewProgram(InitTaskModel(status, work)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(taskModel)
	if !ok {
		return nil
	}
	if m.canceled && !m.complete {
		return ErrCanceled
	}
	return m.err
}
