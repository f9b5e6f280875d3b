package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model interface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case WorkflowStartedMsg:
		return m.handleWorkflowStarted(msg)
	case StatusUpdateMsg:
		return m.handleStatusUpdate(msg)
	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKeyPress processes keyboard input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "s", "S":
		if !m.Started {
			m.Started = true
			m.Err = nil
			return m, startWorkflow(m.Client, m.Prompt, m.Email)
		}
	}
	return m, nil
}

// handleWorkflowStarted records the job id from the start request.
func (m Model) handleWorkflowStarted(msg WorkflowStartedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Started = false
		m.Err = msg.Err
		return m, nil
	}
	m.JobID = msg.JobID
	return m, pollStatus(m.Client, m.JobID)
}

// handleStatusUpdate mirrors the latest server snapshot.
func (m Model) handleStatusUpdate(msg StatusUpdateMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	m.Err = nil
	m.Status = msg.Status
	return m, nil
}

// handleTick schedules the next poll while the job is running.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd()}
	if m.JobID != "" && (m.Status == nil || !m.Status.State.Terminal()) {
		cmds = append(cmds, pollStatus(m.Client, m.JobID))
	}
	return m, tea.Batch(cmds...)
}
