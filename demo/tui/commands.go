package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// startWorkflow creates a command that launches the generation workflow.
func startWorkflow(client *APIClient, prompt, email string) tea.Cmd {
	return func() tea.Msg {
		jobID, err := client.StartWorkflow(prompt, email)
		return WorkflowStartedMsg{JobID: jobID, Err: err}
	}
}

// pollStatus creates a command to poll the job status.
func pollStatus(client *APIClient, jobID string) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus(jobID)
		return StatusUpdateMsg{Status: status, Err: err}
	}
}

// tickCmd creates a command that ticks every 500ms for polling.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
