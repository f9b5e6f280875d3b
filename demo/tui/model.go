package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"reelsmith/types"
)

// Model represents the TUI client state (thin client: all workflow state
// lives on the server, the model just mirrors the latest snapshot).
type Model struct {
	Client *APIClient

	Prompt string
	Email  string

	JobID   string
	Status  *types.JobStatus
	Started bool
	Err     error
}

// NewModel creates a new TUI model.
func NewModel(apiURL, prompt, email string) Model {
	return Model{
		Client: NewAPIClient(apiURL),
		Prompt: prompt,
		Email:  email,
	}
}

// Init implements tea.Model interface.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// stateText returns the headline for the current state.
func (m Model) stateText() string {
	if m.Err != nil {
		return ErrorStyle.Render("Error: " + m.Err.Error())
	}
	if !m.Started {
		return HighlightStyle.Render("Ready") + "\n\n" +
			InfoStyle.Render("Press 's' to generate a video from your prompt")
	}
	if m.Status == nil {
		return StatusStyle.Render("Starting workflow...")
	}

	switch m.Status.State {
	case types.StateAnalyzing:
		return StatusStyle.Render("Analyzing prompt...")
	case types.StateCreating:
		return StatusStyle.Render("Creating generation task...")
	case types.StatePolling:
		text := "Generating video..."
		if m.Status.Progress != "" {
			text += " (" + m.Status.Progress + ")"
		}
		return StatusStyle.Render(text)
	case types.StateDownloading:
		return StatusStyle.Render("Downloading result...")
	case types.StateStoring:
		return StatusStyle.Render("Uploading to storage...")
	case types.StateComplete:
		return HighlightStyle.Render("COMPLETE")
	case types.StateError:
		return ErrorStyle.Render("Error: " + m.Status.Error)
	default:
		return StatusStyle.Render("Waiting...")
	}
}
