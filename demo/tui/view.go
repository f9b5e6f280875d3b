package tui

import (
	"fmt"
	"strings"

	"reelsmith/types"
)

// View implements tea.Model interface.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("reelsmith demo"))
	b.WriteString("\n\n")

	b.WriteString(InfoStyle.Render("Prompt: " + m.Prompt))
	b.WriteString("\n\n")

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.JobID != "" {
		b.WriteString(InfoStyle.Render("Job: " + m.JobID))
		b.WriteString("\n\n")
	}

	if m.Status != nil && len(m.Status.Logs) > 0 {
		b.WriteString(InfoStyle.Render("Recent Activity:"))
		b.WriteString("\n")
		logs := m.Status.Logs
		if len(logs) > 10 {
			logs = logs[len(logs)-10:]
		}
		for _, entry := range logs {
			line := fmt.Sprintf("   [%s] %s", entry.Timestamp.Format("15:04:05"), entry.Message)
			b.WriteString(InfoStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.Status != nil && m.Status.State == types.StateComplete {
		b.WriteString(BoxStyle.Render(m.formatResult()))
		b.WriteString("\n\n")
	}

	if !m.Started {
		b.WriteString(InfoStyle.Render("Press 's' to start | Press 'q' or Ctrl+C to quit"))
	} else if m.Status != nil && m.Status.State.Terminal() {
		b.WriteString(HighlightStyle.Render("Press 'q' or Ctrl+C to exit"))
	} else {
		b.WriteString(InfoStyle.Render("Press 'q' or Ctrl+C to quit"))
	}

	return b.String()
}

// formatResult renders the final workflow output.
func (m Model) formatResult() string {
	var b strings.Builder

	b.WriteString(HighlightStyle.Render("Generation Result"))
	b.WriteString("\n\n")

	if m.Status.Analysis != nil {
		b.WriteString(fmt.Sprintf("Theme: %s\n", m.Status.Analysis.MainTheme))
		b.WriteString(fmt.Sprintf("Mood:  %s\n\n", m.Status.Analysis.Mood))
	}
	if m.Status.VideoPrompt != "" {
		preview := m.Status.VideoPrompt
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		b.WriteString("Video Prompt:\n")
		b.WriteString(InfoStyle.Render(preview))
		b.WriteString("\n\n")
	}
	if m.Status.VideoURL != "" {
		b.WriteString(fmt.Sprintf("Video URL:  %s\n", StatusStyle.Render(m.Status.VideoURL)))
	}
	if m.Status.ObjectKey != "" {
		b.WriteString(fmt.Sprintf("Stored at:  %s\n", StatusStyle.Render(m.Status.ObjectKey)))
	}
	return b.String()
}
