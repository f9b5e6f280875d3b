package tui

import (
	"time"

	"reelsmith/types"
)

// Messages for the tea program (polling-based)

// WorkflowStartedMsg is sent after the start request completes.
type WorkflowStartedMsg struct {
	JobID string
	Err   error
}

// StatusUpdateMsg is sent when we receive a job status poll result.
type StatusUpdateMsg struct {
	Status *types.JobStatus
	Err    error
}

// TickMsg is sent periodically to trigger polling.
type TickMsg struct {
	Time time.Time
}
