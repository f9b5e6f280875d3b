package workflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"reelsmith/types"
)

const (
	maxLogs = 50
	// maxTerminalJobs bounds how many finished jobs stay pollable in
	// memory. Older ones are dropped; the status cache keeps serving
	// them until its TTL expires.
	maxTerminalJobs = 256
)

// StatusSink receives job status snapshots, typically the redis cache so any
// API instance can answer polling requests. May be nil.
type StatusSink interface {
	SetStatus(ctx context.Context, status *types.JobStatus) error
}

// Manager tracks per-job workflow state with thread-safe access.
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*types.JobStatus
	terminal []string
	sink     StatusSink
}

// NewManager creates a job state manager. sink may be nil.
func NewManager(sink StatusSink) *Manager {
	return &Manager{
		jobs: make(map[string]*types.JobStatus),
		sink: sink,
	}
}

// NewJob registers a job in the idle state.
func (m *Manager) NewJob(jobID string) {
	m.mu.Lock()
	job := &types.JobStatus{
		JobID:     jobID,
		State:     types.StateIdle,
		UpdatedAt: time.Now(),
	}
	m.jobs[jobID] = job
	snap := clone(job)
	m.mu.Unlock()
	m.publish(snap)
}

// update applies fn to the job under the write lock, then publishes the new
// snapshot after releasing it so slow sinks never stall other jobs.
func (m *Manager) update(jobID string, fn func(job *types.JobStatus)) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return
	}
	wasTerminal := job.State.Terminal()
	fn(job)
	job.UpdatedAt = time.Now()
	if job.State.Terminal() && !wasTerminal {
		m.retireLocked(jobID)
	}
	snap := clone(job)
	m.mu.Unlock()
	m.publish(snap)
}

// retireLocked records a newly terminal job and evicts the oldest finished
// jobs beyond the retention window. Must hold the write lock.
func (m *Manager) retireLocked(jobID string) {
	m.terminal = append(m.terminal, jobID)
	for len(m.terminal) > maxTerminalJobs {
		delete(m.jobs, m.terminal[0])
		m.terminal = m.terminal[1:]
	}
}

// SetState transitions a job to the given state.
func (m *Manager) SetState(jobID string, state types.State) {
	m.update(jobID, func(job *types.JobStatus) {
		job.State = state
	})
}

// AddLog appends a log entry to the job's ring buffer.
func (m *Manager) AddLog(jobID, message string) {
	m.update(jobID, func(job *types.JobStatus) {
		appendLog(job, message)
	})
}

// SetAnalysis records the prompt analysis output.
func (m *Manager) SetAnalysis(jobID string, analysis *types.PromptAnalysis, videoPrompt, audioPrompt string) {
	m.update(jobID, func(job *types.JobStatus) {
		job.Analysis = analysis
		job.VideoPrompt = videoPrompt
		job.AudioPrompt = audioPrompt
	})
}

// SetVideoID links the job to its database row.
func (m *Manager) SetVideoID(jobID string, videoID int64) {
	m.update(jobID, func(job *types.JobStatus) {
		job.VideoID = videoID
	})
}

// SetRemoteTask records the provider-side task id.
func (m *Manager) SetRemoteTask(jobID, remoteTaskID string) {
	m.update(jobID, func(job *types.JobStatus) {
		job.RemoteTaskID = remoteTaskID
	})
}

// SetProgress records the provider-reported progress.
func (m *Manager) SetProgress(jobID, progress string) {
	m.update(jobID, func(job *types.JobStatus) {
		job.Progress = progress
	})
}

// Complete marks the job finished with its output locations.
func (m *Manager) Complete(jobID, videoURL, objectKey string) {
	m.update(jobID, func(job *types.JobStatus) {
		job.State = types.StateComplete
		job.VideoURL = videoURL
		job.ObjectKey = objectKey
		appendLog(job, "Workflow complete")
	})
}

// Fail marks the job errored.
func (m *Manager) Fail(jobID string, err error) {
	m.update(jobID, func(job *types.JobStatus) {
		job.State = types.StateError
		job.Error = err.Error()
		appendLog(job, fmt.Sprintf("Error: %v", err))
	})
}

// Snapshot returns a copy of a job's status.
func (m *Manager) Snapshot(jobID string) (*types.JobStatus, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, false
	}
	return clone(job), true
}

func clone(job *types.JobStatus) *types.JobStatus {
	out := *job
	out.Logs = append([]types.LogEntry{}, job.Logs...)
	return &out
}

func appendLog(job *types.JobStatus, message string) {
	job.Logs = append(job.Logs, types.LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})
	if len(job.Logs) > maxLogs {
		job.Logs = job.Logs[len(job.Logs)-maxLogs:]
	}
}

// publish mirrors a snapshot to the sink. Called without the lock held.
func (m *Manager) publish(status *types.JobStatus) {
	if m.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.sink.SetStatus(ctx, status); err != nil {
		log.Printf("workflow: failed to publish status for job %s: %v", status.JobID, err)
	}
}
