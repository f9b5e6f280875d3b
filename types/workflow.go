package types

import "time"

// State represents the per-job workflow state machine.
type State string

const (
	StateIdle        State = "idle"
	StateAnalyzing   State = "analyzing"
	StateCreating    State = "creating"
	StatePolling     State = "polling"
	StateDownloading State = "downloading"
	StateStoring     State = "storing"
	StateComplete    State = "complete"
	StateError       State = "error"
)

// Terminal reports whether the state will not change again.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateError
}

// LogEntry represents a single log line with timestamp.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// PromptAnalysis is the structured result of analyzing a user prompt.
type PromptAnalysis struct {
	MainTheme       string   `json:"main_theme"`
	KeyElements     []string `json:"key_elements"`
	StylePreference string   `json:"style_preference"`
	Mood            string   `json:"mood"`
}

// JobStatus is the snapshot returned for GET /api/generation/jobs/:id/status.
type JobStatus struct {
	JobID        string          `json:"job_id"`
	State        State           `json:"state"`
	Logs         []LogEntry      `json:"logs,omitempty"`
	Analysis     *PromptAnalysis `json:"analysis,omitempty"`
	VideoPrompt  string          `json:"video_prompt,omitempty"`
	AudioPrompt  string          `json:"audio_prompt,omitempty"`
	RemoteTaskID string          `json:"remote_task_id,omitempty"`
	Progress     string          `json:"progress,omitempty"`
	VideoID      int64           `json:"video_id,omitempty"`
	VideoURL     string          `json:"video_url,omitempty"`
	ObjectKey    string          `json:"object_key,omitempty"`
	Error        string          `json:"error,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// GenerationRequest is the message consumed from the generation-requests topic
// and the payload accepted by the complete-workflow endpoint.
type GenerationRequest struct {
	UUID         string   `json:"uuid"`
	UserEmail    string   `json:"user_email,omitempty"`
	UserInput    string   `json:"user_input"`
	UserContext  string   `json:"user_context,omitempty"`
	ReferenceURL string   `json:"reference_url,omitempty"`
	Model        string   `json:"model,omitempty"`
	Enhance      bool     `json:"enhance_prompt"`
	ImageURLs    []string `json:"image_urls,omitempty"`
	SessionID    int64    `json:"session_id,omitempty"`
}
