package types

import "time"

// VideoStatus is the lifecycle state of a generated video record.
type VideoStatus string

const (
	VideoPending   VideoStatus = "pending"
	VideoCompleted VideoStatus = "completed"
	VideoFailed    VideoStatus = "failed"
	VideoDeleted   VideoStatus = "deleted"
)

// AudioStatus is the lifecycle state of a TTS synthesis record.
type AudioStatus string

const (
	AudioPending    AudioStatus = "pending"
	AudioProcessing AudioStatus = "processing"
	AudioCompleted  AudioStatus = "completed"
	AudioFailed     AudioStatus = "failed"
)

// SessionStatus is the lifecycle state of a video session.
type SessionStatus string

const (
	SessionDraft      SessionStatus = "draft"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// User is a registered account, keyed by email.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Video is a generation job record. VideoTaskID is our own job UUID;
// RemoteTaskID is the id assigned by the upstream generation API.
type Video struct {
	ID           int64       `json:"id"`
	UserEmail    string      `json:"user_email"`
	VideoTaskID  string      `json:"video_task_id"`
	RemoteTaskID string      `json:"remote_task_id,omitempty"`
	Status       VideoStatus `json:"status"`
	Prompt       string      `json:"prompt,omitempty"`
	Model        string      `json:"model,omitempty"`
	VideoURL     string      `json:"video_url,omitempty"`
	ObjectKey    string      `json:"object_key,omitempty"`
	FileSize     int64       `json:"file_size,omitempty"`
	Error        string      `json:"error,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty"`
}

// Audio is a TTS synthesis record.
type Audio struct {
	ID           int64       `json:"id"`
	UserEmail    string      `json:"user_email"`
	TextInput    string      `json:"text_input"`
	VoiceName    string      `json:"voice_name"`
	LanguageCode string      `json:"language_code"`
	AudioFormat  string      `json:"audio_format"`
	Status       AudioStatus `json:"status"`
	FilePath     string      `json:"file_path,omitempty"`
	FileSize     int64       `json:"file_size,omitempty"`
	Duration     int64       `json:"duration,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at,omitempty"`
}

// StoredFile is a bookkeeping record for an object uploaded to storage.
type StoredFile struct {
	ID               int64     `json:"id"`
	UserEmail        string    `json:"user_email,omitempty"`
	SessionID        int64     `json:"session_id,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	ObjectKey        string    `json:"object_key"`
	Bucket           string    `json:"bucket"`
	Size             int64     `json:"size"`
	ContentType      string    `json:"content_type"`
	Category         string    `json:"category"`
	PublicURL        string    `json:"public_url,omitempty"`
	Description      string    `json:"description,omitempty"`
	IsPublic         bool      `json:"is_public"`
	CreatedAt        time.Time `json:"created_at"`
}

// Session groups uploads and a generation run under one user workspace.
type Session struct {
	ID              int64         `json:"id"`
	UserEmail       string        `json:"user_email"`
	Name            string        `json:"name,omitempty"`
	Description     string        `json:"description,omitempty"`
	Status          SessionStatus `json:"status"`
	UserPrompt      string        `json:"user_prompt,omitempty"`
	VideoPrompt     string        `json:"video_prompt,omitempty"`
	AudioPrompt     string        `json:"audio_prompt,omitempty"`
	OutputVideoPath string        `json:"output_video_path,omitempty"`
	TotalFiles      int           `json:"total_files"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at,omitempty"`
}
