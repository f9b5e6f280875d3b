package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Generation API configuration
	DefaultGenerationBaseURL = "https://api.qingyuntop.top"
	DefaultGenerationModel   = "veo3-fast"
	FramesGenerationModel    = "veo3-pro-frames"
	PollInterval             = 5 * time.Second
	MaxPollWait              = 15 * time.Minute
	RequestTimeout           = 30 * time.Second
	DownloadTimeout          = 5 * time.Minute
	WorkflowTimeout          = 25 * time.Minute

	// Storage configuration
	MaxFileSize         = 100 << 20 // 100 MB
	UploadURLExpiry     = 10 * time.Minute
	DownloadURLExpiry   = 60 * time.Minute
	JobStatusTTL        = 24 * time.Hour
	ReferenceTextLimit  = 8000
	StalePendingAfter   = 20 * time.Minute
	TempRetention       = 24 * time.Hour

	// TTS defaults
	DefaultVoiceName    = "en-US-Wavenet-D"
	DefaultLanguageCode = "en-US"
	DefaultAudioFormat  = "MP3"

	// Directory layout for locally staged artifacts
	TempDir      = "temp"
	AudioDir     = "temp/generated_audio"
	VideoDir     = "temp/generated_video"
	ProcessedDir = "temp/processed_video"
)

// Allowed upload extensions per category.
var (
	AudioExtensions    = map[string]bool{".mp3": true, ".wav": true, ".ogg": true, ".m4a": true, ".flac": true}
	VideoExtensions    = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true}
	ImageExtensions    = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
	DocumentExtensions = map[string]bool{".pdf": true, ".txt": true, ".md": true}
)

// AllowedExtension reports whether ext (including the dot) may be uploaded.
func AllowedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	return AudioExtensions[ext] || VideoExtensions[ext] || ImageExtensions[ext] || DocumentExtensions[ext]
}

// FileCategory maps an extension to a coarse category used for bookkeeping.
func FileCategory(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case AudioExtensions[ext]:
		return "audio"
	case VideoExtensions[ext]:
		return "video"
	case ImageExtensions[ext]:
		return "image"
	case DocumentExtensions[ext]:
		return "document"
	default:
		return "other"
	}
}

// EnsureTempDirs creates the local staging directories if missing.
func EnsureTempDirs() error {
	for _, dir := range []string{AudioDir, VideoDir, ProcessedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// AudioFilePath returns the staging path for a generated audio file.
func AudioFilePath(audioID int64, format string) string {
	return filepath.Join(AudioDir, fileName(audioID, format))
}

// VideoFilePath returns the staging path for a generated video file.
func VideoFilePath(videoID int64, format string) string {
	return filepath.Join(VideoDir, fileName(videoID, format))
}

// ProcessedVideoPath returns the staging path for a post-processed video.
func ProcessedVideoPath(videoID int64, format string) string {
	return filepath.Join(ProcessedDir, fileName(videoID, format))
}

func fileName(id int64, format string) string {
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	return strconv.FormatInt(id, 10) + "." + ext
}

// GetEnv returns the value of key or def when unset/empty.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
